package pg

import (
	"context"
	"database/sql"
	"errors"

	"inkwell.blog/internal/blog"
)

type userStore struct {
	db *sql.DB
}

var _ blog.UserStore = (*userStore)(nil)

func (s *userStore) Create(ctx context.Context, u *blog.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users (id, username, email, password_hash, bio, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Bio, u.CreatedAt, u.UpdatedAt)
	return mapWriteError(err)
}

func (s *userStore) Find(ctx context.Context, id string) (*blog.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, bio, created_at, updated_at
		from users where id = $1
	`, id))
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*blog.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select id, username, email, password_hash, bio, created_at, updated_at
		from users where username = $1
	`, username))
}

func (s *userStore) scanOne(row *sql.Row) (*blog.User, error) {
	var u blog.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *userStore) List(ctx context.Context, limit, offset int) ([]*blog.User, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		select id, username, email, password_hash, bio, created_at, updated_at
		from users order by id limit $1 offset $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*blog.User
	for rows.Next() {
		var u blog.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *userStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		update users set password_hash = $1, updated_at = now() where id = $2
	`, passwordHash, userID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return blog.ErrNotFound
	}
	return nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return blog.ErrNotFound
	}
	return nil
}
