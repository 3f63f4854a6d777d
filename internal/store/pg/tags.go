package pg

import (
	"context"
	"database/sql"
	"errors"

	"inkwell.blog/internal/blog"
)

type tagStore struct {
	db *sql.DB
}

var _ blog.TagStore = (*tagStore)(nil)

func (s *tagStore) Create(ctx context.Context, t *blog.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		insert into tags (id, owner_id, name) values ($1, $2, $3)
	`, t.ID, t.OwnerID, t.Name)
	return mapWriteError(err)
}

func (s *tagStore) Find(ctx context.Context, id string) (*blog.Tag, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select id, owner_id, name from tags where id = $1
	`, id))
}

func (s *tagStore) FindByName(ctx context.Context, ownerID, name string) (*blog.Tag, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		select id, owner_id, name from tags where owner_id = $1 and name = $2
	`, ownerID, name))
}

func (s *tagStore) scanOne(row *sql.Row) (*blog.Tag, error) {
	var t blog.Tag
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *tagStore) List(ctx context.Context, limit, offset int) ([]*blog.Tag, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		select id, owner_id, name from tags order by id limit $1 offset $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*blog.Tag
	for rows.Next() {
		var t blog.Tag
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *tagStore) Update(ctx context.Context, t *blog.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		update tags set name = $1 where id = $2
	`, t.Name, t.ID)
	if err != nil {
		return mapWriteError(err)
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

func (s *tagStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tags where id = $1`, id)
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
