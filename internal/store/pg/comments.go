package pg

import (
	"context"
	"database/sql"
	"errors"

	"inkwell.blog/internal/blog"
)

type commentStore struct {
	db *sql.DB
}

var _ blog.CommentStore = (*commentStore)(nil)

func (s *commentStore) Create(ctx context.Context, c *blog.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		insert into comments (id, post_id, author_id, body, created_at)
		values ($1, $2, $3, $4, $5)
	`, c.ID, c.PostID, c.AuthorID, c.Body, c.CreatedAt)
	return mapWriteError(err)
}

func (s *commentStore) Find(ctx context.Context, id string) (*blog.Comment, error) {
	var c blog.Comment
	err := s.db.QueryRowContext(ctx, `
		select id, post_id, author_id, body, created_at
		from comments where id = $1
	`, id).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *commentStore) ListByPost(ctx context.Context, postID string, limit, offset int) ([]*blog.Comment, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		select id, post_id, author_id, body, created_at
		from comments where post_id = $1 order by id limit $2 offset $3
	`, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*blog.Comment
	for rows.Next() {
		var c blog.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *commentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from comments where id = $1`, id)
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
