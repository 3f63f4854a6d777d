package pg

import (
	"context"
	"database/sql"
	"errors"

	"inkwell.blog/internal/blog"
)

type postStore struct {
	db *sql.DB
}

var _ blog.PostStore = (*postStore)(nil)

func (s *postStore) Create(ctx context.Context, p *blog.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into posts (id, author_id, title, body, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.AuthorID, p.Title, p.Body, p.CreatedAt, p.UpdatedAt); err != nil {
		return mapWriteError(err)
	}
	if err := insertPostTags(ctx, tx, p.ID, p.Tags); err != nil {
		return mapWriteError(err)
	}
	return tx.Commit()
}

func (s *postStore) Find(ctx context.Context, id string) (*blog.Post, error) {
	var p blog.Post
	err := s.db.QueryRowContext(ctx, `
		select id, author_id, title, body, created_at, updated_at
		from posts where id = $1
	`, id).Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Tags = tags
	return &p, nil
}

func (s *postStore) List(ctx context.Context, limit, offset int) ([]*blog.Post, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		select id, author_id, title, body, created_at, updated_at
		from posts order by id limit $1 offset $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*blog.Post
	for rows.Next() {
		var p blog.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range result {
		tags, err := s.tagsFor(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Tags = tags
	}
	return result, nil
}

func (s *postStore) Update(ctx context.Context, p *blog.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update posts set title = $1, body = $2, updated_at = $3 where id = $4
	`, p.Title, p.Body, p.UpdatedAt, p.ID)
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
	if _, err := tx.ExecContext(ctx, `delete from post_tags where post_id = $1`, p.ID); err != nil {
		return err
	}
	if err := insertPostTags(ctx, tx, p.ID, p.Tags); err != nil {
		return mapWriteError(err)
	}
	return tx.Commit()
}

func (s *postStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from posts where id = $1`, id)
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

func (s *postStore) tagsFor(ctx context.Context, postID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		select tag_name from post_tags where post_id = $1 order by tag_name
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

func insertPostTags(ctx context.Context, tx *sql.Tx, postID string, tags []string) error {
	for _, name := range tags {
		if _, err := tx.ExecContext(ctx, `
			insert into post_tags (post_id, tag_name) values ($1, $2)
			on conflict do nothing
		`, postID, name); err != nil {
			return err
		}
	}
	return nil
}
