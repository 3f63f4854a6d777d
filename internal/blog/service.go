package blog

import (
	"context"
	"strings"
	"time"

	"inkwell.blog/internal/auth"
	"inkwell.blog/internal/ids"
)

// Service wraps a Store with the use-case rules: input validation,
// owner-or-admin checks on mutation, and tag name dedupe. Route-level
// role checks happen earlier, at the HTTP policy; callers here pass the
// already-authenticated principal.
type Service struct {
	store Store
	now   func() time.Time
}

type ServiceOption func(*Service)

// WithServiceClock overrides the timestamp source, for tests.
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) { s.now = fn }
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUser creates an account with a bcrypt-hashed password.
// Username collisions return ErrAlreadyExists.
func (s *Service) RegisterUser(ctx context.Context, username, email, password, bio string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if existing, err := s.store.Users(ctx).FindByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrAlreadyExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Bio:          bio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users(ctx).Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.store.Users(ctx).Find(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, error) {
	return s.store.Users(ctx).List(ctx, clampLimit(limit), max0(offset))
}

// DeleteUser requires ADMIN; the route policy already enforces that,
// this check keeps the rule intact for non-HTTP callers.
func (s *Service) DeleteUser(ctx context.Context, p *auth.Principal, id string) error {
	if p == nil || !p.IsAdmin() {
		return auth.ErrForbidden
	}
	return s.store.Users(ctx).Delete(ctx, id)
}

func (s *Service) CreatePost(ctx context.Context, p *auth.Principal, title, body string, tags []string) (*Post, error) {
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" || body == "" {
		return nil, ErrInvalidInput
	}
	now := s.now().UTC()
	post := &Post{
		ID:        ids.New(),
		AuthorID:  p.SubjectID,
		Title:     title,
		Body:      body,
		Tags:      normalizeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Posts(ctx).Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (*Post, error) {
	return s.store.Posts(ctx).Find(ctx, id)
}

func (s *Service) ListPosts(ctx context.Context, limit, offset int) ([]*Post, error) {
	return s.store.Posts(ctx).List(ctx, clampLimit(limit), max0(offset))
}

func (s *Service) UpdatePost(ctx context.Context, p *auth.Principal, id, title, body string, tags []string) (*Post, error) {
	post, err := s.store.Posts(ctx).Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(p, post.AuthorID); err != nil {
		return nil, err
	}
	if title = strings.TrimSpace(title); title != "" {
		post.Title = title
	}
	if body != "" {
		post.Body = body
	}
	if tags != nil {
		post.Tags = normalizeTags(tags)
	}
	post.UpdatedAt = s.now().UTC()
	if err := s.store.Posts(ctx).Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, p *auth.Principal, id string) error {
	post, err := s.store.Posts(ctx).Find(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(p, post.AuthorID); err != nil {
		return err
	}
	return s.store.Posts(ctx).Delete(ctx, id)
}

// CreateTag dedupes by name per owner: creating a name the owner
// already has returns the existing tag instead of an error.
func (s *Service) CreateTag(ctx context.Context, p *auth.Principal, name string) (*Tag, error) {
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	name = normalizeTagName(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if existing, err := s.store.Tags(ctx).FindByName(ctx, p.SubjectID, name); err == nil {
		return existing, nil
	}
	tag := &Tag{ID: ids.New(), OwnerID: p.SubjectID, Name: name}
	if err := s.store.Tags(ctx).Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *Service) GetTag(ctx context.Context, id string) (*Tag, error) {
	return s.store.Tags(ctx).Find(ctx, id)
}

func (s *Service) ListTags(ctx context.Context, limit, offset int) ([]*Tag, error) {
	return s.store.Tags(ctx).List(ctx, clampLimit(limit), max0(offset))
}

func (s *Service) UpdateTag(ctx context.Context, p *auth.Principal, id, name string) (*Tag, error) {
	tag, err := s.store.Tags(ctx).Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(p, tag.OwnerID); err != nil {
		return nil, err
	}
	name = normalizeTagName(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if existing, err := s.store.Tags(ctx).FindByName(ctx, tag.OwnerID, name); err == nil && existing.ID != tag.ID {
		return nil, ErrAlreadyExists
	}
	tag.Name = name
	if err := s.store.Tags(ctx).Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *Service) DeleteTag(ctx context.Context, p *auth.Principal, id string) error {
	tag, err := s.store.Tags(ctx).Find(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(p, tag.OwnerID); err != nil {
		return err
	}
	return s.store.Tags(ctx).Delete(ctx, id)
}

func (s *Service) CreateComment(ctx context.Context, p *auth.Principal, postID, body string) (*Comment, error) {
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.store.Posts(ctx).Find(ctx, postID); err != nil {
		return nil, err
	}
	c := &Comment{
		ID:        ids.New(),
		PostID:    postID,
		AuthorID:  p.SubjectID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Comments(ctx).Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, postID string, limit, offset int) ([]*Comment, error) {
	if _, err := s.store.Posts(ctx).Find(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.Comments(ctx).ListByPost(ctx, postID, clampLimit(limit), max0(offset))
}

func (s *Service) DeleteComment(ctx context.Context, p *auth.Principal, id string) error {
	c, err := s.store.Comments(ctx).Find(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(p, c.AuthorID); err != nil {
		return err
	}
	return s.store.Comments(ctx).Delete(ctx, id)
}

func requireOwnerOrAdmin(p *auth.Principal, ownerID string) error {
	if p == nil {
		return auth.ErrUnauthenticated
	}
	if p.Owns(ownerID) || p.IsAdmin() {
		return nil
	}
	return auth.ErrForbidden
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = normalizeTagName(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 100
	}
	return limit
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
