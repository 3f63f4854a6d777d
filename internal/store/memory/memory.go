// Package memory implements blog.Store with in-process concurrency
// safety. It backs tests and local runs without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"

	"inkwell.blog/internal/blog"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]*blog.User
	posts    map[string]*blog.Post
	tags     map[string]*blog.Tag
	comments map[string]*blog.Comment
	order    []string // post ids in insert order
}

var _ blog.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[string]*blog.User),
		posts:    make(map[string]*blog.Post),
		tags:     make(map[string]*blog.Tag),
		comments: make(map[string]*blog.Comment),
	}
}

func (s *Store) Users(context.Context) blog.UserStore       { return (*userStore)(s) }
func (s *Store) Posts(context.Context) blog.PostStore       { return (*postStore)(s) }
func (s *Store) Tags(context.Context) blog.TagStore         { return (*tagStore)(s) }
func (s *Store) Comments(context.Context) blog.CommentStore { return (*commentStore)(s) }

type userStore Store

func (s *userStore) Create(_ context.Context, u *blog.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return blog.ErrAlreadyExists
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *userStore) Find(_ context.Context, id string) (*blog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *userStore) FindByUsername(_ context.Context, username string) (*blog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, blog.ErrNotFound
}

func (s *userStore) List(_ context.Context, limit, offset int) ([]*blog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*blog.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		all = append(all, &cp)
	}
	sortByID(all, func(u *blog.User) string { return u.ID })
	return page(all, limit, offset), nil
}

func (s *userStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return blog.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *userStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return blog.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type postStore Store

func (s *postStore) Create(_ context.Context, p *blog.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := clonePost(p)
	s.posts[p.ID] = cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *postStore) Find(_ context.Context, id string) (*blog.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	return clonePost(p), nil
}

func (s *postStore) List(_ context.Context, limit, offset int) ([]*blog.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*blog.Post, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.posts[id]; ok {
			all = append(all, clonePost(p))
		}
	}
	return page(all, limit, offset), nil
}

func (s *postStore) Update(_ context.Context, p *blog.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; !ok {
		return blog.ErrNotFound
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

func (s *postStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return blog.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

type tagStore Store

func (s *tagStore) Create(_ context.Context, t *blog.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tags {
		if existing.OwnerID == t.OwnerID && existing.Name == t.Name {
			return blog.ErrAlreadyExists
		}
	}
	cp := *t
	s.tags[t.ID] = &cp
	return nil
}

func (s *tagStore) Find(_ context.Context, id string) (*blog.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tags[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *tagStore) FindByName(_ context.Context, ownerID, name string) (*blog.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if t.OwnerID == ownerID && t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, blog.ErrNotFound
}

func (s *tagStore) List(_ context.Context, limit, offset int) ([]*blog.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*blog.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		cp := *t
		all = append(all, &cp)
	}
	sortByID(all, func(t *blog.Tag) string { return t.ID })
	return page(all, limit, offset), nil
}

func (s *tagStore) Update(_ context.Context, t *blog.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[t.ID]; !ok {
		return blog.ErrNotFound
	}
	cp := *t
	s.tags[t.ID] = &cp
	return nil
}

func (s *tagStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[id]; !ok {
		return blog.ErrNotFound
	}
	delete(s.tags, id)
	return nil
}

type commentStore Store

func (s *commentStore) Create(_ context.Context, c *blog.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *commentStore) Find(_ context.Context, id string) (*blog.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *commentStore) ListByPost(_ context.Context, postID string, limit, offset int) ([]*blog.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*blog.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			all = append(all, &cp)
		}
	}
	sortByID(all, func(c *blog.Comment) string { return c.ID })
	return page(all, limit, offset), nil
}

func (s *commentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return blog.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func clonePost(p *blog.Post) *blog.Post {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	return &cp
}

// ULIDs sort chronologically, so ordering by id doubles as ordering by
// creation time.
func sortByID[T any](items []T, key func(T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
