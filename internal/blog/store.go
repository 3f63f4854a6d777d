package blog

import "context"

// Store describes persistence operations required by the blog service.
type Store interface {
	Users(ctx context.Context) UserStore
	Posts(ctx context.Context) PostStore
	Tags(ctx context.Context) TagStore
	Comments(ctx context.Context) CommentStore
}

// UserStore manages accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// PostStore manages posts and their tag links.
type PostStore interface {
	Create(ctx context.Context, p *Post) error
	Find(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, limit, offset int) ([]*Post, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}

// TagStore manages tags. FindByName is scoped to an owner.
type TagStore interface {
	Create(ctx context.Context, t *Tag) error
	Find(ctx context.Context, id string) (*Tag, error)
	FindByName(ctx context.Context, ownerID, name string) (*Tag, error)
	List(ctx context.Context, limit, offset int) ([]*Tag, error)
	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id string) error
}

// CommentStore manages per-post comments.
type CommentStore interface {
	Create(ctx context.Context, c *Comment) error
	Find(ctx context.Context, id string) (*Comment, error)
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]*Comment, error)
	Delete(ctx context.Context, id string) error
}
