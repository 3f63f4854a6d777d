package blog

import (
	"context"
	"errors"

	"inkwell.blog/internal/auth"
)

// CredentialAdapter exposes the narrow credential view of the user
// store that the auth subsystem consumes.
type CredentialAdapter struct {
	store Store
}

var _ auth.CredentialStore = (*CredentialAdapter)(nil)

func NewCredentialAdapter(store Store) *CredentialAdapter {
	return &CredentialAdapter{store: store}
}

func (a *CredentialAdapter) FindByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	u, err := a.store.Users(ctx).FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credential{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}, nil
}

func (a *CredentialAdapter) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	err := a.store.Users(ctx).UpdatePassword(ctx, userID, passwordHash)
	if errors.Is(err, ErrNotFound) {
		return auth.ErrUserNotFound
	}
	return err
}
