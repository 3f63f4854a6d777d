package auth

import (
	"context"
	"errors"
	"time"
)

// PasswordResetFlow orchestrates out-of-band password recovery: issuing
// a reset key for a verified username/email pair, and later exchanging
// that key plus a new password for a persisted credential change. No
// intermediate state is stored between the two calls.
type PasswordResetFlow struct {
	store CredentialStore
	keys  *ResetKeyCodec
	now   func() time.Time
}

// ResetFlowOption configures a PasswordResetFlow.
type ResetFlowOption func(*PasswordResetFlow)

// WithResetClock overrides the time source (useful for tests).
func WithResetClock(fn func() time.Time) ResetFlowOption {
	return func(f *PasswordResetFlow) {
		if fn != nil {
			f.now = fn
		}
	}
}

// NewPasswordResetFlow wires the credential store and reset key codec.
func NewPasswordResetFlow(store CredentialStore, keys *ResetKeyCodec, opts ...ResetFlowOption) *PasswordResetFlow {
	f := &PasswordResetFlow{
		store: store,
		keys:  keys,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RequestReset verifies the username/email pair against the store and
// returns a fresh reset key. "No such user" and "email mismatch" both
// fail with ErrUserNotFound so the caller cannot probe which part was
// wrong.
func (f *PasswordResetFlow) RequestReset(ctx context.Context, username, email string) (string, error) {
	if _, err := f.lookup(ctx, username, email); err != nil {
		return "", err
	}
	return f.keys.Generate(username, email)
}

// ApplyReset consumes a reset key and persists the new password hash.
// The key must parse, be inside its window, and name the same identity
// as the request; the identity must still exist with a matching email.
func (f *PasswordResetFlow) ApplyReset(ctx context.Context, key, username, email, newPassword string) error {
	claims, err := f.keys.Parse(key)
	if err != nil {
		return err
	}
	if claims.Expired(f.now()) {
		return ErrExpiredKey
	}
	cred, err := f.lookup(ctx, username, email)
	if err != nil {
		return err
	}
	if claims.Username != username || claims.Email != email {
		return ErrInvalidKey
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return f.store.UpdatePassword(ctx, cred.ID, hash)
}

func (f *PasswordResetFlow) lookup(ctx context.Context, username, email string) (*Credential, error) {
	cred, err := f.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if cred.Email != email {
		return nil, ErrUserNotFound
	}
	return cred, nil
}
