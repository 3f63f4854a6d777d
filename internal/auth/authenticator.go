package auth

import (
	"context"
	"errors"
	"strings"
)

// Authenticator verifies login credentials and issues session tokens.
type Authenticator struct {
	store  CredentialStore
	tokens *TokenCodec
}

// NewAuthenticator wires the credential store and token codec together.
func NewAuthenticator(store CredentialStore, tokens *TokenCodec) *Authenticator {
	return &Authenticator{store: store, tokens: tokens}
}

// Login checks the password for the login name and returns a fresh
// session token. Unknown users and wrong passwords both fail with
// ErrInvalidCredentials so the response never reveals which part was
// wrong.
func (a *Authenticator) Login(ctx context.Context, login, password string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	cred, err := a.store.FindByUsername(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := VerifyPassword(cred.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.tokens.Generate(cred.Username)
}
