package auth

import "context"

// Credential is the externally stored view of a user that the
// credential subsystem consumes. It is read to authenticate logins and
// to verify username/email pairs during reset; only the password hash
// is ever written back.
type Credential struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

// CredentialStore is the narrow persistence boundary of the subsystem.
type CredentialStore interface {
	// FindByUsername returns the stored credential for a login name.
	FindByUsername(ctx context.Context, username string) (*Credential, error)
	// UpdatePassword persists a new password hash for the user.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
