package auth

import (
	"context"
	"strings"
)

// PrincipalResolver turns a validated token subject into an
// authenticated principal by consulting the external user store.
//
// Role derivation is deliberately simple: every resolved principal is a
// RoleUser, and RoleAdmin is granted iff the username equals the single
// statically configured administrator name. Systems with more than one
// administrator should swap this for an explicit role-assignment lookup.
type PrincipalResolver struct {
	store         CredentialStore
	adminUsername string
}

// NewPrincipalResolver constructs a resolver bound to the store and the
// configured administrator username.
func NewPrincipalResolver(store CredentialStore, adminUsername string) *PrincipalResolver {
	return &PrincipalResolver{
		store:         store,
		adminUsername: strings.TrimSpace(adminUsername),
	}
}

// Resolve loads the user behind a validated subject and builds its
// principal. A missing user yields ErrUserNotFound; callers at the
// request boundary treat that as "anonymous", not as a rejection.
func (r *PrincipalResolver) Resolve(ctx context.Context, username string) (*Principal, error) {
	cred, err := r.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	admin := r.adminUsername != "" && cred.Username == r.adminUsername
	return NewPrincipal(cred.ID, cred.Username, admin), nil
}
