package auth

import "context"

// Role is a coarse authorization level attached to a principal.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated identity for a single request. It is
// built fresh per request from a validated token, never persisted, and
// discarded when the request ends.
type Principal struct {
	// SubjectID is the stable opaque identifier of the user, suitable
	// for comparison against a resource's owner id.
	SubjectID string
	// Username is the login name the session token was issued for.
	Username string
	Roles    map[Role]struct{}
}

// NewPrincipal builds a principal with the given roles. Every principal
// carries RoleUser; RoleAdmin is only ever added on top of it.
func NewPrincipal(subjectID, username string, admin bool) *Principal {
	roles := map[Role]struct{}{RoleUser: {}}
	if admin {
		roles[RoleAdmin] = struct{}{}
	}
	return &Principal{
		SubjectID: subjectID,
		Username:  username,
		Roles:     roles,
	}
}

// HasRole reports whether the principal holds the role.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	_, ok := p.Roles[role]
	return ok
}

// IsAdmin reports whether the principal holds RoleAdmin.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// Owns reports whether the principal's subject id matches ownerID.
func (p *Principal) Owns(ownerID string) bool {
	return p != nil && ownerID != "" && p.SubjectID == ownerID
}

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	if principal == nil {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
