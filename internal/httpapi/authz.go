package httpapi

import (
	"net/http"
	"strings"

	"inkwell.blog/internal/auth"
)

// Rule protects a path prefix, optionally narrowed to one method. A
// blank Role means public. Rules are evaluated in order, first match
// wins, so more specific entries come first.
type Rule struct {
	Method string
	Prefix string
	Role   auth.Role
}

type Policy []Rule

// DefaultPolicy is the route protection table. Admin-only deletion of
// accounts sits above the blanket /api rule; everything outside /api is
// public and relies on handler-level checks only.
func DefaultPolicy() Policy {
	return Policy{
		{Method: http.MethodDelete, Prefix: "/api/users/", Role: auth.RoleAdmin},
		{Prefix: "/api/", Role: auth.RoleUser},
		{Prefix: "/", Role: ""},
	}
}

// Decide returns the required role for a request, or "" for public.
func (p Policy) Decide(method, path string) auth.Role {
	for _, rule := range p {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if strings.HasPrefix(path, rule.Prefix) {
			return rule.Role
		}
	}
	return ""
}

// authorize enforces the policy after the authentication filter has
// run: anonymous plus a required role is 401, a principal lacking the
// role is 403. CORS preflight never reaches here; the CORS middleware
// answers OPTIONS before the policy runs.
func (a *API) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := a.policy.Decide(r.Method, r.URL.Path)
		if role == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		if !principal.HasRole(role) {
			writeError(w, r, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
