package httpapi

import (
	"net/http"
	"strings"

	"inkwell.blog/internal/auth"
	"inkwell.blog/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// authenticate is the authentication filter. It never rejects: a
// missing, malformed, invalid or expired credential simply leaves the
// request anonymous, and the authorization policy decides later whether
// anonymous is enough. The raw token is never logged.
func (a *API) authenticate(next http.Handler) http.Handler {
	if a.tokens == nil || a.resolver == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r.Header.Get(authHeader))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.tokens.Validate(token)
		if err != nil {
			obs.ObserveTokenValidation("invalid")
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.resolver.Resolve(r.Context(), claims.Username())
		if err != nil {
			// Token was valid but the user is gone; treat as anonymous.
			obs.ObserveTokenValidation("invalid")
			next.ServeHTTP(w, r)
			return
		}

		obs.ObserveTokenValidation("ok")
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
