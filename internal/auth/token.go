package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer     = "inkwell"
	sessionTokenTTL = 30 * time.Minute
)

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Username returns the token subject, the login name the session was
// issued for.
func (c *SessionClaims) Username() string {
	return c.Subject
}

// TokenCodec issues and validates session tokens. Tokens are HS256 JWTs
// signed with the configured secret; validity is a pure function of the
// token string and the current time, never of server-side state.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// TokenCodecOption configures a TokenCodec.
type TokenCodecOption func(*TokenCodec)

// WithTokenClock overrides the time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewTokenCodec constructs a codec from the shared signing secret.
func NewTokenCodec(secret string, opts ...TokenCodecOption) (*TokenCodec, error) {
	if _, err := NewSigner(secret); err != nil {
		return nil, err
	}
	c := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate issues a fresh session token for username, valid for
// sessionTokenTTL from now.
func (c *TokenCodec) Generate(username string) (string, error) {
	now := c.now().UTC()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate parses and verifies a raw token string. Every failure mode
// (malformed input, forged or altered signature, wrong issuer, expiry)
// collapses into ErrInvalidToken so callers have exactly two outcomes:
// claims or nothing. There is no expiry leeway.
func (c *TokenCodec) Validate(raw string) (*SessionClaims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
