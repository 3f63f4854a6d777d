package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

const (
	resetKeyTTL = 30 * time.Minute

	// resetKeyDomain separates the reset-key MAC secret from the session
	// token secret. Both are derived from the same configured value, but
	// a forged session token can never pass as a reset key or the other
	// way around.
	resetKeyDomain = "inkwell/reset-key/v1"
)

// ResetClaims are the claims embedded in a password reset key.
type ResetClaims struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

// Expired reports whether the claims are past their window at now.
func (c *ResetClaims) Expired(now time.Time) bool {
	return now.Unix() > c.ExpiresAt
}

// ResetKeyCodec issues and parses password reset keys. The wire format
// is deliberately independent of the session token codec:
//
//	base64url(JSON claims) + "." + base64url(HMAC-SHA256 tag)
//
// Parse verifies integrity only; expiry is the caller's responsibility.
type ResetKeyCodec struct {
	signer *Signer
	now    func() time.Time
}

// ResetKeyCodecOption configures a ResetKeyCodec.
type ResetKeyCodecOption func(*ResetKeyCodec)

// WithResetKeyClock overrides the time source (useful for tests).
func WithResetKeyClock(fn func() time.Time) ResetKeyCodecOption {
	return func(c *ResetKeyCodec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewResetKeyCodec derives the reset-key secret from the configured
// secret and the codec domain constant.
func NewResetKeyCodec(secret string, opts ...ResetKeyCodecOption) (*ResetKeyCodec, error) {
	if _, err := NewSigner(secret); err != nil {
		return nil, err
	}
	derived := sha256.Sum256([]byte(secret + "\x00" + resetKeyDomain))
	signer, err := NewSigner(string(derived[:]))
	if err != nil {
		return nil, err
	}
	c := &ResetKeyCodec{
		signer: signer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate issues a reset key for the username/email pair, expiring
// resetKeyTTL from now.
func (c *ResetKeyCodec) Generate(username, email string) (string, error) {
	claims := ResetClaims{
		Username:  username,
		Email:     email,
		ExpiresAt: c.now().UTC().Add(resetKeyTTL).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	tag := c.signer.Sign([]byte(encoded))
	return encoded + "." + base64.RawURLEncoding.EncodeToString(tag), nil
}

// Parse decodes and integrity-checks a raw key. Malformed input and tag
// mismatches both yield ErrInvalidKey. Expiry is not checked here.
func (c *ResetKeyCodec) Parse(raw string) (*ResetClaims, error) {
	encoded, tagPart, ok := strings.Cut(raw, ".")
	if !ok || encoded == "" || tagPart == "" {
		return nil, ErrInvalidKey
	}
	tag, err := base64.RawURLEncoding.DecodeString(tagPart)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if !c.signer.Verify([]byte(encoded), tag) {
		return nil, ErrInvalidKey
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidKey
	}
	var claims ResetClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidKey
	}
	if claims.Username == "" || claims.Email == "" || claims.ExpiresAt == 0 {
		return nil, ErrInvalidKey
	}
	return &claims, nil
}
