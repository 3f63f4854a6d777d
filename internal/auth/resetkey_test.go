package auth

import (
	"errors"
	"testing"
	"time"
)

func TestResetKeyRoundTrip(t *testing.T) {
	codec, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	key, err := codec.Generate("alice", "a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := codec.Parse(key)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Username != "alice" || claims.Email != "a@x.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Expired(time.Now()) {
		t.Fatalf("freshly issued key already expired")
	}
}

func TestResetKeyGarbage(t *testing.T) {
	codec, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	for _, raw := range []string{"not-a-key", "", ".", "a.b", "a.", ".b"} {
		if _, err := codec.Parse(raw); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Parse(%q): got %v, want ErrInvalidKey", raw, err)
		}
	}
}

func TestResetKeyTamper(t *testing.T) {
	codec, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	key, err := codec.Generate("alice", "a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	altered := []byte(key)
	if altered[0] == 'A' {
		altered[0] = 'B'
	} else {
		altered[0] = 'A'
	}
	if _, err := codec.Parse(string(altered)); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("tampered key: got %v, want ErrInvalidKey", err)
	}
}

func TestResetKeyIndependentOfSessionTokens(t *testing.T) {
	// Both codecs share the configured secret but must not accept each
	// other's output.
	tokens, err := NewTokenCodec("test-secret")
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	keys, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}

	token, err := tokens.Generate("alice")
	if err != nil {
		t.Fatalf("Generate token: %v", err)
	}
	if _, err := keys.Parse(token); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("session token parsed as reset key: %v", err)
	}

	key, err := keys.Generate("alice", "a@x.com")
	if err != nil {
		t.Fatalf("Generate key: %v", err)
	}
	if _, err := tokens.Validate(key); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reset key validated as session token: %v", err)
	}
}

func TestResetKeyDifferentSecrets(t *testing.T) {
	a, err := NewResetKeyCodec("secret-a")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	b, err := NewResetKeyCodec("secret-b")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	key, err := a.Generate("alice", "a@x.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := b.Parse(key); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("key accepted under a different secret: %v", err)
	}
}
