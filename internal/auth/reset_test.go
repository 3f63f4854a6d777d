package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCredentialStore struct {
	creds   map[string]*Credential
	updated map[string]string
}

func newFakeCredentialStore(creds ...*Credential) *fakeCredentialStore {
	s := &fakeCredentialStore{
		creds:   make(map[string]*Credential),
		updated: make(map[string]string),
	}
	for _, c := range creds {
		s.creds[c.Username] = c
	}
	return s
}

func (s *fakeCredentialStore) FindByUsername(_ context.Context, username string) (*Credential, error) {
	c, ok := s.creds[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeCredentialStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	for _, c := range s.creds {
		if c.ID == userID {
			c.PasswordHash = passwordHash
			s.updated[userID] = passwordHash
			return nil
		}
	}
	return ErrUserNotFound
}

func testCredential(t *testing.T, id, username, email, password string) *Credential {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &Credential{ID: id, Username: username, Email: email, PasswordHash: hash}
}

func TestPasswordResetFlow(t *testing.T) {
	store := newFakeCredentialStore(
		testCredential(t, "u1", "alice", "a@x.com", "old-password"),
	)
	keys, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	flow := NewPasswordResetFlow(store, keys)

	key, err := flow.RequestReset(context.Background(), "alice", "a@x.com")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if key == "" {
		t.Fatalf("RequestReset returned empty key")
	}

	if err := flow.ApplyReset(context.Background(), key, "alice", "a@x.com", "new-password"); err != nil {
		t.Fatalf("ApplyReset: %v", err)
	}

	hash, ok := store.updated["u1"]
	if !ok {
		t.Fatalf("password was not updated")
	}
	if err := VerifyPassword(hash, "new-password"); err != nil {
		t.Fatalf("stored hash does not match new password: %v", err)
	}
	if err := VerifyPassword(hash, "old-password"); err == nil {
		t.Fatalf("stored hash still matches old password")
	}
}

func TestRequestResetUnknownIdentity(t *testing.T) {
	store := newFakeCredentialStore(
		testCredential(t, "u1", "alice", "a@x.com", "pw"),
	)
	keys, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	flow := NewPasswordResetFlow(store, keys)

	cases := []struct{ username, email string }{
		{"bob", "b@x.com"},       // no such user
		{"alice", "wrong@x.com"}, // email mismatch
	}
	for _, tc := range cases {
		if _, err := flow.RequestReset(context.Background(), tc.username, tc.email); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("RequestReset(%q, %q): got %v, want ErrUserNotFound", tc.username, tc.email, err)
		}
	}
}

func TestApplyResetRejectsOtherIdentity(t *testing.T) {
	store := newFakeCredentialStore(
		testCredential(t, "u1", "alice", "a@x.com", "pw"),
		testCredential(t, "u2", "carol", "c@x.com", "pw"),
	)
	keys, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	flow := NewPasswordResetFlow(store, keys)

	key, err := flow.RequestReset(context.Background(), "alice", "a@x.com")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if err := flow.ApplyReset(context.Background(), key, "carol", "c@x.com", "stolen"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("key for alice applied to carol: got %v, want ErrInvalidKey", err)
	}
	if len(store.updated) != 0 {
		t.Fatalf("password was updated despite identity mismatch")
	}
}

func TestApplyResetExpiredKey(t *testing.T) {
	store := newFakeCredentialStore(
		testCredential(t, "u1", "alice", "a@x.com", "pw"),
	)
	t0 := time.Now()
	keys, err := NewResetKeyCodec("test-secret", WithResetKeyClock(func() time.Time { return t0 }))
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	flow := NewPasswordResetFlow(store, keys, WithResetClock(func() time.Time {
		return t0.Add(resetKeyTTL + time.Minute)
	}))

	key, err := flow.RequestReset(context.Background(), "alice", "a@x.com")
	if err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if err := flow.ApplyReset(context.Background(), key, "alice", "a@x.com", "new-password"); !errors.Is(err, ErrExpiredKey) {
		t.Fatalf("expired key: got %v, want ErrExpiredKey", err)
	}
}

func TestApplyResetGarbageKey(t *testing.T) {
	store := newFakeCredentialStore(
		testCredential(t, "u1", "alice", "a@x.com", "pw"),
	)
	keys, err := NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}
	flow := NewPasswordResetFlow(store, keys)

	if err := flow.ApplyReset(context.Background(), "not-a-key", "alice", "a@x.com", "new"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("garbage key: got %v, want ErrInvalidKey", err)
	}
}
