package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell.blog/internal/auth"
	"inkwell.blog/internal/blog"
	"inkwell.blog/internal/store/memory"
	"inkwell.blog/internal/stream"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T, tokenOpts ...auth.TokenCodecOption) *apiClient {
	t.Helper()

	store := memory.New()
	service := blog.NewService(store)
	creds := blog.NewCredentialAdapter(store)

	tokens, err := auth.NewTokenCodec("test-secret", tokenOpts...)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	keys, err := auth.NewResetKeyCodec("test-secret")
	if err != nil {
		t.Fatalf("NewResetKeyCodec: %v", err)
	}

	api := New(Options{
		Service:            service,
		Login:              auth.NewAuthenticator(creds, tokens),
		Tokens:             tokens,
		Resolver:           auth.NewPrincipalResolver(creds, "root"),
		Resets:             auth.NewPasswordResetFlow(creds, keys),
		Stream:             stream.New(),
		Version:            "test",
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func (c *apiClient) register(username, email, password string) map[string]any {
	c.t.Helper()
	resp := c.post("/users", map[string]any{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: unexpected status %d", username, resp.StatusCode)
	}
	return decode[map[string]any](c.t, resp)
}

func (c *apiClient) loginAs(login, password string) string {
	c.t.Helper()
	resp := c.post("/authenticate", map[string]any{
		"login":    login,
		"password": password,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("authenticate %s: unexpected status %d", login, resp.StatusCode)
	}
	var payload authenticateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode token response: %v", err)
	}
	if payload.AccessToken == "" {
		c.t.Fatalf("empty token issued")
	}
	return payload.AccessToken
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestAuthenticateAndAccessProtectedRoute(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "s3cret")

	// Anonymous access to /api is rejected by the policy.
	resp := api.get("/api/posts", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	token := api.loginAs("alice", "s3cret")
	resp = api.get("/api/posts", nil, bearerHeader(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "s3cret")

	resp := api.post("/authenticate", map[string]any{"login": "alice", "password": "wrong"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", resp.StatusCode)
	}

	resp = api.post("/authenticate", map[string]any{"login": "ghost", "password": "s3cret"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown user: expected 401, got %d", resp.StatusCode)
	}

	resp = api.post("/authenticate", map[string]any{"login": "", "password": ""}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank credentials: expected 400, got %d", resp.StatusCode)
	}
}

func TestAuthenticateAcceptsFormBody(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "s3cret")

	form := url.Values{"username": {"alice"}, "password": {"s3cret"}}
	req, err := http.NewRequest(http.MethodPost, api.baseURL+"/authenticate", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := api.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
}

func TestGarbageTokenStaysAnonymousOnPublicRoute(t *testing.T) {
	api := newTestAPI(t)

	// The filter must not reject; public routes still work with a bad token.
	resp := api.get("/healthz", nil, bearerHeader("garbage"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// On a protected route the same token degrades to anonymous, so 401.
	resp = api.get("/api/posts", nil, bearerHeader("garbage"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPreflightOnProtectedRoute(t *testing.T) {
	api := newTestAPI(t)

	// Preflight carries no credentials and must not hit the policy.
	resp := api.do(http.MethodOptions, "/api/posts", nil, map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPost,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight: expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatalf("preflight response missing allowed methods")
	}
}

func TestExpiredTokenRejectedOverHTTP(t *testing.T) {
	t0 := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	// The server clock sits 31 minutes past the token's issue time.
	api := newTestAPI(t, auth.WithTokenClock(func() time.Time {
		return t0.Add(31 * time.Minute)
	}))
	api.register("alice", "a@x.com", "s3cret")

	issuer, err := auth.NewTokenCodec("test-secret", auth.WithTokenClock(func() time.Time {
		return t0
	}))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	token, err := issuer.Generate("alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	resp := api.get("/api/posts", nil, bearerHeader(token))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", resp.StatusCode)
	}
}

func TestPasswordResetEndToEnd(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "old-password")

	// Wrong email leaks nothing beyond 404.
	resp := api.get("/users/password/alice/wrong@x.com/reset", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("wrong email: expected 404, got %d", resp.StatusCode)
	}

	resp = api.get("/users/password/alice/a@x.com/reset", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("request reset: expected 200, got %d", resp.StatusCode)
	}
	payload := decode[requestResetResponse](t, resp)
	if payload.ResetKey == "" {
		t.Fatal("empty reset key")
	}

	resp = api.do(http.MethodPatch, "/users/password/alice/a@x.com/reset", map[string]any{
		"resetKey":    payload.ResetKey,
		"newPassword": "new-password",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("apply reset: expected 204, got %d", resp.StatusCode)
	}

	// Old password no longer works, new one does.
	resp = api.post("/authenticate", map[string]any{"login": "alice", "password": "old-password"}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old password: expected 401, got %d", resp.StatusCode)
	}
	api.loginAs("alice", "new-password")
}

func TestPasswordResetRejectsForeignKey(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "pw")
	api.register("carol", "c@x.com", "pw")

	resp := api.get("/users/password/alice/a@x.com/reset", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("request reset: expected 200, got %d", resp.StatusCode)
	}
	payload := decode[requestResetResponse](t, resp)

	// Alice's key must not reset carol's password.
	resp = api.do(http.MethodPatch, "/users/password/carol/c@x.com/reset", map[string]any{
		"resetKey":    payload.ResetKey,
		"newPassword": "stolen",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("foreign key: expected 400, got %d", resp.StatusCode)
	}
	api.loginAs("carol", "pw")
}

func TestAdminOnlyUserDeletion(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice", "a@x.com", "pw")
	api.register("bob", "b@x.com", "pw")
	api.register("root", "root@x.com", "pw")

	aliceID := alice["id"].(string)

	bobToken := api.loginAs("bob", "pw")
	resp := api.do(http.MethodDelete, "/api/users/"+aliceID, nil, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin delete: expected 403, got %d", resp.StatusCode)
	}

	rootToken := api.loginAs("root", "pw")
	resp = api.do(http.MethodDelete, "/api/users/"+aliceID, nil, bearerHeader(rootToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d", resp.StatusCode)
	}
}

func TestPostOwnershipOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "pw")
	api.register("bob", "b@x.com", "pw")

	aliceToken := api.loginAs("alice", "pw")
	bobToken := api.loginAs("bob", "pw")

	resp := api.post("/api/posts", map[string]any{
		"title": "Hello",
		"body":  "first post",
		"tags":  []string{"go"},
	}, bearerHeader(aliceToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d", resp.StatusCode)
	}
	post := decode[map[string]any](t, resp)
	postID := post["id"].(string)

	resp = api.do(http.MethodDelete, "/api/posts/"+postID, nil, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign delete: expected 403, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodPatch, "/api/posts/"+postID, map[string]any{
		"title": "Hello again",
	}, bearerHeader(aliceToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner update: expected 200, got %d", resp.StatusCode)
	}
	updated := decode[map[string]any](t, resp)
	if updated["title"] != "Hello again" {
		t.Fatalf("unexpected title: %v", updated["title"])
	}

	resp = api.do(http.MethodDelete, "/api/posts/"+postID, nil, bearerHeader(aliceToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner delete: expected 204, got %d", resp.StatusCode)
	}
}

func TestCommentsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "pw")
	api.register("bob", "b@x.com", "pw")

	aliceToken := api.loginAs("alice", "pw")
	bobToken := api.loginAs("bob", "pw")

	resp := api.post("/api/posts", map[string]any{"title": "Post", "body": "body"}, bearerHeader(aliceToken))
	post := decode[map[string]any](t, resp)
	postID := post["id"].(string)

	resp = api.post("/api/posts/"+postID+"/comments", map[string]any{"body": "nice"}, bearerHeader(bobToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create comment: expected 201, got %d", resp.StatusCode)
	}
	comment := decode[map[string]any](t, resp)
	commentID := comment["id"].(string)

	resp = api.get("/api/posts/"+postID+"/comments", nil, bearerHeader(aliceToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list comments: expected 200, got %d", resp.StatusCode)
	}
	listing := decode[map[string]any](t, resp)
	items := listing["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(items))
	}

	resp = api.do(http.MethodDelete, "/api/posts/"+postID+"/comments/"+commentID, nil, bearerHeader(bobToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete comment: expected 204, got %d", resp.StatusCode)
	}
}

func TestRegistrationConflict(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice", "a@x.com", "pw")

	resp := api.post("/users", map[string]any{
		"username": "alice",
		"email":    "other@x.com",
		"password": "pw",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate username: expected 409, got %d", resp.StatusCode)
	}
}
