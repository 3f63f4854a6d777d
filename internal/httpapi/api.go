// Package httpapi is the HTTP layer: routing, authentication filter,
// authorization policy and handlers.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"inkwell.blog/internal/audit"
	"inkwell.blog/internal/auth"
	"inkwell.blog/internal/blog"
	"inkwell.blog/internal/obs"
	"inkwell.blog/internal/stream"
)

// ReadyProbe reports readiness, typically by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options bundles the dependencies of the HTTP layer.
type Options struct {
	Service  *blog.Service
	Login    *auth.Authenticator
	Tokens   *auth.TokenCodec
	Resolver *auth.PrincipalResolver
	Resets   *auth.PasswordResetFlow
	Ready    ReadyProbe
	Stream   *stream.Stream
	Version  string

	MaxBodyBytes       int64
	RateLimitPerSecond int
	RateLimitBurst     int
}

type API struct {
	mux      *http.ServeMux
	service  *blog.Service
	login    *auth.Authenticator
	tokens   *auth.TokenCodec
	resolver *auth.PrincipalResolver
	resets   *auth.PasswordResetFlow
	policy   Policy
	ready    ReadyProbe
	stream   *stream.Stream
	version  string
	opts     Options
}

func New(opts Options) *API {
	a := &API{
		mux:      http.NewServeMux(),
		service:  opts.Service,
		login:    opts.Login,
		tokens:   opts.Tokens,
		resolver: opts.Resolver,
		resets:   opts.Resets,
		policy:   DefaultPolicy(),
		ready:    opts.Ready,
		stream:   opts.Stream,
		version:  opts.Version,
		opts:     opts,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// credential endpoints
	a.mux.HandleFunc("/authenticate", a.handleAuthenticate)
	a.mux.HandleFunc("/users/password/", a.handlePasswordReset)

	// public registration
	a.mux.HandleFunc("/users", a.handleRegistration)

	// protected CRUD surface
	a.mux.HandleFunc("/api/users", a.handleUsersCollection)
	a.mux.HandleFunc("/api/users/", a.handleUserResource)
	a.mux.HandleFunc("/api/posts", a.handlePostsCollection)
	a.mux.HandleFunc("/api/posts/", a.handlePostResource)
	a.mux.HandleFunc("/api/tags", a.handleTagsCollection)
	a.mux.HandleFunc("/api/tags/", a.handleTagResource)
	a.mux.HandleFunc("/api/stream", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux. The
// authentication filter runs before the authorization policy; the
// filter never rejects, the policy does.
func (a *API) Handler() http.Handler {
	maxBody := a.opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	var h http.Handler = a.mux
	h = a.authorize(h)
	h = a.authenticate(h)
	if a.opts.RateLimitPerSecond > 0 {
		h = RateLimit(h, a.opts.RateLimitBurst, a.opts.RateLimitPerSecond)
	}
	h = MaxBodyBytes(h, maxBody)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "inkwell-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "inkwell-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) audit(ctx context.Context, event string, fields map[string]any) {
	_ = audit.LogEvent(ctx, event, fields)
}
