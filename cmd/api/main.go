package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell.blog/internal/auth"
	"inkwell.blog/internal/blog"
	"inkwell.blog/internal/config"
	"inkwell.blog/internal/httpapi"
	"inkwell.blog/internal/obs"
	"inkwell.blog/internal/store/memory"
	"inkwell.blog/internal/store/pg"
	"inkwell.blog/internal/stream"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Storage: Postgres when a DSN is configured, in-memory otherwise.
	var (
		store blog.Store
		db    *sql.DB
	)
	if cfg.PGDSN != "" {
		pgStore, err := pg.Open(cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		db = pgStore.DB()
	} else {
		log.Print("INKWELL_PG_DSN not set, using in-memory store")
		store = memory.New()
	}

	creds := blog.NewCredentialAdapter(store)

	tokens, err := auth.NewTokenCodec(cfg.AuthSecret)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	keys, err := auth.NewResetKeyCodec(cfg.AuthSecret)
	if err != nil {
		log.Fatalf("reset key codec: %v", err)
	}

	api := httpapi.New(httpapi.Options{
		Service:            blog.NewService(store),
		Login:              auth.NewAuthenticator(creds, tokens),
		Tokens:             tokens,
		Resolver:           auth.NewPrincipalResolver(creds, cfg.AdminUsername),
		Resets:             auth.NewPasswordResetFlow(creds, keys),
		Ready:              httpapi.ReadyProbe{DB: db},
		Stream:             stream.New(),
		Version:            version,
		MaxBodyBytes:       cfg.HTTP.MaxBodyBytes,
		RateLimitPerSecond: cfg.HTTP.RateLimitPerSecond,
		RateLimitBurst:     cfg.HTTP.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	log.Printf("Starting inkwell-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
