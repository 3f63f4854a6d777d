// Package config loads service configuration from environment
// variables, with an optional .env file for development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full service configuration. All keys carry the
// INKWELL_ prefix.
type Config struct {
	// AuthSecret signs session tokens and derives the reset-key secret.
	// The service refuses to start without it.
	AuthSecret string `env:"AUTH_SECRET"`

	// AdminUsername names the single administrator account.
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`

	// PGDSN enables Postgres persistence; blank falls back to the
	// in-memory store.
	PGDSN string `env:"PG_DSN"`

	Addr string `env:"ADDR" envDefault:":8080"`

	HTTP HTTPConfig `envPrefix:"HTTP_"`
}

// HTTPConfig tunes the http.Server and request middleware.
type HTTPConfig struct {
	ReadTimeout        time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout       time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout        time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerSecond int           `env:"RATE_LIMIT_PER_SECOND" envDefault:"50"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Sanitize applies guardrails to values loaded from the environment.
func (c *Config) Sanitize() {
	c.AuthSecret = strings.TrimSpace(c.AuthSecret)
	c.AdminUsername = strings.TrimSpace(c.AdminUsername)
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	c.HTTP.Sanitize()
}

func (h *HTTPConfig) Sanitize() {
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 15 * time.Second
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 15 * time.Second
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 60 * time.Second
	}
	if h.MaxBodyBytes <= 0 {
		h.MaxBodyBytes = 1 << 20
	}
	if h.RateLimitPerSecond <= 0 {
		h.RateLimitPerSecond = 50
	}
	if h.RateLimitBurst <= 0 {
		h.RateLimitBurst = h.RateLimitPerSecond * 2
	}
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.AuthSecret == "" {
		return errors.New("INKWELL_AUTH_SECRET is required")
	}
	return nil
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "INKWELL_"}); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}
