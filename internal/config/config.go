// Package config loads the service configuration from FAMILYSYNC_AUTH_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name
const Prefix = "FAMILYSYNC_AUTH_"

// MinSecretLen is the minimum HS256 key length in bytes
const MinSecretLen = 32

// Token store backends
const (
	StoreSQL   = "sql"
	StoreRedis = "redis"
	StoreBolt  = "bolt"
)

// Config is the complete service configuration
type Config struct {
	HTTP      HTTPConfig      `envPrefix:"HTTP_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Tokens    TokenConfig     `envPrefix:"TOKEN_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Bolt      BoltConfig      `envPrefix:"BOLT_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	RateLimit RateLimitConfig `envPrefix:"LOGIN_RATE_"`
	Log       LogConfig       `envPrefix:"LOG_"`
}

// HTTPConfig configures the listener
type HTTPConfig struct {
	Addr            string        `env:"ADDR"             envDefault:":8080"`
	BasePath        string        `env:"BASE_PATH"        envDefault:"/api/v1"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig configures the SQL database holding users and claims
type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DSN"    envDefault:"familysync-auth.db"`
}

// TokenConfig selects where refresh tokens live
type TokenConfig struct {
	Store      string        `env:"STORE"       envDefault:"sql"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"72h"`
}

// RedisConfig is used when Tokens.Store is "redis"
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`
	Prefix   string `env:"PREFIX"   envDefault:"familysync"`
}

// BoltConfig is used when Tokens.Store is "bolt"
type BoltConfig struct {
	Path string `env:"PATH" envDefault:"familysync-tokens.db"`
}

// JWTConfig configures access token minting
type JWTConfig struct {
	Secret    string        `env:"SECRET"`
	Issuer    string        `env:"ISSUER"     envDefault:"familysync.auth"`
	Audience  string        `env:"AUDIENCE"   envDefault:"api://familysync"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"120m"`
}

// RateLimitConfig throttles login attempts per client IP
type RateLimitConfig struct {
	RPS   float64       `env:"RPS"   envDefault:"0.5"`
	Burst int           `env:"BURST" envDefault:"5"`
	Idle  time.Duration `env:"IDLE"  envDefault:"10m"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  slog.Level `env:"LEVEL"  envDefault:"INFO"`
	Format string     `env:"FORMAT" envDefault:"json"`
}

// Load parses the process environment
func Load() (*Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown drivers, stores and formats. The signing secret
// is checked separately by JWT.Validate since only serve needs it.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}

	switch c.Tokens.Store {
	case StoreSQL, StoreRedis, StoreBolt:
	default:
		errs = append(errs, fmt.Errorf("unsupported token store %q", c.Tokens.Store))
	}
	if c.Tokens.RefreshTTL <= 0 {
		errs = append(errs, errors.New("refresh token TTL must be positive"))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.Log.Format))
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("login rate limit must be positive"))
	}

	return errors.Join(errs...)
}

// Validate checks the signing secret and token lifetime
func (c JWTConfig) Validate() error {
	if len(c.Secret) < MinSecretLen {
		return fmt.Errorf("%sJWT_SECRET must be at least %d bytes", Prefix, MinSecretLen)
	}
	if c.AccessTTL <= 0 {
		return errors.New("access token TTL must be positive")
	}
	return nil
}

// NewLogger builds the slog logger described by c
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
