package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/api/v1", cfg.HTTP.BasePath)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, StoreSQL, cfg.Tokens.Store)
	assert.Equal(t, 72*time.Hour, cfg.Tokens.RefreshTTL)
	assert.Equal(t, "familysync.auth", cfg.JWT.Issuer)
	assert.Equal(t, "api://familysync", cfg.JWT.Audience)
	assert.Equal(t, 120*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// No secret configured yet
	assert.Error(t, cfg.JWT.Validate())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"FAMILYSYNC_AUTH_HTTP_ADDR":        "127.0.0.1:9000",
		"FAMILYSYNC_AUTH_DB_DRIVER":        "postgres",
		"FAMILYSYNC_AUTH_DB_DSN":           "postgres://auth@localhost/auth",
		"FAMILYSYNC_AUTH_TOKEN_STORE":      "redis",
		"FAMILYSYNC_AUTH_REDIS_ADDR":       "redis:6379",
		"FAMILYSYNC_AUTH_REDIS_DB":         "2",
		"FAMILYSYNC_AUTH_JWT_SECRET":       strings.Repeat("s", 32),
		"FAMILYSYNC_AUTH_JWT_ACCESS_TTL":   "15m",
		"FAMILYSYNC_AUTH_LOGIN_RATE_RPS":   "2.5",
		"FAMILYSYNC_AUTH_LOGIN_RATE_BURST": "10",
		"FAMILYSYNC_AUTH_LOG_LEVEL":        "DEBUG",
		"FAMILYSYNC_AUTH_LOG_FORMAT":       "text",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, StoreRedis, cfg.Tokens.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.NoError(t, cfg.JWT.Validate())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"FAMILYSYNC_AUTH_DB_DRIVER": "mysql"}},
		{name: "unknown store", env: map[string]string{"FAMILYSYNC_AUTH_TOKEN_STORE": "memcached"}},
		{name: "unknown log format", env: map[string]string{"FAMILYSYNC_AUTH_LOG_FORMAT": "xml"}},
		{name: "non-positive refresh ttl", env: map[string]string{"FAMILYSYNC_AUTH_TOKEN_REFRESH_TTL": "0s"}},
		{name: "malformed duration", env: map[string]string{"FAMILYSYNC_AUTH_JWT_ACCESS_TTL": "soon"}},
		{name: "zero burst", env: map[string]string{"FAMILYSYNC_AUTH_LOGIN_RATE_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.env)
			assert.Error(t, err)
		})
	}
}

func TestJWTConfig_Validate(t *testing.T) {
	assert.Error(t, JWTConfig{Secret: "short", AccessTTL: time.Minute}.Validate())
	assert.Error(t, JWTConfig{Secret: strings.Repeat("x", 32)}.Validate())
	assert.NoError(t, JWTConfig{Secret: strings.Repeat("x", 32), AccessTTL: time.Minute}.Validate())
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	LogConfig{Level: slog.LevelWarn, Format: "json"}.NewLogger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	LogConfig{Level: slog.LevelInfo, Format: "json"}.NewLogger(&buf).Info("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	LogConfig{Level: slog.LevelInfo, Format: "text"}.NewLogger(&buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
