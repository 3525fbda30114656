package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, "pesaflow", cfg.Postgres.User)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "sess:", cfg.Session.KeyPrefix)
	assert.Equal(t, 3, cfg.Callback.MaxRetries)
	assert.Equal(t, 1500*time.Millisecond, cfg.Callback.RetryBackoff)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("UPSTREAM_BASE_URL", "https://api.example.com/api/v1")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("CALLBACK_MAX_RETRIES", "5")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "https://api.example.com/api/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5, cfg.Callback.MaxRetries)
}

func TestAppConfig_SanitizeGuardrails(t *testing.T) {
	cfg := AppConfig{
		Upstream: UpstreamConfig{Timeout: -time.Second},
		Session:  SessionConfig{TTL: 0},
		Callback: CallbackConfig{MaxRetries: -1, RetryBackoff: 0},
	}
	cfg.Sanitize()

	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3, cfg.Callback.MaxRetries)
	assert.Equal(t, 1500*time.Millisecond, cfg.Callback.RetryBackoff)
	assert.Equal(t, "/", cfg.Callback.ConnectedRedirect)
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}
