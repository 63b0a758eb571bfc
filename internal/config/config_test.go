package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.False(t, cfg.OAuth.Enabled())
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.True(t, cfg.OAuth.Enabled())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("JOBBOARD_API_URL", "http://jobs.local")
	t.Setenv("JOBBOARD_CACHE_BACKEND", "")
	t.Setenv("JOBBOARD_CACHE_PATH", "/tmp/cache.json")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://jobs.local", cfg.BaseURL)
	assert.Equal(t, CacheBackendFile, cfg.CacheBackend)
	assert.Equal(t, "/tmp/cache.json", cfg.CachePath)
	assert.Equal(t, 15*time.Second, cfg.Timeout)

	t.Setenv("JOBBOARD_CACHE_BACKEND", "floppy")
	_, err = LoadClient()
	assert.Error(t, err)
}
