package config

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MODERATION_STRICT_AUDIT", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "")
	t.Setenv("REDIS_POOL_SIZE", "")

	cfg := Load()

	assert.False(t, cfg.StrictAudit)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLife)
	assert.Equal(t, 0, cfg.RedisPoolSize)
	assert.Equal(t, "en", cfg.EmailLocale)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MODERATION_STRICT_AUDIT", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")
	t.Setenv("DASHBOARD_CACHE_TTL", "2m")

	cfg := Load()

	assert.True(t, cfg.StrictAudit)
	assert.Equal(t, 40, cfg.DBMaxOpenConns)
	assert.Equal(t, 0, cfg.RedisPoolSize)
	assert.Equal(t, 2*time.Minute, cfg.DashboardCacheTTL)
}

func TestNewRedisClient(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := NewRedisClient(&Config{RedisURL: "redis://" + server.Addr(), RedisPoolSize: 3})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 3, client.Options().PoolSize)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(&Config{RedisURL: "://nope"})
	assert.Error(t, err)
}

func TestNewPostgresDB_MissingURL(t *testing.T) {
	_, err := NewPostgresDB(&Config{})
	assert.Error(t, err)
}
