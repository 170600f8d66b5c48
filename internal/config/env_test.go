package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("VAPID_PUBLIC_KEY", "pub")
	t.Setenv("VAPID_PRIVATE_KEY", "priv")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", env.HTTPPort)
	assert.Equal(t, "local", env.StorageEnv.Type)
	assert.Equal(t, "data", env.BaseDir)
	assert.Equal(t, "pub", env.VAPIDPublicKey)
	assert.Equal(t, "priv", env.VAPIDPrivateKey)
	assert.Equal(t, "mailto:admin@example.com", env.VAPIDSubject)
	assert.Equal(t, 86400, env.TTL)
	assert.Equal(t, 10*time.Second, env.Timeout)
	assert.Equal(t, 1, env.CacheVersion)
	assert.Equal(t, slog.LevelInfo, env.SlogLevel())
}

func TestLoadEnv_PrefixedWins(t *testing.T) {
	t.Setenv("VAPID_PUBLIC_KEY", "bare")
	t.Setenv("LEAVEPUSH_VAPID_PUBLIC_KEY", "prefixed")
	t.Setenv("LEAVEPUSH_VAPID_PRIVATE_KEY", "priv")
	t.Setenv("LEAVEPUSH_HTTP_PORT", "8080")
	t.Setenv("LEAVEPUSH_LOG_LEVEL", "debug")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", env.VAPIDPublicKey)
	assert.Equal(t, "8080", env.HTTPPort)
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
}

func TestLoadEnv_MissingVAPIDKeys(t *testing.T) {
	t.Setenv("VAPID_PUBLIC_KEY", "")
	t.Setenv("LEAVEPUSH_VAPID_PUBLIC_KEY", "")
	t.Setenv("VAPID_PRIVATE_KEY", "priv")

	_, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAPID_PUBLIC_KEY")
}

func TestLoadStorageEnv_DoesNotNeedVAPID(t *testing.T) {
	t.Setenv("LEAVEPUSH_STORAGE_TYPE", "redis")
	t.Setenv("LEAVEPUSH_REDIS_DB", "2")

	env, err := LoadStorageEnv()
	require.NoError(t, err)
	assert.Equal(t, "redis", env.Type)
	assert.Equal(t, 2, env.RedisDB)
}
