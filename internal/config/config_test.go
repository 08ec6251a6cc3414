package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults fill missing fields", func(t *testing.T) {
		// Given: a config that only sets the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: loading it
		conf, err := Load(path)

		// Then: everything else takes its default
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "standard", conf.Game.Mode)
		assert.Equal(t, 3, conf.Game.BoardSize)
		assert.Equal(t, 500, conf.Training.ProgressInterval)
		assert.InDelta(t, 0.5, conf.Training.LearningRate, 1e-9)
		assert.InDelta(t, 0.95, conf.Training.Discount, 1e-9)
		assert.False(t, conf.Redis.Disabled)
		assert.Equal(t, 168*time.Hour, conf.Reports.TTL)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("File values win over defaults", func(t *testing.T) {
		path := writeConfig(t, "game:\n  mode: xox\n  board-size: 3\ntraining:\n  symmetry: true\n  episodes: 100\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "xox", conf.Game.Mode)
		assert.True(t, conf.Training.Symmetry)
		assert.Equal(t, 100, conf.Training.Episodes)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "redis:\n  host: cache\n")
		t.Setenv("REDIS_HOST", "redis.internal")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "redis.internal:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.Error(t, err)
		assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yml")) })
	})
}
