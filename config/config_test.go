package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "STORE_DRIVER", "DATA_DIR", "ADMIN_PASSWORD", "REDIS_HOST", "KAFKA_BROKER", "IDEMPOTENCY_TTL", "STATS_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, StoreDriverFile, cfg.StoreDriver)
	assert.Equal(t, "./storage", cfg.DataDir)
	assert.Equal(t, "changeme123", cfg.AdminPassword)
	assert.Equal(t, "flashdelivery", cfg.AdminTokenSalt)
	assert.Equal(t, "orders", cfg.OrdersTopic)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.StatsTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBroker)
}

func TestLoad_EnvironmentAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_PASSWORD=from-dotenv\nDATA_DIR=/var/lib/flash\n"), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", StoreDriverPebble)
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("ADMIN_PASSWORD", "")
	// godotenv only fills variables that are unset.
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("ADMIN_PASSWORD")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreDriverPebble, cfg.StoreDriver)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "/var/lib/flash", cfg.DataDir)
	assert.Equal(t, "from-dotenv", cfg.AdminPassword)
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{name: "unset", raw: "", want: time.Hour},
		{name: "go duration", raw: "90m", want: 90 * time.Minute},
		{name: "seconds", raw: "120", want: 2 * time.Minute},
		{name: "garbage", raw: "soon", want: time.Hour},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", testCase.raw)
			assert.Equal(t, testCase.want, getDuration("TEST_DURATION", time.Hour))
		})
	}
}
