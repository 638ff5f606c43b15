package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_ADDR", "GRPC_ADDR", "STORE_BACKEND", "REDIS_ADDR", "REDIS_PASSWORD",
	"MYSQL_DSN", "CART_KEY", "CATALOG_BASE_URL", "CATALOG_TIMEOUT_MS",
	"NOTIFY_CHANNEL", "NOTIFY_COOLDOWN_MS", "EVENT_WORKERS", "EVENT_QUEUE_SIZE",
	"SHUTDOWN_TIMEOUT_SECONDS",
}

// clearEnv blanks every config variable for the duration of the test
func clearEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, "cart", cfg.CartKey)
	assert.Equal(t, "https://dummyjson.com", cfg.CatalogBaseURL)
	assert.Equal(t, 100*time.Millisecond, cfg.NotifyCooldown)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 4, cfg.EventWorkers)
	assert.Equal(t, 1000, cfg.EventQueueSize)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("CART_KEY", "cart:kiosk-1")
	t.Setenv("NOTIFY_COOLDOWN_MS", "250")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("EVENT_WORKERS", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "cart:kiosk-1", cfg.CartKey)
	assert.Equal(t, 250*time.Millisecond, cfg.NotifyCooldown)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 0, cfg.EventWorkers)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"backend":           {"STORE_BACKEND", "sqlite"},
		"workers":           {"EVENT_WORKERS", "many"},
		"cooldown":          {"NOTIFY_COOLDOWN_MS", "1s"},
		"queue":             {"EVENT_QUEUE_SIZE", "-1"},
		"negative cooldown": {"NOTIFY_COOLDOWN_MS", "-5"},
		"negative timeout":  {"CATALOG_TIMEOUT_MS", "-1"},
		"negative shutdown": {"SHUTDOWN_TIMEOUT_SECONDS", "-1"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9090\nCART_KEY=from-file\n"), 0o600))
	t.Setenv("CART_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "from-env", cfg.CartKey)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}
