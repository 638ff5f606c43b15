package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	StoreBackend    string
	RedisAddr       string
	RedisPassword   string
	MySQLDSN        string
	CartKey         string
	CatalogBaseURL  string
	CatalogTimeout  time.Duration
	NotifyChannel   string
	NotifyCooldown  time.Duration
	EventWorkers    int
	EventQueueSize  int
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then builds Config from the
// environment. Variables already set win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	return FromEnv()
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		GRPCAddr:        envOrDefault("GRPC_ADDR", ":50051"),
		StoreBackend:    envOrDefault("STORE_BACKEND", BackendRedis),
		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MySQLDSN:        envOrDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true"),
		CartKey:         envOrDefault("CART_KEY", "cart"),
		CatalogBaseURL:  envOrDefault("CATALOG_BASE_URL", "https://dummyjson.com"),
		NotifyChannel:   envOrDefault("NOTIFY_CHANNEL", "cart:notifications"),
		EventWorkers:    4,
		EventQueueSize:  1000,
		CatalogTimeout:  10 * time.Second,
		NotifyCooldown:  100 * time.Millisecond,
		ShutdownTimeout: 10 * time.Second,
	}

	var err error
	if cfg.CatalogTimeout, err = envDuration("CATALOG_TIMEOUT_MS", time.Millisecond, cfg.CatalogTimeout); err != nil {
		return Config{}, err
	}
	if cfg.NotifyCooldown, err = envDuration("NOTIFY_COOLDOWN_MS", time.Millisecond, cfg.NotifyCooldown); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT_SECONDS", time.Second, cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.EventWorkers, err = envInt("EVENT_WORKERS", cfg.EventWorkers); err != nil {
		return Config{}, err
	}
	if cfg.EventQueueSize, err = envInt("EVENT_QUEUE_SIZE", cfg.EventQueueSize); err != nil {
		return Config{}, err
	}

	switch cfg.StoreBackend {
	case BackendRedis, BackendMySQL, BackendMemory:
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be one of redis, mysql, memory: got %q", cfg.StoreBackend)
	}
	if cfg.EventWorkers < 0 || cfg.EventQueueSize < 0 {
		return Config{}, fmt.Errorf("EVENT_WORKERS and EVENT_QUEUE_SIZE must not be negative")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envDuration(key string, unit time.Duration, def time.Duration) (time.Duration, error) {
	if os.Getenv(key) == "" {
		return def, nil
	}
	n, err := envInt(key, 0)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return time.Duration(n) * unit, nil
}
