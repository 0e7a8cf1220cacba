package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Remote backend configuration. Backend picks explicitly ("postgres",
	// "redis" or "cache"); empty means select by which URL is set, preferring
	// Postgres when both are.
	Backend     string
	DatabaseURL string
	RedisURL    string

	// Record store settings
	StartingCoins int64
	RemoteTimeout time.Duration
	SweepInterval time.Duration

	// Operator surface (health + metrics). Empty disables the listener.
	OpsAddr string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, reading a .env file first
// if one is present.
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Backend:     os.Getenv("RECORD_BACKEND"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		// Store settings with defaults
		StartingCoins: 1000,
		RemoteTimeout: 5 * time.Second,
		SweepInterval: 45 * time.Second,

		OpsAddr:     os.Getenv("OPS_ADDR"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	switch config.Backend {
	case "", "postgres", "redis", "cache":
	default:
		return nil, fmt.Errorf("invalid RECORD_BACKEND value %q", config.Backend)
	}

	// Override defaults if environment variables are set
	if coins := os.Getenv("STARTING_COINS"); coins != "" {
		parsed, err := strconv.ParseInt(coins, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STARTING_COINS value %q: %w", coins, err)
		}
		config.StartingCoins = parsed
	}
	if timeout := os.Getenv("REMOTE_TIMEOUT_SECONDS"); timeout != "" {
		parsed, err := strconv.Atoi(timeout)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid REMOTE_TIMEOUT_SECONDS value %q", timeout)
		}
		config.RemoteTimeout = time.Duration(parsed) * time.Second
	}
	if interval := os.Getenv("SWEEP_INTERVAL_SECONDS"); interval != "" {
		parsed, err := strconv.Atoi(interval)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid SWEEP_INTERVAL_SECONDS value %q", interval)
		}
		config.SweepInterval = time.Duration(parsed) * time.Second
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	return config, nil
}
