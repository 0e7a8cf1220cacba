package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(1000), cfg.StartingCoins)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 45*time.Second, cfg.SweepInterval)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mascot")
	t.Setenv("STARTING_COINS", "5000")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "2")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "30")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/mascot", cfg.DatabaseURL)
	assert.Equal(t, int64(5000), cfg.StartingCoins)
	assert.Equal(t, 2*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_RecordBackendSelection(t *testing.T) {
	t.Setenv("RECORD_BACKEND", "redis")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Backend)
}

func TestLoad_RejectsUnknownRecordBackend(t *testing.T) {
	t.Setenv("RECORD_BACKEND", "dynamo")

	_, err := load()
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("STARTING_COINS", "a-lot")

	_, err := load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("STARTING_COINS", "")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "0")

	_, err := load()
	assert.Error(t, err)
}
