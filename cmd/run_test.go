package cmd

import (
	"context"
	"testing"

	"mascot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBackend_ExplicitCacheIgnoresURLs(t *testing.T) {
	cfg := &config.Config{
		Backend:     "cache",
		DatabaseURL: "postgres://localhost/mascot",
		RedisURL:    "redis://localhost:6379",
	}

	backend, err := selectBackend(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, backend)
}

func TestSelectBackend_ExplicitRedisWinsWhenBothURLsSet(t *testing.T) {
	cfg := &config.Config{
		Backend:     "redis",
		DatabaseURL: "postgres://localhost/mascot",
		RedisURL:    "redis://localhost:6379",
	}

	backend, err := selectBackend(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, backend)
	assert.Equal(t, "redis", backend.Name())
	require.NoError(t, backend.Close())
}

func TestSelectBackend_ExplicitSelectionRequiresMatchingURL(t *testing.T) {
	_, err := selectBackend(context.Background(), &config.Config{Backend: "postgres"})
	assert.Error(t, err)

	_, err = selectBackend(context.Background(), &config.Config{Backend: "redis"})
	assert.Error(t, err)
}

func TestSelectBackend_DefaultPrefersPostgres(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "postgres://localhost/mascot",
		RedisURL:    "redis://localhost:6379",
	}

	backend, err := selectBackend(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, backend)
	assert.Equal(t, "postgres", backend.Name())
	require.NoError(t, backend.Close())
}

func TestSelectBackend_NoConfigurationMeansCacheOnly(t *testing.T) {
	backend, err := selectBackend(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, backend)
}
