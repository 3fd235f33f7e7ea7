package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.NodeEnv)
	assert.Equal(t, "./data/lab.db", cfg.DatabasePath)
	assert.Equal(t, "your-super-secret-jwt-key-change-this-in-production", cfg.JWTSecret)
	assert.Equal(t, "weak-secret-for-demo", cfg.WeakJWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, "verbose", cfg.ErrorMode)
	assert.False(t, cfg.Production())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "override-secret")
	t.Setenv("JWT_EXPIRES_IN", "1h30m")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "60000")
	t.Setenv("ERROR_MODE", "terse")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "production", cfg.NodeEnv)
	assert.True(t, cfg.Production())
	assert.Equal(t, "override-secret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "terse", cfg.ErrorMode)
}

func TestLoad_BadExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "soon")

	_, err := Load()
	assert.Error(t, err)
}
