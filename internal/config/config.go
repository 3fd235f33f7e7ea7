// Package config loads the lab's runtime configuration from environment variables.
//
// The lab keeps the env key names students already know from the published
// walkthroughs and docker-compose files (PORT, NODE_ENV, DATABASE_PATH, ...),
// so existing setups keep working. Viper gives us defaults plus env binding in one place; no
// config file is read.
//
// Several of these values are themselves part of the curriculum: both JWT secrets
// ship with fixed placeholder defaults, and /api/debug/config happily returns the
// whole struct, secrets included.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every recognized setting.
type Config struct {
	Port         int
	NodeEnv      string
	DatabasePath string

	// JWTSecret is the strong secret. The vulnerable login/refresh routes never
	// use it — they sign with WeakJWTSecret instead.
	JWTSecret     string
	WeakJWTSecret string
	JWTExpiresIn  time.Duration

	// CORSOrigin is informational only; the server answers with
	// Access-Control-Allow-Origin: * regardless.
	CORSOrigin string

	RateLimitWindow time.Duration
	RateLimitMax    int

	// ErrorMode selects the error formatter: "verbose" (the lab default,
	// regardless of NODE_ENV) or "terse". The verbose formatter is itself
	// the API8 exhibit, so it stays on unless explicitly switched off.
	ErrorMode string

	// EnableVulnerableEndpoints is parsed but never consulted. Reserved.
	EnableVulnerableEndpoints bool
}

// Load reads the environment and returns the resolved configuration.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 3000)
	v.SetDefault("NODE_ENV", "development")
	v.SetDefault("DATABASE_PATH", "./data/lab.db")
	v.SetDefault("JWT_SECRET", "your-super-secret-jwt-key-change-this-in-production")
	v.SetDefault("WEAK_JWT_SECRET", "weak-secret-for-demo")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3001")
	v.SetDefault("RATE_LIMIT_WINDOW_MS", 900000)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("ERROR_MODE", "verbose")
	v.SetDefault("ENABLE_VULNERABLE_ENDPOINTS", true)

	// AutomaticEnv makes every v.Get fall through to os.Getenv with the same key.
	v.AutomaticEnv()

	expiresIn, err := time.ParseDuration(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid JWT_EXPIRES_IN %q: %w", v.GetString("JWT_EXPIRES_IN"), err)
	}

	cfg := &Config{
		Port:                      v.GetInt("PORT"),
		NodeEnv:                   v.GetString("NODE_ENV"),
		DatabasePath:              v.GetString("DATABASE_PATH"),
		JWTSecret:                 v.GetString("JWT_SECRET"),
		WeakJWTSecret:             v.GetString("WEAK_JWT_SECRET"),
		JWTExpiresIn:              expiresIn,
		CORSOrigin:                v.GetString("CORS_ORIGIN"),
		RateLimitWindow:           time.Duration(v.GetInt64("RATE_LIMIT_WINDOW_MS")) * time.Millisecond,
		RateLimitMax:              v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		ErrorMode:                 v.GetString("ERROR_MODE"),
		EnableVulnerableEndpoints: v.GetBool("ENABLE_VULNERABLE_ENDPOINTS"),
	}

	return cfg, nil
}

// Production reports whether the deployment tag is "production".
// The global API rate limiter is attached only in production — the lab default
// (development) leaves every route unthrottled.
func (c *Config) Production() bool {
	return c.NodeEnv == "production"
}
