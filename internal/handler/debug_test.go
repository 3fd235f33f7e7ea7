package handler

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/config"
)

func newDebugRouter() chi.Router {
	cfg := &config.Config{
		Port:          3000,
		NodeEnv:       "development",
		DatabasePath:  "./data/lab.db",
		JWTSecret:     "the-strong-secret",
		WeakJWTSecret: "the-weak-secret",
		JWTExpiresIn:  24 * time.Hour,
		CORSOrigin:    "http://localhost:3001",
	}
	h := NewDebugHandler(cfg)

	r := chi.NewRouter()
	r.Get("/debug/config", h.HandleConfig)
	r.Get("/debug/health", h.HandleHealth)
	return r
}

func TestDebugConfig_LeaksSecretsAndAlwaysFlags(t *testing.T) {
	r := newDebugRouter()

	rec, body := doJSON(t, r, http.MethodGet, "/debug/config", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "the-strong-secret", body["jwtSecret"])
	assert.Equal(t, "the-weak-secret", body["weakJwtSecret"])
	assert.Equal(t, "./data/lab.db", body["databasePath"])
	// No predicate here: reaching the route is the exploit.
	assert.Equal(t, challenge.FlagDebugEndpoint, body["flag"])
}

func TestDebugHealth_DumpsEnvironment(t *testing.T) {
	t.Setenv("LAB_CANARY", "canary-value")
	r := newDebugRouter()

	rec, body := doJSON(t, r, http.MethodGet, "/debug/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, os.Getpid(), body["pid"])

	env, ok := body["env"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "canary-value", env["LAB_CANARY"])

	mem, ok := body["memory"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, mem, "alloc")
}
