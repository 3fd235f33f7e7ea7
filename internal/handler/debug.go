package handler

import (
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/config"
)

// DebugHandler owns /api/debug. Both routes are unauthenticated and left
// enabled (API9): config returns every secret the process holds, health
// dumps the full environment.
type DebugHandler struct {
	cfg     *config.Config
	startAt time.Time
}

func NewDebugHandler(cfg *config.Config) *DebugHandler {
	return &DebugHandler{cfg: cfg, startAt: time.Now()}
}

// HandleConfig returns the live configuration, secrets included.
// GET /api/debug/config.
func (h *DebugHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"nodeEnv":                   h.cfg.NodeEnv,
		"port":                      h.cfg.Port,
		"databasePath":              h.cfg.DatabasePath,
		"jwtSecret":                 h.cfg.JWTSecret,
		"weakJwtSecret":             h.cfg.WeakJWTSecret,
		"jwtExpiresIn":              h.cfg.JWTExpiresIn.String(),
		"corsOrigin":                h.cfg.CORSOrigin,
		"rateLimitWindowMs":         h.cfg.RateLimitWindow.Milliseconds(),
		"rateLimitMaxRequests":      h.cfg.RateLimitMax,
		"errorMode":                 h.cfg.ErrorMode,
		"enableVulnerableEndpoints": h.cfg.EnableVulnerableEndpoints,
	}
	challenge.Attach(body, challenge.FlagDebugEndpoint, true)
	writeJSON(w, http.StatusOK, body)
}

// HandleHealth reports process internals along with the environment.
// GET /api/debug/health.
func (h *DebugHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"uptime": time.Since(h.startAt).Seconds(),
		"memory": map[string]any{
			"alloc":      mem.Alloc,
			"totalAlloc": mem.TotalAlloc,
			"sys":        mem.Sys,
			"numGC":      mem.NumGC,
		},
		"env":       env,
		"platform":  runtime.GOOS,
		"goVersion": runtime.Version(),
		"pid":       os.Getpid(),
	})
}
