// Package ratelimit provides the lab's named rate limiters.
//
// Each limiter is a fixed window with a per-key quota, counted in memory and
// per process — restarts wipe all state, which is fine for a training lab.
// The key is the authenticated principal's id when one exists, otherwise the
// remote address.
//
// The fabric includes a pass-through "none" slot. Login, password reset, and
// ticket purchase are wired to it: the absence of throttling on exactly those
// flows is the API2/API6 curriculum. The strict limiters still exist so
// students can compare what the routes should have mounted.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gethuk-security/api-security-lab/internal/auth"
)

// Limiter is one named fixed-window limiter.
type Limiter struct {
	name        string
	window      time.Duration
	quota       int
	passthrough bool

	mu      sync.Mutex
	buckets map[string]*bucket

	// now is swappable in tests.
	now func() time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// Fabric holds every named limiter.
type Fabric struct {
	limiters map[string]*Limiter
}

// Config carries the tunables for the api slot; the remaining slots have
// fixed windows and quotas.
type Config struct {
	APIWindow time.Duration
	APIMax    int
}

// New builds the lab's limiter set:
//
//	api       APIWindow / APIMax   (attached globally only in production)
//	login     5 per 15 min, successful attempts forgiven
//	reset     3 per hour
//	purchase  3 per hour
//	upload    10 per 15 min
//	none      pass-through
func New(cfg Config) *Fabric {
	return &Fabric{limiters: map[string]*Limiter{
		"api":      newLimiter("api", cfg.APIWindow, cfg.APIMax),
		"login":    newLimiter("login", 15*time.Minute, 5),
		"reset":    newLimiter("reset", time.Hour, 3),
		"purchase": newLimiter("purchase", time.Hour, 3),
		"upload":   newLimiter("upload", 15*time.Minute, 10),
		"none":     {name: "none", passthrough: true},
	}}
}

func newLimiter(name string, window time.Duration, quota int) *Limiter {
	return &Limiter{
		name:    name,
		window:  window,
		quota:   quota,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Get returns the named limiter. Unknown names return the pass-through slot,
// so a typo in route wiring fails open — noted and accepted for a lab.
func (f *Fabric) Get(name string) *Limiter {
	if l, ok := f.limiters[name]; ok {
		return l
	}
	return f.limiters["none"]
}

// Allow consumes one unit of key's quota for the current window.
func (l *Limiter) Allow(key string) bool {
	if l.passthrough {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if b.count >= l.quota {
		return false
	}
	b.count++
	return true
}

// Forgive refunds one unit for key in the current window. The login limiter
// uses this so successful logins don't count against the quota.
func (l *Limiter) Forgive(key string) {
	if l.passthrough {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok && b.count > 0 && l.now().Before(b.resetAt) {
		b.count--
	}
}

// Middleware wraps a handler with this limiter. Over-quota requests get
// 429 with a JSON body.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(Key(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests, please try again later"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Key derives the limiter key for a request: principal id, else remote
// address, else "unknown".
func Key(r *http.Request) string {
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		return strconv.FormatInt(p.ID, 10)
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
