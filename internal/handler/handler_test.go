package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gethuk-security/api-security-lab/internal/auth"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// Shared fixtures for the handler tests. Each test builds a small chi router
// with just the routes under test, backed by an in-memory seeded store.

const (
	testStrongSecret = "test-strong-secret"
	testWeakSecret   = "weak-secret-for-demo"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSeededStore opens an in-memory database with the full sample data set.
// MinCost keeps the per-test bcrypt work negligible; the hashes still verify.
func newSeededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	require.NoError(t, st.EnsureSchema(ctx))
	require.NoError(t, st.Seed(ctx, auth.NewPasswordServiceWithCost(bcrypt.MinCost), discardLogger()))
	return st
}

func testTokens() *auth.TokenService {
	return auth.NewTokenService(testStrongSecret, testWeakSecret, time.Hour)
}

func testSurface() *ErrorSurface {
	return NewErrorSurface("verbose", "development", discardLogger())
}

// weakTokenFor issues the kind of token the login route hands out.
func weakTokenFor(t *testing.T, tokens *auth.TokenService, p auth.Principal) string {
	t.Helper()
	token, err := tokens.IssueWeak(p)
	require.NoError(t, err)
	return token
}

func alicePrincipal() auth.Principal {
	return auth.Principal{ID: 1, Username: "alice", Email: "alice@example.com"}
}

func adminPrincipal() auth.Principal {
	return auth.Principal{ID: 4, Username: "admin", Email: "admin@example.com", IsAdmin: true}
}

// doJSON runs one request through h and decodes the JSON response body.
func doJSON(t *testing.T, h http.Handler, method, target, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"response body was not JSON: %s", rec.Body.String())
	}
	return rec, decoded
}
