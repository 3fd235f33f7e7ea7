package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
)

// contextKey is unexported so only this package can read or write the
// principal in a request context.
type contextKey string

const principalKey contextKey = "principal"

// RequireAuth is the strict authenticator: Bearer token, signature verified
// against the strong secret, HS256 pinned. 401 when the token is missing,
// 403 when it is present but invalid.
//
// Almost nothing in the lab mounts this — the routes use PermissiveAuth —
// but it exists so students can diff the two behaviours.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, apperror.AuthMissing("Access token required"))
				return
			}

			p, err := tokens.Verify(raw)
			if err != nil {
				writeAuthError(w, apperror.AuthInvalid("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// PermissiveAuth is the lab default on almost every route. It extracts the
// Bearer token and populates the principal from the DECODED claims — no
// signature check, no algorithm check, no expiry check. A student who forges
// {"alg":"none"} with {"is_admin":true} is an admin as far as downstream
// handlers can tell.
//
// It fails only when the token is absent (401) or syntactically unparseable
// (403).
func PermissiveAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, apperror.AuthMissing("Access token required"))
				return
			}

			p, err := tokens.DecodeUnverified(raw)
			if err != nil {
				writeAuthError(w, apperror.AuthInvalid("Invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth sets the principal when a valid (strongly verified) token is
// present and never fails the request. Anonymous callers just proceed with no
// principal.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := bearerToken(r); ok {
				if p, err := tokens.Verify(raw); err == nil {
					r = r.WithContext(withPrincipal(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is the strict admin gate: 401 without a principal, 403 unless
// the principal is an admin. No route in the lab wires it — see AdminGate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeAuthError(w, apperror.AuthMissing("Authentication required"))
			return
		}
		if !p.IsAdmin {
			writeAuthError(w, apperror.Forbidden("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminGate is the no-op admin gate the admin routes actually use: it checks
// that a principal exists and nothing else. Any authenticated user — or anyone
// holding a forged permissive token — walks straight through.
func AdminGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeAuthError(w, apperror.AuthMissing("Authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext retrieves the request principal. Returns (nil, false)
// for anonymous requests.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// bearerToken pulls the token out of "Authorization: Bearer <t>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func writeAuthError(w http.ResponseWriter, e *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(map[string]string{"error": e.Message})
}
