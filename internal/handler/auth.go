package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
	"github.com/gethuk-security/api-security-lab/internal/auth"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// AuthHandler covers registration, login, password reset and token refresh.
//
// Weakness contracts: login and reset sit behind the "none" rate-limit slot
// (API4), login signs with the weak secret (API2), refresh re-issues tokens
// from unverified claims (API2), and reset leaks account existence plus the
// 4-digit token in the response body.
type AuthHandler struct {
	store     *store.Store
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	errors    *ErrorSurface
	logger    *slog.Logger
}

func NewAuthHandler(st *store.Store, pw *auth.PasswordService, tk *auth.TokenService, es *ErrorSurface, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{store: st, passwords: pw, tokens: tk, errors: es, logger: logger}
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// HandleRegister creates an account. POST /api/v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeAppError(w, apperror.BadRequest("Invalid JSON body"))
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeAppError(w, apperror.BadRequest("Missing required fields"))
		return
	}

	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}

	res, err := h.store.Execute(r.Context(),
		`INSERT INTO users (username, email, password_hash, first_name, last_name) VALUES (?, ?, ?, ?, ?)`,
		req.Username, req.Email, hash, req.FirstName, req.LastName)
	if err != nil {
		// Duplicate usernames land here; the verbose surface spells out the
		// constraint that fired.
		h.errors.WriteError(w, err)
		return
	}

	h.logger.Info("user registered", slog.String("username", req.Username), slog.Int64("id", res.LastID))
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"userId":  res.LastID,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin authenticates and issues a weak-secret token.
// POST /api/v1/auth/login — deliberately unmetered.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeAppError(w, apperror.BadRequest("Username and password required"))
		return
	}

	row, err := h.store.FetchOne(r.Context(), `SELECT id, username, email, password_hash, is_admin FROM users WHERE username = ?`, req.Username)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if row == nil {
		writeAppError(w, apperror.AuthMissing("Invalid credentials"))
		return
	}

	stored, _ := row["password_hash"].(string)
	if err := h.passwords.Verify(stored, req.Password); err != nil {
		writeAppError(w, apperror.AuthMissing("Invalid credentials"))
		return
	}

	p := principalFromRow(row)
	token, err := h.tokens.IssueWeak(p)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}

	body := map[string]any{
		"message": "Login successful",
		"token":   token,
		"user": map[string]any{
			"id":       p.ID,
			"username": p.Username,
			"email":    p.Email,
			"is_admin": row["is_admin"],
		},
	}
	// The weakpass account exists to be brute-forced; its login is the proof.
	challenge.Attach(body, challenge.FlagBruteForce, p.Username == "weakpass")
	writeJSON(w, http.StatusOK, body)
}

type resetRequest struct {
	Email string `json:"email"`
}

// HandleResetPassword mints a 4-digit reset token and returns it in the
// response. POST /api/v1/auth/reset-password — also unmetered, and the 404
// for unknown emails is a user-enumeration oracle.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		writeAppError(w, apperror.BadRequest("Email required"))
		return
	}

	row, err := h.store.FetchOne(r.Context(), `SELECT id FROM users WHERE email = ?`, req.Email)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if row == nil {
		writeAppError(w, apperror.NotFound("User not found"))
		return
	}

	token := auth.NewResetToken()
	expires := time.Now().Add(auth.ResetTokenTTL)
	if _, err := h.store.Execute(r.Context(),
		`INSERT INTO password_reset_tokens (user_id, token, expires_at) VALUES (?, ?, ?)`,
		row["id"], token, expires.Format("2006-01-02 15:04:05")); err != nil {
		h.errors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Password reset token generated",
		"token":     token,
		"expiresAt": expires.Format(time.RFC3339),
	})
}

type verifyResetRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// HandleVerifyReset consumes a reset token and rewrites the password.
// POST /api/v1/auth/verify-reset.
func (h *AuthHandler) HandleVerifyReset(w http.ResponseWriter, r *http.Request) {
	var req verifyResetRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" || req.Token == "" || req.NewPassword == "" {
		writeAppError(w, apperror.BadRequest("Email, token, and new password required"))
		return
	}

	userRow, err := h.store.FetchOne(r.Context(), `SELECT id FROM users WHERE email = ?`, req.Email)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if userRow == nil {
		writeAppError(w, apperror.NotFound("User not found"))
		return
	}

	tokenRow, err := h.store.FetchOne(r.Context(),
		`SELECT id, expires_at, used FROM password_reset_tokens WHERE user_id = ? AND token = ? AND used = 0`,
		userRow["id"], req.Token)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if tokenRow == nil {
		writeAppError(w, apperror.AuthMissing("Invalid or expired token"))
		return
	}

	expiresAt, _ := tokenRow["expires_at"].(string)
	if exp, perr := time.ParseInLocation("2006-01-02 15:04:05", expiresAt, time.Local); perr != nil || time.Now().After(exp) {
		writeAppError(w, apperror.AuthMissing("Token expired"))
		return
	}

	hash, err := h.passwords.Hash(req.NewPassword)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if _, err := h.store.Execute(r.Context(),
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		hash, userRow["id"]); err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if _, err := h.store.Execute(r.Context(),
		`UPDATE password_reset_tokens SET used = 1 WHERE id = ?`, tokenRow["id"]); err != nil {
		h.errors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Password reset successful"})
}

type refreshRequest struct {
	Token string `json:"token"`
}

// HandleRefresh re-issues a token from an existing one without verifying its
// signature. POST /api/v1/auth/refresh — forge any claims, get them signed.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil || req.Token == "" {
		writeAppError(w, apperror.BadRequest("Token required"))
		return
	}

	p, err := h.tokens.DecodeUnverified(req.Token)
	if err != nil {
		writeAppError(w, apperror.AuthMissing("Invalid token"))
		return
	}

	token, err := h.tokens.IssueWeak(*p)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}
