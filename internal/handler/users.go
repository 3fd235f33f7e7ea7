package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// UsersHandler owns /api/v1/users.
//
// Weakness contracts: the profile route never compares the requested id to
// the caller (API1), profile updates splice arbitrary body keys into the SET
// clause (API3/API6), avatar upload fetches any URL server-side (API7), and
// every row is returned wholesale, password hash included.
type UsersHandler struct {
	store  *store.Store
	errors *ErrorSurface
	logger *slog.Logger
	client *http.Client
}

func NewUsersHandler(st *store.Store, es *ErrorSurface, logger *slog.Logger, client *http.Client) *UsersHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &UsersHandler{store: st, errors: es, logger: logger, client: client}
}

// HandleProfile returns any user's full row by id.
// GET /api/v1/users/{userId}/profile.
func (h *UsersHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeAppError(w, apperror.BadRequest("User ID required"))
		return
	}

	// The id comes straight from the path; the caller's own id is never
	// consulted.
	row, err := h.store.FetchOne(r.Context(), `SELECT * FROM users WHERE id = ?`, userID)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if row == nil {
		writeAppError(w, apperror.NotFound("User not found"))
		return
	}

	p := principal(r)
	challenge.Attach(row, challenge.FlagBOLAProfile, userID != strconv.FormatInt(p.ID, 10))
	writeJSON(w, http.StatusOK, row)
}

// HandleMe returns the caller's own row. GET /api/v1/users/me.
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	row, err := h.store.FetchOne(r.Context(), `SELECT * FROM users WHERE id = ?`, p.ID)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if row == nil {
		writeAppError(w, apperror.NotFound("User not found"))
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// HandleUpdateProfile writes every body key into the caller's row.
// PUT /api/v1/users/profile — there is no allow-list, so is_admin and
// account_balance are writable like anything else.
func (h *UsersHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil || len(fields) == 0 {
		writeAppError(w, apperror.BadRequest("No fields to update"))
		return
	}

	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for key, value := range fields {
		// SQLite has no bool type; store booleans as 0/1.
		if b, ok := value.(bool); ok {
			if b {
				value = 1
			} else {
				value = 0
			}
		}
		assignments = append(assignments, fmt.Sprintf("%s = ?", key))
		args = append(args, value)
	}
	args = append(args, p.ID)

	query := "UPDATE users SET " + strings.Join(assignments, ", ") + ", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := h.store.Execute(r.Context(), query, args...); err != nil {
		// Unknown columns surface as SQL errors; the verbose formatter hands
		// back the full statement.
		h.errors.WriteError(w, err)
		return
	}

	row, err := h.store.FetchOne(r.Context(), `SELECT * FROM users WHERE id = ?`, p.ID)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}

	escalated := false
	if _, ok := fields["is_admin"]; ok && rowInt64(row["is_admin"]) != 0 {
		escalated = true
	}
	if _, ok := fields["account_balance"]; ok {
		if bal, isNum := row["account_balance"].(float64); isNum && bal > 1000 {
			escalated = true
		}
	}

	body := map[string]any{"message": "Profile updated successfully", "user": row}
	challenge.Attach(body, challenge.FlagMassAssignment, escalated)
	writeJSON(w, http.StatusOK, body)
}

// HandleDelete removes any account by id. DELETE /api/v1/users/{userId} —
// same missing ownership check as the profile route.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	row, err := h.store.FetchOne(r.Context(), `SELECT id FROM users WHERE id = ?`, userID)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if row == nil {
		writeAppError(w, apperror.NotFound("User not found"))
		return
	}
	if _, err := h.store.Execute(r.Context(), `DELETE FROM users WHERE id = ?`, userID); err != nil {
		h.errors.WriteError(w, err)
		return
	}
	h.logger.Info("user deleted", slog.String("id", userID))
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}

type avatarRequest struct {
	AvatarURL string `json:"avatarUrl"`
}

// HandleAvatar fetches the given URL server-side and echoes the content back.
// POST /api/v1/users/avatar — no scheme or host restriction, so internal
// addresses are reachable from the server's network position.
func (h *UsersHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req avatarRequest
	if err := decodeBody(r, &req); err != nil || req.AvatarURL == "" {
		writeAppError(w, apperror.BadRequest("Avatar URL required"))
		return
	}

	fetchReq, err := http.NewRequestWithContext(r.Context(), http.MethodGet, req.AvatarURL, nil)
	if err != nil {
		e := apperror.Upstream("Failed to fetch avatar", err)
		writeJSON(w, e.Status, map[string]any{
			"error":   e.Message,
			"details": e.Details,
			"url":     req.AvatarURL,
		})
		return
	}
	resp, err := h.client.Do(fetchReq)
	if err != nil {
		e := apperror.Upstream("Failed to fetch avatar", err)
		writeJSON(w, e.Status, map[string]any{
			"error":   e.Message,
			"details": e.Details,
			"url":     req.AvatarURL,
		})
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		e := apperror.Upstream("Failed to fetch avatar", err)
		writeJSON(w, e.Status, map[string]any{
			"error":   e.Message,
			"details": e.Details,
			"url":     req.AvatarURL,
		})
		return
	}

	if _, err := h.store.Execute(r.Context(),
		`UPDATE users SET internal_notes = ? WHERE id = ?`,
		"Avatar URL: "+req.AvatarURL, p.ID); err != nil {
		h.errors.WriteError(w, err)
		return
	}

	content := string(raw)
	if len(content) > 500 {
		content = content[:500]
	}

	body := map[string]any{
		"message":        "Avatar updated successfully",
		"url":            req.AvatarURL,
		"fetchedContent": content,
		"contentType":    resp.Header.Get("Content-Type"),
	}
	challenge.Attach(body, challenge.FlagSSRF, isInternalTarget(req.AvatarURL))
	writeJSON(w, http.StatusOK, body)
}

// isInternalTarget reports whether the URL points at the local machine or the
// cloud metadata range.
func isInternalTarget(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || strings.HasPrefix(host, "169.254.")
}

// HandleExportAll dumps every user row, hashes included, to any
// authenticated caller. POST /api/v1/users/export-all.
func (h *UsersHandler) HandleExportAll(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.FetchAll(r.Context(), `SELECT * FROM users`)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User data exported",
		"count":   len(rows),
		"users":   rows,
	})
}

// HandleList returns a paginated roster with only safe columns; this is what
// the other list endpoints should have looked like. GET /api/v1/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	rows, err := h.store.FetchAll(r.Context(),
		`SELECT id, username, email, first_name, last_name, is_premium FROM users LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users":  rows,
		"limit":  limit,
		"offset": offset,
	})
}
