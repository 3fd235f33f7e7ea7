package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// AdminHandler owns /api/v1/admin. The routes sit behind the permissive
// authenticator and the no-op admin gate (API5): any token that decodes,
// signed or not, gets through, and is_admin is read from the forged claims.
type AdminHandler struct {
	store  *store.Store
	errors *ErrorSurface
	logger *slog.Logger
}

func NewAdminHandler(st *store.Store, es *ErrorSurface, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: st, errors: es, logger: logger}
}

// HandleListUsers dumps every user row. GET /api/v1/admin/users.
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.FetchAll(r.Context(), `SELECT * FROM users`)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}

	body := map[string]any{
		"message": "Admin: All users",
		"count":   len(rows),
		"users":   rows,
	}
	p := principal(r)
	if !p.IsAdmin {
		body["vulnerability"] = "API5:2023 - Broken Function Level Authorization"
		challenge.Attach(body, challenge.FlagAdminAccess, true)
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleDeleteUser removes any account. DELETE /api/v1/admin/users/{id} —
// same non-gate as the listing.
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.store.Execute(r.Context(), `DELETE FROM users WHERE id = ?`, id); err != nil {
		h.errors.WriteError(w, err)
		return
	}
	h.logger.Warn("admin route deleted user", slog.String("id", id))
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}

// HandleStats reports table counts. GET /api/v1/admin/stats.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{}
	for name, query := range map[string]string{
		"totalUsers":    `SELECT COUNT(*) AS count FROM users`,
		"totalOrders":   `SELECT COUNT(*) AS count FROM orders`,
		"totalProducts": `SELECT COUNT(*) AS count FROM products`,
	} {
		row, err := h.store.FetchOne(r.Context(), query)
		if err != nil {
			h.errors.WriteError(w, err)
			return
		}
		stats[name] = row
	}
	writeJSON(w, http.StatusOK, stats)
}
