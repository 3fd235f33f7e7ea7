package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// OrdersHandler owns /api/v1/orders. The by-id route repeats the BOLA
// pattern from user profiles on a second object type.
type OrdersHandler struct {
	store  *store.Store
	errors *ErrorSurface
	logger *slog.Logger
}

func NewOrdersHandler(st *store.Store, es *ErrorSurface, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{store: st, errors: es, logger: logger}
}

// HandleGet returns any order by id, owner or not.
// GET /api/v1/orders/{orderId}.
func (h *OrdersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	row, err := h.store.FetchOne(r.Context(), `SELECT * FROM orders WHERE id = ?`, orderID)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if row == nil {
		writeAppError(w, apperror.NotFound("Order not found"))
		return
	}

	p := principal(r)
	challenge.Attach(row, challenge.FlagBOLAOrders, rowInt64(row["user_id"]) != p.ID)
	writeJSON(w, http.StatusOK, row)
}

// HandleListOwn returns the caller's own orders. GET /api/v1/orders.
func (h *OrdersHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	rows, err := h.store.FetchAll(r.Context(),
		`SELECT * FROM orders WHERE user_id = ?`, p.ID)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": rows})
}
