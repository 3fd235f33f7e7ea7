package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// ProductsHandler owns /api/v1/products. The list route accepts any limit
// without a ceiling (API4); asking for more than 1000 rows proves the point.
type ProductsHandler struct {
	store  *store.Store
	errors *ErrorSurface
	logger *slog.Logger
}

func NewProductsHandler(st *store.Store, es *ErrorSurface, logger *slog.Logger) *ProductsHandler {
	return &ProductsHandler{store: st, errors: es, logger: logger}
}

// HandleList returns products with caller-controlled pagination.
// GET /api/v1/products?limit=&offset= — the limit is passed to the database
// as-is.
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	rows, err := h.store.FetchAll(r.Context(),
		`SELECT * FROM products LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}

	body := map[string]any{
		"products": rows,
		"limit":    limit,
		"offset":   offset,
		"count":    len(rows),
	}
	challenge.Attach(body, challenge.FlagPaginationDoS, limit > 1000)
	writeJSON(w, http.StatusOK, body)
}

// HandleGet returns one product. GET /api/v1/products/{id}.
func (h *ProductsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	row, err := h.store.FetchOne(r.Context(), `SELECT * FROM products WHERE id = ?`, id)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if row == nil {
		writeAppError(w, apperror.NotFound("Product not found"))
		return
	}
	writeJSON(w, http.StatusOK, row)
}
