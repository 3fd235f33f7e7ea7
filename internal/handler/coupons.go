package handler

import (
	"log/slog"
	"net/http"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// CouponsHandler owns /api/v1/coupons. Lookup and usage increment are two
// separate statements with no transaction, which is the race the lab wants
// students to find on their own.
type CouponsHandler struct {
	store  *store.Store
	errors *ErrorSurface
	logger *slog.Logger
}

func NewCouponsHandler(st *store.Store, es *ErrorSurface, logger *slog.Logger) *CouponsHandler {
	return &CouponsHandler{store: st, errors: es, logger: logger}
}

// HandleList returns coupons that still have uses left. GET /api/v1/coupons.
func (h *CouponsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.FetchAll(r.Context(),
		`SELECT id, code, discount_percent, max_uses, times_used FROM coupons WHERE times_used < max_uses`)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"coupons": rows})
}

type applyCouponRequest struct {
	Code    string `json:"code"`
	OrderID *int64 `json:"orderId"`
}

// HandleApply redeems a coupon. POST /api/v1/coupons/apply.
func (h *CouponsHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req applyCouponRequest
	if err := decodeBody(r, &req); err != nil || req.Code == "" {
		writeAppError(w, apperror.BadRequest("Coupon code required"))
		return
	}

	coupon, err := h.store.FetchOne(r.Context(), `SELECT * FROM coupons WHERE code = ?`, req.Code)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if coupon == nil {
		writeAppError(w, apperror.NotFound("Invalid coupon code"))
		return
	}
	if rowInt64(coupon["times_used"]) >= rowInt64(coupon["max_uses"]) {
		writeAppError(w, apperror.BadRequest("Coupon usage limit reached"))
		return
	}

	var orderID any
	if req.OrderID != nil {
		orderID = *req.OrderID
	}
	if _, err := h.store.Execute(r.Context(),
		`INSERT INTO coupon_usage (coupon_id, user_id, order_id) VALUES (?, ?, ?)`,
		coupon["id"], p.ID, orderID); err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if _, err := h.store.Execute(r.Context(),
		`UPDATE coupons SET times_used = times_used + 1 WHERE id = ?`, coupon["id"]); err != nil {
		h.errors.WriteError(w, err)
		return
	}

	h.logger.Info("coupon applied", slog.String("code", req.Code), slog.Int64("user_id", p.ID))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Coupon applied successfully",
		"discount": coupon["discount_percent"],
		"code":     req.Code,
	})
}
