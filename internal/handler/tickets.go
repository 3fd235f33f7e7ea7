package handler

import (
	"log/slog"
	"net/http"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// TicketsHandler owns /api/v1/tickets. Purchase enforces neither the
// per-user cap nor any rate limit (API6), so scalping a block of tickets in
// one request works. The only hard floor is the database itself: the
// conditional decrement keeps availability from going negative.
type TicketsHandler struct {
	store  *store.Store
	errors *ErrorSurface
	logger *slog.Logger
}

func NewTicketsHandler(st *store.Store, es *ErrorSurface, logger *slog.Logger) *TicketsHandler {
	return &TicketsHandler{store: st, errors: es, logger: logger}
}

// HandleEvents lists events. GET /api/v1/tickets/events.
func (h *TicketsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.FetchAll(r.Context(), `SELECT * FROM events`)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": rows})
}

type purchaseRequest struct {
	EventID  int64 `json:"eventId"`
	Quantity int64 `json:"quantity"`
}

// HandlePurchase buys tickets. POST /api/v1/tickets/purchase — unmetered,
// and max_tickets_per_user is stored but never checked.
func (h *TicketsHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req purchaseRequest
	if err := decodeBody(r, &req); err != nil || req.EventID == 0 || req.Quantity <= 0 {
		writeAppError(w, apperror.BadRequest("Event ID and quantity required"))
		return
	}

	event, err := h.store.FetchOne(r.Context(), `SELECT * FROM events WHERE id = ?`, req.EventID)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if event == nil {
		writeAppError(w, apperror.NotFound("Event not found"))
		return
	}

	// Decrement and availability check in one statement so concurrent
	// purchases cannot oversell.
	res, err := h.store.Execute(r.Context(),
		`UPDATE events SET available_tickets = available_tickets - ? WHERE id = ? AND available_tickets >= ?`,
		req.Quantity, req.EventID, req.Quantity)
	if err != nil {
		h.errors.WriteError(w, err)
		return
	}
	if res.Changes == 0 {
		writeAppError(w, apperror.BadRequest("Not enough tickets available"))
		return
	}

	if _, err := h.store.Execute(r.Context(),
		`INSERT INTO tickets (event_id, user_id, quantity) VALUES (?, ?, ?)`,
		req.EventID, p.ID, req.Quantity); err != nil {
		h.errors.WriteError(w, err)
		return
	}

	h.logger.Info("tickets purchased",
		slog.Int64("event_id", req.EventID),
		slog.Int64("user_id", p.ID),
		slog.Int64("quantity", req.Quantity))

	body := map[string]any{
		"message":  "Tickets purchased successfully",
		"quantity": req.Quantity,
		"eventId":  req.EventID,
	}
	challenge.Attach(body, challenge.FlagTicketScalping, req.Quantity >= 10)
	writeJSON(w, http.StatusOK, body)
}
