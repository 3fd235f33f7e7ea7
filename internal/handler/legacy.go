package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rs/xid"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
)

// LegacyHandler holds the routes that should have been retired.
//
// The v0 admin listing is a forgotten API version with no authentication at
// all (API9); the integrations sync trusts whatever a "partner" URL claims
// to be and reports having executed its payload (API10).
type LegacyHandler struct {
	logger *slog.Logger
}

func NewLegacyHandler(logger *slog.Logger) *LegacyHandler {
	return &LegacyHandler{logger: logger}
}

// HandleV0AdminUsers is the deprecated admin listing. GET /api/v0/admin/users
// — no token required, credentials in the payload.
func (h *LegacyHandler) HandleV0AdminUsers(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"message": "Deprecated API v0 - Use v1 instead",
		"warning": "This endpoint is deprecated and will be removed",
		"users": []map[string]any{
			{"id": 1, "username": "admin", "role": "admin", "email": "admin@example.com"},
			{"id": 2, "username": "bob", "role": "user", "email": "bob@example.com"},
			{"id": 3, "username": "alice", "role": "user", "email": "alice@example.com"},
		},
	}
	challenge.Attach(body, challenge.FlagOldVersion, true)
	writeJSON(w, http.StatusOK, body)
}

type syncRequest struct {
	PartnerURL string `json:"partnerUrl"`
}

// HandleIntegrationsSync accepts a partner feed URL and "processes" it
// without validating the source. POST /api/v1/integrations/sync.
func (h *LegacyHandler) HandleIntegrationsSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeBody(r, &req); err != nil || req.PartnerURL == "" {
		writeAppError(w, apperror.BadRequest("Partner URL required"))
		return
	}

	syncID := xid.New().String()
	h.logger.Info("partner sync", slog.String("sync_id", syncID), slog.String("source", req.PartnerURL))

	if hostileSource(req.PartnerURL) {
		body := map[string]any{
			"status":  "synced",
			"syncId":  syncID,
			"source":  req.PartnerURL,
			"details": "Executed malicious payload from trusted source",
		}
		challenge.Attach(body, challenge.FlagUnsafeConsume, true)
		writeJSON(w, http.StatusOK, body)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "synced",
		"syncId":  syncID,
		"message": "Data synchronized with partner",
		"source":  req.PartnerURL,
	})
}

func hostileSource(url string) bool {
	for _, marker := range []string{"evil.com", "attacker", "malicious"} {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}
