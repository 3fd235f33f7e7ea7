package handler

import (
	"net/http"
	"time"

	"github.com/gethuk-security/api-security-lab/internal/challenge"
)

// MetaHandler serves the lab banner, liveness check and challenge catalog.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// HandleRoot is the landing banner. GET /.
func (h *MetaHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "API Security Lab",
		"version": "1.0.0",
		"message": "A deliberately vulnerable API for learning the OWASP API Security Top 10. Flags look like GTX{...}.",
		"docs":    "/api/docs",
	})
}

// HandleHealth is the plain liveness probe. GET /health.
func (h *MetaHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleDocs lists the challenges with hints. GET /api/docs. Solutions stay
// in the database; only the seeded hint text ships here.
func (h *MetaHandler) HandleDocs(w http.ResponseWriter, r *http.Request) {
	all := challenge.All()
	docs := make([]map[string]any, 0, len(all))
	for _, c := range all {
		docs = append(docs, map[string]any{
			"id":          c.ID,
			"title":       c.Title,
			"category":    c.Category,
			"description": c.Description,
			"endpoint":    c.Endpoint,
			"difficulty":  c.Difficulty,
			"points":      c.Points,
			"hint":        c.Hint1,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"challenges": docs,
		"count":      len(docs),
	})
}
