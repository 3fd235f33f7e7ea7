// Package handler implements the lab's HTTP resource handlers.
//
// Every handler encodes a specific weakness contract: a validation or
// authorization step that is intentionally omitted, an input shape that
// triggers exploitation, and a flag that is minted only when the exploitation
// predicate holds. The response helpers and the error surface live here too.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
)

// writeJSON sends data as JSON with the given status. Headers must be set
// before WriteHeader, and WriteHeader before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; log and move on.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeAppError is the handler-level recovery path for expected conditions
// (missing fields, absent rows, bad credentials): the kind's status and
// message, nothing else. Unexpected errors go through ErrorSurface instead.
func writeAppError(w http.ResponseWriter, e *apperror.AppError) {
	writeJSON(w, e.Status, map[string]any{"error": e.Message})
}

// ErrorSurface formats errors for the wire. One formatter is selected at
// startup; the lab default is verbose.
//
// The verbose formatter is itself a teaching exhibit (API8): it returns the
// stack trace, the database error text, and the offending SQL to any caller.
// The terse formatter shows what the responses should have looked like.
type ErrorSurface struct {
	verbose bool
	env     string // "development" or "production"; the terse formatter branches on it
	logger  *slog.Logger
}

// NewErrorSurface selects the formatter. mode "verbose" (lab default) or
// "terse".
func NewErrorSurface(mode, env string, logger *slog.Logger) *ErrorSurface {
	return &ErrorSurface{verbose: mode != "terse", env: env, logger: logger}
}

// verboseBody is the wire shape: stack always, details and query only when
// present.
type verboseBody struct {
	Error   string `json:"error"`
	Stack   string `json:"stack"`
	Details string `json:"details,omitempty"`
	Query   string `json:"query,omitempty"`
}

// WriteError maps err to a status and body according to the selected
// formatter.
func (es *ErrorSurface) WriteError(w http.ResponseWriter, err error) {
	es.logger.Error("request failed", slog.String("error", err.Error()))

	status := http.StatusInternalServerError
	var app *apperror.AppError
	if errors.As(err, &app) && app.Status != 0 {
		status = app.Status
	}

	if es.verbose {
		body := verboseBody{Error: err.Error()}
		if app != nil {
			body.Stack = app.Stack
			body.Details = app.Details
			body.Query = app.Query
		} else {
			body.Stack = string(debug.Stack())
		}
		writeJSON(w, status, body)
		return
	}

	// Terse: generic in production, message+stack in development.
	if es.env == "production" {
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Internal server error"
		}
		writeJSON(w, status, map[string]any{"error": msg})
		return
	}
	stack := string(debug.Stack())
	if app != nil {
		stack = app.Stack
	}
	writeJSON(w, status, map[string]any{"error": err.Error(), "stack": stack})
}

// NotFoundHandler answers unmatched routes with the documented 404 body.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":  "Endpoint not found",
			"path":   r.URL.Path,
			"method": r.Method,
		})
	}
}
