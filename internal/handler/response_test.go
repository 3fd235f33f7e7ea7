package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gethuk-security/api-security-lab/internal/apperror"
)

func decodeRecorder(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteAppError_PlainRecoveryBody(t *testing.T) {
	// Expected conditions bypass the error surface: the kind's status and
	// message only, no stack or query even in verbose mode.
	cases := []struct {
		err    *apperror.AppError
		status int
	}{
		{apperror.NotFound("Order not found"), http.StatusNotFound},
		{apperror.BadRequest("Coupon code required"), http.StatusBadRequest},
		{apperror.AuthMissing("Invalid credentials"), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeAppError(rec, tc.err)

		assert.Equal(t, tc.status, rec.Code)
		body := decodeRecorder(t, rec)
		assert.Equal(t, tc.err.Message, body["error"])
		assert.NotContains(t, body, "stack")
		assert.NotContains(t, body, "query")
	}
}

func TestErrorSurface_VerboseLeaksEverything(t *testing.T) {
	es := NewErrorSurface("verbose", "development", discardLogger())
	err := apperror.Storage(errors.New("no such column: foo"), "SELECT foo FROM users")

	rec := httptest.NewRecorder()
	es.WriteError(rec, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeRecorder(t, rec)
	assert.Contains(t, body["error"], "no such column")
	assert.Equal(t, "SELECT foo FROM users", body["query"])
	assert.NotEmpty(t, body["stack"])
}

func TestErrorSurface_VerboseKeepsAppErrorStatus(t *testing.T) {
	es := NewErrorSurface("verbose", "development", discardLogger())

	rec := httptest.NewRecorder()
	es.WriteError(rec, apperror.NotFound("Order not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorSurface_TerseProductionHidesInternals(t *testing.T) {
	es := NewErrorSurface("terse", "production", discardLogger())
	err := apperror.Storage(errors.New("no such column: foo"), "SELECT foo FROM users")

	rec := httptest.NewRecorder()
	es.WriteError(rec, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeRecorder(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, body, "query")
	assert.NotContains(t, body, "stack")
}

func TestErrorSurface_TerseDevelopmentKeepsStack(t *testing.T) {
	es := NewErrorSurface("terse", "development", discardLogger())

	rec := httptest.NewRecorder()
	es.WriteError(rec, errors.New("boom"))

	body := decodeRecorder(t, rec)
	assert.Equal(t, "boom", body["error"])
	assert.NotEmpty(t, body["stack"])
}

func TestNotFoundHandler_DescribesTheMiss(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()

	NotFoundHandler()(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeRecorder(t, rec)
	assert.Equal(t, "Endpoint not found", body["error"])
	assert.Equal(t, "/api/v1/nope", body["path"])
	assert.Equal(t, http.MethodPatch, body["method"])
}
