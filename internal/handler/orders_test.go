package handler

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gethuk-security/api-security-lab/internal/auth"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
)

func newOrdersRouter(t *testing.T) (chi.Router, *auth.TokenService) {
	t.Helper()
	st := newSeededStore(t)
	tokens := testTokens()
	h := NewOrdersHandler(st, testSurface(), discardLogger())

	r := chi.NewRouter()
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.PermissiveAuth(tokens))
		r.Get("/", h.HandleListOwn)
		r.Get("/{orderId}", h.HandleGet)
	})
	return r, tokens
}

func TestOrderGet_ForeignOrderEmitsFlag(t *testing.T) {
	r, tokens := newOrdersRouter(t)
	token := weakTokenFor(t, tokens, alicePrincipal())

	// Order 3 belongs to bob.
	rec, body := doJSON(t, r, http.MethodGet, "/orders/3", token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["user_id"])
	assert.Equal(t, challenge.FlagBOLAOrders, body["flag"])
}

func TestOrderGet_OwnOrderNoFlag(t *testing.T) {
	r, tokens := newOrdersRouter(t)
	token := weakTokenFor(t, tokens, alicePrincipal())

	rec, body := doJSON(t, r, http.MethodGet, "/orders/1", token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["user_id"])
	assert.NotContains(t, body, "flag")
}

func TestOrderGet_Unknown(t *testing.T) {
	r, tokens := newOrdersRouter(t)
	token := weakTokenFor(t, tokens, alicePrincipal())

	rec, body := doJSON(t, r, http.MethodGet, "/orders/99", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", body["error"])
}

func TestOrderList_OnlyOwnOrders(t *testing.T) {
	r, tokens := newOrdersRouter(t)
	token := weakTokenFor(t, tokens, alicePrincipal())

	rec, body := doJSON(t, r, http.MethodGet, "/orders/", token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	orders, _ := body["orders"].([]any)
	require.Len(t, orders, 2)
	for _, o := range orders {
		row, _ := o.(map[string]any)
		assert.EqualValues(t, 1, row["user_id"])
	}
}
