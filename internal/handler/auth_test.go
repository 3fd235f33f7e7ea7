package handler

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gethuk-security/api-security-lab/internal/auth"
	"github.com/gethuk-security/api-security-lab/internal/challenge"
	"golang.org/x/crypto/bcrypt"
)

func newAuthRouter(t *testing.T) (chi.Router, *auth.TokenService) {
	t.Helper()
	st := newSeededStore(t)
	tokens := testTokens()
	h := NewAuthHandler(st, auth.NewPasswordServiceWithCost(bcrypt.MinCost), tokens, testSurface(), discardLogger())

	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/reset-password", h.HandleResetPassword)
	r.Post("/verify-reset", h.HandleVerifyReset)
	r.Post("/refresh", h.HandleRefresh)
	return r, tokens
}

func TestLogin_Success(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "alice", "password": "alice123"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, body, "flag")

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
}

func TestLogin_WeakAccountEmitsFlag(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "weakpass", "password": "123456"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, challenge.FlagBruteForce, body["flag"])
}

func TestLogin_TokenUsesWeakSecret(t *testing.T) {
	r, tokens := newAuthRouter(t)

	_, body := doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "alice", "password": "alice123"})
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	// The strict verifier checks the strong secret, so login tokens fail it.
	_, err := tokens.Verify(token)
	assert.Error(t, err)

	// But they decode fine, which is all the permissive path asks for.
	p, err := tokens.DecodeUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "alice", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestLogin_UnknownUser(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "nobody", "password": "x"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestLogin_MissingFields(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/login", "", map[string]string{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username and password required", body["error"])
}

func TestRegister_Success(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/register", "", map[string]string{
		"username": "dave", "email": "dave@example.com", "password": "dave123",
		"firstName": "Dave", "lastName": "Jones",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.EqualValues(t, 6, body["userId"]) // five seeded users come first

	// New credentials work immediately.
	rec, _ = doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "dave", "password": "dave123"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/register", "",
		map[string]string{"username": "dave"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", body["error"])
}

func TestRegister_DuplicateUsernameLeaksConstraint(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "alice2@example.com", "password": "x",
	})

	// The verbose surface hands back the raw database error and the statement.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body, "stack")
	query, _ := body["query"].(string)
	assert.Contains(t, query, "INSERT INTO users")
}

func TestResetPassword_ReturnsFourDigitToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/reset-password", "",
		map[string]string{"email": "alice@example.com"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset token generated", body["message"])
	token, _ := body["token"].(string)
	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{3}$`), token)
	assert.NotEmpty(t, body["expiresAt"])
}

func TestResetPassword_UnknownEmailIsAnOracle(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/reset-password", "",
		map[string]string{"email": "ghost@example.com"})

	// Distinct from the success path: existence is revealed.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", body["error"])
}

func TestVerifyReset_RoundTrip(t *testing.T) {
	r, _ := newAuthRouter(t)

	_, body := doJSON(t, r, http.MethodPost, "/reset-password", "",
		map[string]string{"email": "bob@example.com"})
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	rec, body := doJSON(t, r, http.MethodPost, "/verify-reset", "", map[string]string{
		"email": "bob@example.com", "token": token, "newPassword": "brandnew",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset successful", body["message"])

	// Old password dead, new one live.
	rec, _ = doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "bob", "password": "bob123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = doJSON(t, r, http.MethodPost, "/login", "",
		map[string]string{"username": "bob", "password": "brandnew"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyReset_TokenIsSingleUse(t *testing.T) {
	r, _ := newAuthRouter(t)

	_, body := doJSON(t, r, http.MethodPost, "/reset-password", "",
		map[string]string{"email": "bob@example.com"})
	token, _ := body["token"].(string)

	doJSON(t, r, http.MethodPost, "/verify-reset", "", map[string]string{
		"email": "bob@example.com", "token": token, "newPassword": "first",
	})
	rec, body := doJSON(t, r, http.MethodPost, "/verify-reset", "", map[string]string{
		"email": "bob@example.com", "token": token, "newPassword": "second",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", body["error"])
}

func TestVerifyReset_WrongToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	doJSON(t, r, http.MethodPost, "/reset-password", "",
		map[string]string{"email": "bob@example.com"})
	rec, body := doJSON(t, r, http.MethodPost, "/verify-reset", "", map[string]string{
		"email": "bob@example.com", "token": "0000", "newPassword": "x",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", body["error"])
}

func TestRefresh_SignsWhateverTheTokenClaims(t *testing.T) {
	r, tokens := newAuthRouter(t)

	// A token "signed" with a junk secret still decodes, and refresh happily
	// re-signs its claims with the real weak secret.
	forged, err := auth.NewTokenService("junk", "junk", 0).IssueWeak(auth.Principal{
		ID: 4, Username: "admin", Email: "admin@example.com", IsAdmin: true,
	})
	require.NoError(t, err)

	rec, body := doJSON(t, r, http.MethodPost, "/refresh", "",
		map[string]string{"token": forged})

	assert.Equal(t, http.StatusOK, rec.Code)
	fresh, _ := body["token"].(string)
	require.NotEmpty(t, fresh)

	p, err := tokens.DecodeUnverified(fresh)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.Equal(t, int64(4), p.ID)
}

func TestRefresh_GarbageToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/refresh", "",
		map[string]string{"token": "not-a-jwt"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", body["error"])
}
