package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the identity carried through a request. It is populated either
// from a verified token (strict path) or from whatever the token claims to be
// (permissive path — the claims were never checked).
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// claims is the JWT payload: the principal fields plus the registered set.
type claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenService signs and decodes the lab's JWTs. It holds two HMAC secrets:
// the strong one that the strict authenticator verifies against, and the weak
// demo secret that the login and refresh endpoints actually sign with. Tokens
// issued by login therefore never verify under the strong secret — that gap is
// the API2 curriculum.
type TokenService struct {
	strong    []byte
	weak      []byte
	expiresIn time.Duration
}

// NewTokenService creates a TokenService. expiresIn defaults to 24h when zero.
func NewTokenService(strongSecret, weakSecret string, expiresIn time.Duration) *TokenService {
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &TokenService{
		strong:    []byte(strongSecret),
		weak:      []byte(weakSecret),
		expiresIn: expiresIn,
	}
}

// IssueWeak signs a token for p with the weak demo secret. This is what
// /auth/login and /auth/refresh hand out.
func (s *TokenService) IssueWeak(p Principal) (string, error) {
	return s.sign(p, s.weak)
}

// IssueStrong signs a token for p with the strong secret. Only tokens issued
// here pass the strict authenticator.
func (s *TokenService) IssueStrong(p Principal) (string, error) {
	return s.sign(p, s.strong)
}

func (s *TokenService) sign(p Principal, secret []byte) (string, error) {
	now := time.Now()
	c := claims{
		ID:       p.ID,
		Username: p.Username,
		Email:    p.Email,
		IsAdmin:  p.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr, checks the signature against the strong secret, and
// pins the algorithm to HS256 — alg:none and algorithm-confusion tokens are
// rejected here. This is the correct implementation the permissive path
// pointedly skips.
func (s *TokenService) Verify(tokenStr string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.strong, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return &Principal{ID: c.ID, Username: c.Username, Email: c.Email, IsAdmin: c.IsAdmin}, nil
}

// DecodeUnverified extracts the claim set from any syntactically valid JWT
// without checking the signature, the algorithm, or the expiry. A token whose
// header declares alg:none decodes just fine.
//
// This is the lab's defining weakness: the permissive authenticator and the
// refresh endpoint both trust whatever comes back from here. Claims are read
// through a MapClaims coercion because a forged token may carry is_admin as
// true, 1, or "1" — the permissive path honours all of them, the way weakly
// typed consumers do.
func (s *TokenService) DecodeUnverified(tokenStr string) (*Principal, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("auth: malformed token: %w", err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("auth: malformed token claims")
	}

	return &Principal{
		ID:       asInt64(mc["id"]),
		Username: asString(mc["username"]),
		Email:    asString(mc["email"]),
		IsAdmin:  truthy(mc["is_admin"]),
	}, nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truthy applies loose boolean coercion: forged claims carry is_admin as
// bool, number, or string and all of them must count.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int64:
		return b != 0
	case int:
		return b != 0
	case string:
		return b == "true" || b == "1"
	default:
		return false
	}
}
