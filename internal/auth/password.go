// Package auth provides the lab's credential store — password hashing, JWT
// issuance/decoding — and the four authentication middlewares.
//
// Two of the middlewares are intentionally broken (see middleware.go). The
// hashing below, by contrast, is straight bcrypt: the lab's authentication
// weaknesses live in the token handling and the missing throttles, not in
// password storage.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used for every stored password,
// matching the seed data. bcrypt embeds the salt and cost in its output, so
// the hash string is self-contained.
const defaultCost = 10

// PasswordService provides bcrypt hashing and verification. A struct rather
// than free functions so tests can inject a lower cost and skip the ~100ms
// per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the lab's cost (10).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Tests use bcrypt.MinCost; nothing else should.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes plaintext with bcrypt. Rejects inputs over 72 bytes, which
// bcrypt would otherwise silently truncate.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. bcrypt's
// comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
