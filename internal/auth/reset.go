package auth

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// ResetTokenTTL is the password-reset token lifetime.
const ResetTokenTTL = 15 * time.Minute

// NewResetToken returns a decimal reset token in [1000, 9999].
//
// Four digits and math/rand are both deliberate: the token's guessability is
// the API2 weakness this flow demonstrates. A real implementation would use
// crypto/rand and far more entropy.
func NewResetToken() string {
	return strconv.Itoa(1000 + rand.IntN(9000))
}
