package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := ps.Hash("alice123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "alice123" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "alice123"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
	if err := ps.Verify(hash, "wrong"); err == nil {
		t.Error("Verify() accepted the wrong password")
	}
}

func TestHash_SaltsAreUnique(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	h1, _ := ps.Hash("123456")
	h2, _ := ps.Hash("123456")
	if h1 == h2 {
		t.Error("two hashes of the same password were identical; salt is missing")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceWithCost(bcrypt.MinCost)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
}

func TestResetToken_FourDecimalDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		tok := NewResetToken()
		if len(tok) != 4 {
			t.Fatalf("NewResetToken() = %q, want 4 digits", tok)
		}
		for _, c := range tok {
			if c < '0' || c > '9' {
				t.Fatalf("NewResetToken() = %q, contains non-digit", tok)
			}
		}
		if tok[0] == '0' {
			t.Fatalf("NewResetToken() = %q, tokens live in [1000, 9999]", tok)
		}
	}
}
