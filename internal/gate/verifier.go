package gate

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a submitted credential against the stored form and
// produces the stored form for a new credential.
type Verifier interface {
	Verify(candidate, stored string) bool
	Seal(secret string) (string, error)
}

// Plaintext stores the credential as-is and compares by equality.
type Plaintext struct{}

func (Plaintext) Verify(candidate, stored string) bool { return candidate == stored }

func (Plaintext) Seal(secret string) (string, error) { return secret, nil }

// Bcrypt stores a bcrypt hash. Stored values that are not bcrypt hashes
// (a credential saved before hashing was enabled, or the built-in default)
// are compared as plaintext.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Verify(candidate, stored string) bool {
	if !isBcryptHash(stored) {
		return candidate == stored
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

func (b Bcrypt) Seal(secret string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Credential modes accepted by NewVerifier.
const (
	ModePlain  = "plain"
	ModeBcrypt = "bcrypt"
)

// NewVerifier returns the Verifier for a credential mode. An empty mode is plain.
func NewVerifier(mode string) (Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModePlain:
		return Plaintext{}, nil
	case ModeBcrypt:
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("unknown credential mode %q (want plain or bcrypt)", mode)
	}
}
