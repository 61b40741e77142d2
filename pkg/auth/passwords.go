package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/JaimeStill/promptchan/pkg/validation"
)

// Passwords hashes and verifies user secrets with bcrypt.
type Passwords struct {
	cost int
}

// NewPasswords creates a Passwords hasher with the given bcrypt cost.
func NewPasswords(cost int) *Passwords {
	return &Passwords{cost: cost}
}

// Hash returns a salted digest of secret.
// Secrets longer than bcrypt accepts are reported as validation errors.
func (p *Passwords) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", validation.Invalid("password must be at most 72 bytes")
		}
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest.
func (p *Passwords) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
