// Package auth holds the password credential helpers. Hashing mechanics are
// delegated to bcrypt; the rest of the system only sees opaque hashes.
package auth

import (
	"github.com/cleansweep/litterwatch/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials signals a password mismatch.
var ErrInvalidCredentials = errors.NewSentinel("invalid credentials")

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// ComparePassword checks a plaintext password against a stored hash and
// returns ErrInvalidCredentials on mismatch.
func ComparePassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return errors.Wrap(ErrInvalidCredentials, "compare password")
	}
	return nil
}
