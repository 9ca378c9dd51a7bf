// Package auth is responsible for handling authentication and authorization logic.
// This includes password hashing and verification, claims-token verification,
// and the role gate consumed by every mutating endpoint.
// In the original Express backend this logic was spread across `bcrypt` calls in
// `userController.js` and the `verifyToken` middleware; here it is collected in
// one module with explicit, injected configuration.
package auth

import (
	"errors"

	// Library for password hashing using bcrypt.
	"golang.org/x/crypto/bcrypt"

	"github.com/user/learnhub-go/apperror"
)

// CredentialManager performs one-way hashing and verification of passwords.
// The cost parameter is fixed at construction from configuration; it is the
// only knob, mirroring the original's single `genSalt(10)` constant.
type CredentialManager struct {
	cost int
}

// NewCredentialManager creates a CredentialManager with the given bcrypt cost.
// The cost is validated/clamped by the config package before it gets here.
func NewCredentialManager(cost int) *CredentialManager {
	return &CredentialManager{cost: cost}
}

// HashPassword derives a salted bcrypt hash from the plaintext password.
// bcrypt embeds a random salt in its output, so hashing the same password
// twice yields different strings; equality of hashes is never a meaningful
// comparison, only VerifyPassword is.
func (m *CredentialManager) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", apperror.NewInternalError("failed to hash password", err)
	}
	return string(hashed), nil
}

// VerifyPassword compares the plaintext password against a stored bcrypt hash.
//
// A mismatch is an expected outcome and returns (false, nil); it is never an
// error, so callers cannot accidentally surface it as a 500. Only a stored
// hash that bcrypt cannot parse at all produces a non-nil error: that is a
// CredentialFormatError, fatal for the request (the account cannot be
// authenticated against corrupt data) and never retried.
func (m *CredentialManager) VerifyPassword(password, storedHash string) (bool, error) {
	// bcrypt performs the digest comparison in constant time internally.
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	// Anything else (hash too short, unknown prefix, bad version) means the
	// stored value is not a bcrypt hash at all.
	return false, apperror.NewCredentialFormatError("stored password hash is malformed", err)
}
