// Package auth authenticates the platform adapter that calls the transfer
// API. A single service token is configured as a bcrypt hash; callers present
// the plaintext token as a bearer credential.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks presented service tokens against the configured hash.
type Verifier struct {
	tokenHash string
}

// NewVerifier creates a Verifier for the given bcrypt token hash. An empty
// hash disables authentication (local development).
func NewVerifier(tokenHash string) *Verifier {
	return &Verifier{tokenHash: tokenHash}
}

// Enabled reports whether a service token hash is configured.
func (v *Verifier) Enabled() bool {
	return v.tokenHash != ""
}

// Verify returns nil if the plaintext token matches the configured hash.
func (v *Verifier) Verify(token string) error {
	return bcrypt.CompareHashAndPassword([]byte(v.tokenHash), []byte(token))
}

// HashToken returns the bcrypt hash for a plaintext service token. Used by
// the token generation command.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(hash), nil
}
