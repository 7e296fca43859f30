package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// resetTokenBytes is the entropy of a reset token. 24 random bytes encode to
// a 32-character URL-safe string — comfortably unguessable for a credential
// that lives at most 24 hours.
const resetTokenBytes = 24

// NewResetToken returns an opaque, URL-safe, cryptographically random token
// for the password-reset flow.
//
// Legacy deployments derived tokens from Math.random() and the current
// time, which an attacker can reconstruct. crypto/rand draws from
// the operating system's CSPRNG instead.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
