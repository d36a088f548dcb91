package security

import (
	"crypto/rand"
	"encoding/base64"
)

// NewVerificationToken returns 256 bits of randomness, URL-safe so it can be
// embedded in a verification link as-is.
func NewVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
