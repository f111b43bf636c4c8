package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// oauthStateBytes gives 256 bits of entropy.
const oauthStateBytes = 32

// NewOAuthState returns a URL-safe CSRF token for the Google consent round trip.
func NewOAuthState() (string, error) {
	b := make([]byte, oauthStateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
