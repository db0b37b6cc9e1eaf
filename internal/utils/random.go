package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomToken returns a cryptographically random token of exactly length
// characters drawn from the URL-safe base64 alphabet.
func RandomToken(length int) (string, error) {
	raw := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
