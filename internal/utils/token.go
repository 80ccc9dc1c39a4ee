package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns a cryptographically secure random token of n bytes,
// hex-encoded.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
