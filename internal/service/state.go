package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// stateLength is the number of URL-safe characters in a session state nonce.
const stateLength = 32

// GenerateState returns a cryptographically random URL-safe state nonce.
func GenerateState() (string, error) {
	return generateRandomString(stateLength)
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	// 3 random bytes encode to 4 characters; round up.
	b := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:length], nil
}
