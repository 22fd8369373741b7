package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 32 // 256 bits of randomness

// NewConfirmationToken generates the bearer credential embedded in the
// confirmation link. Collision probability at 256 bits is negligible, so
// uniqueness is not re-checked beyond the store's unique index.
func NewConfirmationToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// tokenPrefix returns a short prefix safe to log. Full tokens never appear in
// logs because they are live credentials.
func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
