package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewOpaque generates a cryptographically random 42-character hex string.
// Used for email verification codes and for the throwaway passwords of
// federated accounts; 21 random bytes keeps collisions negligible.
func NewOpaque() (string, error) {
	b := make([]byte, 21)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate opaque token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
