package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// confirmationCodeBytes sizes the secret at 128 bits of entropy, rendered as
// 32 hex characters.
const confirmationCodeBytes = 16

// NewConfirmationCode returns a random, URL-safe confirmation code.
//
// xid is used for entity IDs elsewhere in this codebase, but not here: xid
// values start with a timestamp and are guessable, and a confirmation code
// is a secret. crypto/rand is the right source.
func NewConfirmationCode() (string, error) {
	buf := make([]byte, confirmationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating confirmation code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
