package oauthflow

import (
	"crypto/rand"
	"encoding/hex"
)

// NewState returns a fresh CSRF state token: 32 random bytes, hex-encoded
// (256 bits of entropy).
func NewState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
