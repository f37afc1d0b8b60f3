// Package session holds session token helpers and the in-process session
// store used by the memory profile.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultTTL is the inactivity window after which a session expires.
const DefaultTTL = 7 * 24 * time.Hour

const tokenBytes = 32

// NewToken returns a URL-safe random session token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
