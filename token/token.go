// Package token generates the random URL-safe identifiers that key
// shared files. Tokens are the only secret protecting a link, so they
// come from crypto/rand rather than a seeded PRNG.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// rawLen is the number of random bytes per token. 16 bytes gives 128
// bits of entropy, which encodes to 22 base64url characters.
const rawLen = 16

// Length is the character length of every generated token.
const Length = 22

// New returns a fresh URL-safe token with no padding characters.
func New() (string, error) {
	buf := make([]byte, rawLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
