// Package token generates unguessable invite tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultBytes is the entropy of a generated token (256 bits).
const DefaultBytes = 32

// Generator produces invite tokens.
type Generator interface {
	Generate() (string, error)
}

// Random draws tokens from crypto/rand and encodes them URL-safe without
// padding, so they can travel in a link.
type Random struct {
	Bytes int
}

// NewRandom returns a generator with DefaultBytes of entropy.
func NewRandom() *Random {
	return &Random{Bytes: DefaultBytes}
}

func (r *Random) Generate() (string, error) {
	n := r.Bytes
	if n <= 0 {
		n = DefaultBytes
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
