package token

import (
	"encoding/base64"
	"testing"
)

func TestRandomGenerate(t *testing.T) {
	gen := NewRandom()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		tok, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil {
			t.Fatalf("token is not URL-safe base64: %v", err)
		}
		if len(raw) != DefaultBytes {
			t.Errorf("entropy: expected %d bytes, got %d", DefaultBytes, len(raw))
		}
		if seen[tok] {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = true
	}
}
