// Package id generates the opaque identifiers handed out for new records.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const idByteLen = 16

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator produces 32 hex characters of CSPRNG output. IDs carry no
// structure on purpose; ordering and ownership live in the records.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, idByteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
