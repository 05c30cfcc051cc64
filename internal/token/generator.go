// Package token generates and validates session tokens.
package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Alphabet is the fixed token alphabet: uppercase letters and digits with the
// ambiguous characters 0, 1, I, L and O removed, so tokens survive being read
// aloud or retyped on either mobile platform.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ErrInvalidFormat is returned when a token has the wrong length or contains
// characters outside Alphabet. Checked at the boundary before any store call.
var ErrInvalidFormat = errors.New("invalid token format")

// Generator produces uniformly random session tokens of a fixed length.
// Construction fails when the configured length cannot clear the entropy
// floor, so a misconfigured deployment dies at startup rather than issuing
// guessable tokens.
type Generator struct {
	length int
}

// NewGenerator returns a Generator for tokens of the given length.
// minEntropyBits is the security floor; length*log2(len(Alphabet)) must reach it.
func NewGenerator(length int, minEntropyBits float64) (*Generator, error) {
	if length <= 0 {
		return nil, errors.New("token: length must be positive")
	}
	bits := EntropyBits(length)
	if bits < minEntropyBits {
		return nil, fmt.Errorf("token: length %d yields %.1f entropy bits, below floor %.1f", length, bits, minEntropyBits)
	}
	return &Generator{length: length}, nil
}

// Length returns the configured token length.
func (g *Generator) Length() int {
	return g.length
}

// EntropyBits returns the entropy in bits of a token of the given length
// drawn uniformly from Alphabet.
func EntropyBits(length int) float64 {
	return float64(length) * math.Log2(float64(len(Alphabet)))
}

// Generate returns a new uniformly random token. Uses crypto/rand; rejection
// sampling keeps the draw unbiased over the 31-character alphabet.
func (g *Generator) Generate() (string, error) {
	// Largest multiple of len(Alphabet) that fits in a byte.
	max := byte(256 - 256%len(Alphabet))
	out := make([]byte, g.length)
	buf := make([]byte, g.length*2)
	i := 0
	for i < g.length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			out[i] = Alphabet[int(b)%len(Alphabet)]
			i++
			if i == g.length {
				break
			}
		}
	}
	return string(out), nil
}

// Validate checks token length and alphabet. A failure here means the value
// cannot have been issued by this system and must be rejected before any
// store lookup.
func (g *Generator) Validate(token string) error {
	if len(token) != g.length {
		return ErrInvalidFormat
	}
	for i := 0; i < len(token); i++ {
		if !strings.ContainsRune(Alphabet, rune(token[i])) {
			return ErrInvalidFormat
		}
	}
	return nil
}
