// Package pin generates the short numeric codes that identify rooms.
package pin

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const digits = "0123456789"

// ErrExhausted is returned when every candidate within the attempt bound
// collided with a live room. With a 6-digit space this is practically
// unreachable.
var ErrExhausted = errors.New("pin: code space exhausted")

// Generator draws fixed-width numeric codes uniformly at random.
type Generator struct {
	Length      int
	MaxAttempts int
}

// NewGenerator returns a generator with the given code width and attempt
// bound.
func NewGenerator(length, maxAttempts int) *Generator {
	return &Generator{Length: length, MaxAttempts: maxAttempts}
}

// Generate returns a code for which taken reports false. The taken check
// runs against the live registry rather than a counter so codes never
// collide with rooms created through any path.
func (g *Generator) Generate(taken func(string) bool) (string, error) {
	for attempt := 0; attempt < g.MaxAttempts; attempt++ {
		code, err := g.draw()
		if err != nil {
			return "", err
		}
		if taken != nil && taken(code) {
			continue
		}
		return code, nil
	}
	return "", ErrExhausted
}

func (g *Generator) draw() (string, error) {
	code := make([]byte, g.Length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}
