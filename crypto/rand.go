package crypto

import (
	"crypto/cipher"
	"crypto/rand"

	"go.dedis.ch/kyber/v3/util/random"
)

// CryptographicRandomGenerator is cryptographically secure random generator.
//
// - implements crypto.RandGenerator
type CryptographicRandomGenerator struct{}

// Read implements crypto.RandGenerator. It fills the given buffer at its
// capacity as long as no error occurred.
func (crg CryptographicRandomGenerator) Read(buffer []byte) (int, error) {
	return rand.Read(buffer)
}

// NewRandomStream returns a stream suitable to pick scalars, fed by the
// generator.
func NewRandomStream(gen RandGenerator) cipher.Stream {
	return random.New(gen)
}
