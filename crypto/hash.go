package crypto

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm enumerates the supported digests.
type HashAlgorithm int

const (
	// Sha256 is SHA-256.
	Sha256 HashAlgorithm = iota
	// Blake2b256 is BLAKE2b with a 256-bit output.
	Blake2b256
)

// hashFactory is a hash factory for a given algorithm.
//
// - implements crypto.HashFactory
type hashFactory struct {
	hashType HashAlgorithm
}

// NewHashFactory returns a new instance of the factory.
func NewHashFactory(a HashAlgorithm) HashFactory {
	return hashFactory{a}
}

// New implements crypto.HashFactory. It returns a new Hash instance.
func (f hashFactory) New() hash.Hash {
	switch f.hashType {
	case Sha256:
		return sha256.New()
	case Blake2b256:
		// Only fails with a key longer than 64 bytes.
		h, _ := blake2b.New256(nil)
		return h
	default:
		panic("unknown hash type")
	}
}
