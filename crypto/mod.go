// Package crypto defines the hashing and randomness sources shared by the
// cryptographic packages of the module.
package crypto

import (
	"hash"
	"io"
)

// HashFactory is an interface to produce a hash digest.
type HashFactory interface {
	New() hash.Hash
}

// RandGenerator is the interface of a source of cryptographically secure
// random bytes.
type RandGenerator interface {
	io.Reader
}
