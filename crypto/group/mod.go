// Package group provides the prime-order group used by every cryptographic
// primitive of the module, together with the canonical encoding of its
// scalars and elements.
//
// The group is the prime-order subgroup of Curve25519 in its twisted Edwards
// form, as implemented by the kyber Ed25519 suite. Arithmetic is delegated to
// kyber which performs scalar multiplications in constant time.
package group

import (
	"crypto/cipher"
	"encoding/binary"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/suites"
	"go.dedis.ch/kyber/v3/xof/keccak"
)

const (
	// ScalarLen is the length in bytes of an encoded scalar.
	ScalarLen = 32

	// PointLen is the length in bytes of an encoded group element.
	PointLen = 32
)

// Suite is the kyber suite backing the group.
var Suite = suites.MustFind("Ed25519")

// Generator returns the standard base point of the group.
func Generator() kyber.Point {
	return Suite.Point().Base()
}

// Identity returns the neutral element of the group.
func Identity() kyber.Point {
	return Suite.Point().Null()
}

// Zero returns the zero scalar.
func Zero() kyber.Scalar {
	return Suite.Scalar().Zero()
}

// One returns the scalar one.
func One() kyber.Scalar {
	return Suite.Scalar().One()
}

// ScalarFromUint64 returns the scalar representing the integer.
func ScalarFromUint64(v uint64) kyber.Scalar {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)

	return Suite.Scalar().SetBytes(buf)
}

// RandomScalar draws a uniformly distributed scalar from the stream. A nil
// stream falls back to the suite's cryptographic source.
func RandomScalar(stream cipher.Stream) kyber.Scalar {
	if stream == nil {
		stream = Suite.RandomStream()
	}

	return Suite.Scalar().Pick(stream)
}

// HashToPoint deterministically maps the domain and the data to a group
// element whose discrete logarithm with respect to the generator is unknown.
// The element always belongs to the prime-order subgroup.
func HashToPoint(domain string, data ...[]byte) kyber.Point {
	seed := make([]byte, 0, len(domain)+4)
	seed = appendChunk(seed, []byte(domain))

	for _, d := range data {
		seed = appendChunk(seed, d)
	}

	return Suite.Point().Pick(keccak.New(seed))
}

// Pow returns x^n.
func Pow(x kyber.Scalar, n int) kyber.Scalar {
	res := One()
	for i := 0; i < n; i++ {
		res = Suite.Scalar().Mul(res, x)
	}

	return res
}

// Powers returns the n first powers of x starting from x^0.
func Powers(x kyber.Scalar, n int) []kyber.Scalar {
	powers := make([]kyber.Scalar, n)

	acc := One()
	for i := range powers {
		powers[i] = acc
		acc = Suite.Scalar().Mul(acc, x)
	}

	return powers
}

// Sum returns the sum of the group elements, or the identity when none is
// provided.
func Sum(points ...kyber.Point) kyber.Point {
	res := Identity()
	for _, p := range points {
		res = Suite.Point().Add(res, p)
	}

	return res
}

// InSubgroup returns true when the element has an order dividing the prime
// order of the group, i.e. it carries no small-order component.
func InSubgroup(p kyber.Point) bool {
	// (l-1)*P + P == l*P, which is the identity only in the prime-order
	// subgroup.
	minusOne := Suite.Scalar().SetInt64(-1)
	lp := Suite.Point().Add(Suite.Point().Mul(minusOne, p), p)

	return lp.Equal(Identity())
}

func appendChunk(buf, data []byte) []byte {
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(data)))

	buf = append(buf, size...)

	return append(buf, data...)
}
