// Package commitment implements Pedersen commitments com(m; r) = m*G + r*H
// where H is an element with unknown discrete logarithm to the generator G.
package commitment

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

const crsDomain = "privote/commitment-key/v1"

// Key is the commitment key, i.e. the second generator H.
type Key struct {
	h kyber.Point
}

// NewKey returns the commitment key of the common reference string element.
func NewKey(crs kyber.Point) Key {
	return Key{h: crs}
}

// KeyFromSeed derives the commitment key from public seed bytes.
func KeyFromSeed(seed []byte) Key {
	return Key{h: group.HashToPoint(crsDomain, seed)}
}

// DecodeKey parses a commitment key.
func DecodeKey(data []byte) (Key, error) {
	h, err := group.DecodePoint(data)
	if err != nil {
		return Key{}, xerrors.Errorf("commitment key: %w", err)
	}

	return Key{h: h}, nil
}

// H returns the second generator.
func (k Key) H() kyber.Point {
	return k.h
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (k Key) MarshalBinary() ([]byte, error) {
	return k.h.MarshalBinary()
}

// Commit returns com(m; r).
func (k Key) Commit(m, r kyber.Scalar) Commitment {
	mg := group.Suite.Point().Mul(m, nil)
	rh := group.Suite.Point().Mul(r, k.h)

	return Commitment{point: group.Suite.Point().Add(mg, rh)}
}

// Verify returns true when the opening matches the commitment.
func (k Key) Verify(c Commitment, o Opening) bool {
	return k.Commit(o.M, o.R).Equal(c)
}

// Opening is the pair (message, blinding) that opens a commitment.
type Opening struct {
	M kyber.Scalar
	R kyber.Scalar
}

// Commitment is a Pedersen commitment.
type Commitment struct {
	point kyber.Point
}

// FromPoint wraps a group element computed by a verifier as a commitment.
func FromPoint(p kyber.Point) Commitment {
	return Commitment{point: p}
}

// DecodeCommitment parses a commitment.
func DecodeCommitment(data []byte) (Commitment, error) {
	p, err := group.DecodePoint(data)
	if err != nil {
		return Commitment{}, xerrors.Errorf("commitment: %w", err)
	}

	return Commitment{point: p}, nil
}

// Point returns the group element of the commitment.
func (c Commitment) Point() kyber.Point {
	return c.point
}

// Add returns the commitment to the sum of the messages and blindings.
func (c Commitment) Add(o Commitment) Commitment {
	return Commitment{point: group.Suite.Point().Add(c.point, o.point)}
}

// Mul returns the commitment scaled by s.
func (c Commitment) Mul(s kyber.Scalar) Commitment {
	return Commitment{point: group.Suite.Point().Mul(s, c.point)}
}

// Equal returns true when both commitments are the same element.
func (c Commitment) Equal(o Commitment) bool {
	return c.point.Equal(o.point)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c Commitment) MarshalBinary() ([]byte, error) {
	return c.point.MarshalBinary()
}
