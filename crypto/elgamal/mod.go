// Package elgamal implements the additively homomorphic (lifted) ElGamal
// encryption scheme over the group: a message m is encrypted as
// (r*G, m*G + r*PK), so that adding ciphertexts adds the messages.
//
// Decryption yields m*G and the message is recovered with a bounded discrete
// logarithm search, see Table.
package elgamal

import (
	"crypto/cipher"
	"fmt"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// CiphertextLen is the length in bytes of an encoded ciphertext.
const CiphertextLen = 2 * group.PointLen

// SecretKey is an ElGamal decryption key. It must be wiped with Zeroize once
// it is no longer needed.
type SecretKey struct {
	scalar kyber.Scalar
}

// NewSecretKey draws a fresh secret key from the stream.
func NewSecretKey(stream cipher.Stream) *SecretKey {
	return &SecretKey{scalar: group.RandomScalar(stream)}
}

// SecretKeyFromScalar returns a secret key holding a copy of the scalar.
func SecretKeyFromScalar(s kyber.Scalar) *SecretKey {
	return &SecretKey{scalar: s.Clone()}
}

// Scalar returns the secret scalar.
func (sk *SecretKey) Scalar() kyber.Scalar {
	return sk.scalar
}

// Public returns the public key matching the secret key.
func (sk *SecretKey) Public() PublicKey {
	return PublicKey{point: group.Suite.Point().Mul(sk.scalar, nil)}
}

// DecryptPoint returns m*G for the message m of the ciphertext.
func (sk *SecretKey) DecryptPoint(c Ciphertext) kyber.Point {
	shared := group.Suite.Point().Mul(sk.scalar, c.E1)

	return group.Suite.Point().Sub(c.E2, shared)
}

// Decrypt returns the message of the ciphertext. It fails with ErrDecryption
// when the message is not in [0, max].
func (sk *SecretKey) Decrypt(c Ciphertext, max uint64) (uint64, error) {
	return sk.DecryptTable(c, NewTable(max))
}

// DecryptTable is like Decrypt but searches the message with a precomputed
// table, which is worth it when many ciphertexts share the same range.
func (sk *SecretKey) DecryptTable(c Ciphertext, table *Table) (uint64, error) {
	m, err := table.Log(sk.DecryptPoint(c))
	if err != nil {
		return 0, xerrors.Errorf("failed to decrypt: %w", err)
	}

	return m, nil
}

// Zeroize overwrites the secret scalar. The key is unusable afterwards.
func (sk *SecretKey) Zeroize() {
	if sk != nil && sk.scalar != nil {
		sk.scalar.Zero()
	}
}

// PublicKey is an ElGamal encryption key.
type PublicKey struct {
	point kyber.Point
}

// NewPublicKey returns the public key of the group element.
func NewPublicKey(p kyber.Point) PublicKey {
	return PublicKey{point: p}
}

// DecodePublicKey parses the canonical encoding of a public key.
func DecodePublicKey(data []byte) (PublicKey, error) {
	p, err := group.DecodePoint(data)
	if err != nil {
		return PublicKey{}, xerrors.Errorf("public key: %w", err)
	}

	return PublicKey{point: p}, nil
}

// Point returns the group element of the key.
func (pk PublicKey) Point() kyber.Point {
	return pk.point
}

// Equal returns true when both keys are the same element.
func (pk PublicKey) Equal(other PublicKey) bool {
	return pk.point.Equal(other.point)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return pk.point.MarshalBinary()
}

// String implements fmt.Stringer.
func (pk PublicKey) String() string {
	return fmt.Sprintf("elgamal:%x", group.EncodePoint(pk.point)[:8])
}

// Encrypt returns the encryption of the message m with the randomness r.
func (pk PublicKey) Encrypt(m, r kyber.Scalar) Ciphertext {
	return pk.EncryptPoint(group.Suite.Point().Mul(m, nil), r)
}

// EncryptPoint returns the encryption of an already lifted message M = m*G.
func (pk PublicKey) EncryptPoint(M kyber.Point, r kyber.Scalar) Ciphertext {
	return Ciphertext{
		E1: group.Suite.Point().Mul(r, nil),
		E2: group.Suite.Point().Add(M, group.Suite.Point().Mul(r, pk.point)),
	}
}

// EncryptRandom encrypts m with randomness drawn from the stream and returns
// the ciphertext with the randomness.
func (pk PublicKey) EncryptRandom(stream cipher.Stream, m kyber.Scalar) (Ciphertext, kyber.Scalar) {
	r := group.RandomScalar(stream)

	return pk.Encrypt(m, r), r
}

// Keypair holds a secret key and its public key.
type Keypair struct {
	Secret *SecretKey
	Public PublicKey
}

// Generate returns a fresh key pair.
func Generate(stream cipher.Stream) Keypair {
	sk := NewSecretKey(stream)

	return Keypair{Secret: sk, Public: sk.Public()}
}

// Ciphertext is an ElGamal ciphertext (E1, E2) = (r*G, m*G + r*PK).
type Ciphertext struct {
	E1 kyber.Point
	E2 kyber.Point
}

// Zero returns the trivial encryption of zero with zero randomness.
func Zero() Ciphertext {
	return Ciphertext{E1: group.Identity(), E2: group.Identity()}
}

// DecodeCiphertext parses the canonical encoding of a ciphertext.
func DecodeCiphertext(data []byte) (Ciphertext, error) {
	r := group.NewReader(data)

	c, err := ReadCiphertext(r)
	if err != nil {
		return Ciphertext{}, err
	}

	err = r.Done()
	if err != nil {
		return Ciphertext{}, xerrors.Errorf("ciphertext: %w", err)
	}

	return c, nil
}

// ReadCiphertext reads a ciphertext from the reader.
func ReadCiphertext(r *group.Reader) (Ciphertext, error) {
	e1, err := r.Point()
	if err != nil {
		return Ciphertext{}, xerrors.Errorf("ciphertext e1: %w", err)
	}

	e2, err := r.Point()
	if err != nil {
		return Ciphertext{}, xerrors.Errorf("ciphertext e2: %w", err)
	}

	return Ciphertext{E1: e1, E2: e2}, nil
}

// Encode appends the ciphertext to the writer.
func (c Ciphertext) Encode(w *group.Writer) {
	w.Point(c.E1)
	w.Point(c.E2)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c Ciphertext) MarshalBinary() ([]byte, error) {
	w := group.Writer{}
	c.Encode(&w)

	return w.Bytes(), nil
}

// Add returns the ciphertext of the sum of the messages.
func (c Ciphertext) Add(o Ciphertext) Ciphertext {
	return Ciphertext{
		E1: group.Suite.Point().Add(c.E1, o.E1),
		E2: group.Suite.Point().Add(c.E2, o.E2),
	}
}

// Sub returns the ciphertext of the difference of the messages.
func (c Ciphertext) Sub(o Ciphertext) Ciphertext {
	return Ciphertext{
		E1: group.Suite.Point().Sub(c.E1, o.E1),
		E2: group.Suite.Point().Sub(c.E2, o.E2),
	}
}

// Mul returns the ciphertext of the message multiplied by the scalar.
func (c Ciphertext) Mul(s kyber.Scalar) Ciphertext {
	return Ciphertext{
		E1: group.Suite.Point().Mul(s, c.E1),
		E2: group.Suite.Point().Mul(s, c.E2),
	}
}

// Equal returns true when both components are equal.
func (c Ciphertext) Equal(o Ciphertext) bool {
	return c.E1.Equal(o.E1) && c.E2.Equal(o.E2)
}

// String implements fmt.Stringer.
func (c Ciphertext) String() string {
	return fmt.Sprintf("Ciphertext{%v, %v}", c.E1, c.E2)
}
