// Package vote encodes a choice among the options of a proposal as an
// encrypted unit vector, proves it and verifies it into a ballot.
package vote

import (
	"crypto/cipher"
	"fmt"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"go.dedis.ch/privote/crypto/zkp"
	"golang.org/x/xerrors"
)

// MaxOptions is the largest number of options of a proposal.
const MaxOptions = 255

// ErrInvalidProof is returned when the proof of a vote does not verify.
var ErrInvalidProof = xerrors.New("invalid vote proof")

// UnitVector is a vector of a given size whose only non-zero entry, equal to
// one, is at the chosen index.
type UnitVector struct {
	size  int
	index int
}

// NewUnitVector returns the unit vector choosing the index.
func NewUnitVector(size, index int) (UnitVector, error) {
	if size < 1 || size > MaxOptions {
		return UnitVector{}, xerrors.Errorf("invalid number of options %d", size)
	}

	if index < 0 || index >= size {
		return UnitVector{}, xerrors.Errorf("choice %d out of range [0, %d)", index, size)
	}

	return UnitVector{size: size, index: index}, nil
}

// MustUnitVector is like NewUnitVector but panics on invalid arguments.
func MustUnitVector(size, index int) UnitVector {
	uv, err := NewUnitVector(size, index)
	if err != nil {
		panic(err)
	}

	return uv
}

// DecodeUnitVector recovers the unit vector from its entries. It fails when
// the entries are not exactly one 1 and zeros.
func DecodeUnitVector(entries []uint64) (UnitVector, error) {
	index := -1

	for i, e := range entries {
		switch {
		case e == 0:
		case e == 1 && index < 0:
			index = i
		default:
			return UnitVector{}, xerrors.Errorf("entry %d: not a unit vector", i)
		}
	}

	if index < 0 {
		return UnitVector{}, xerrors.New("no entry set")
	}

	return NewUnitVector(len(entries), index)
}

// Len returns the size of the vector.
func (uv UnitVector) Len() int {
	return uv.size
}

// Index returns the index of the non-zero entry.
func (uv UnitVector) Index() int {
	return uv.index
}

// Entry returns the value of the vector at i.
func (uv UnitVector) Entry(i int) uint64 {
	if i == uv.index {
		return 1
	}

	return 0
}

// Entries returns the full vector.
func (uv UnitVector) Entries() []uint64 {
	entries := make([]uint64, uv.size)
	entries[uv.index] = 1

	return entries
}

// String implements fmt.Stringer.
func (uv UnitVector) String() string {
	return fmt.Sprintf("UnitVector(%d/%d)", uv.index, uv.size)
}

// EncryptedVote is the encryption of a unit vector, one ciphertext per
// option.
type EncryptedVote []elgamal.Ciphertext

// Encrypt encrypts the unit vector for the election and proves that the
// result is a unit vector.
func Encrypt(stream cipher.Stream, election Election, uv UnitVector) (EncryptedVote, *zkp.UnitVector) {
	ev := make(EncryptedVote, uv.Len())
	randomness := make([]kyber.Scalar, uv.Len())

	for i := range ev {
		m := group.ScalarFromUint64(uv.Entry(i))
		ev[i], randomness[i] = election.PublicKey().EncryptRandom(stream, m)
	}

	proof := zkp.ProveUnitVector(stream, statement(election, ev), randomness, uv.Index())

	for _, r := range randomness {
		r.Zero()
	}

	return ev, proof
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ev EncryptedVote) MarshalBinary() ([]byte, error) {
	if len(ev) == 0 || len(ev) > MaxOptions {
		return nil, xerrors.Errorf("invalid number of options %d", len(ev))
	}

	w := group.Writer{}
	w.Uint8(uint8(len(ev)))

	for _, c := range ev {
		c.Encode(&w)
	}

	return w.Bytes(), nil
}

// DecodeEncryptedVote parses an encrypted vote.
func DecodeEncryptedVote(data []byte) (EncryptedVote, error) {
	r := group.NewReader(data)

	n, err := r.Uint8()
	if err != nil {
		return nil, xerrors.Errorf("encrypted vote: %w", err)
	}

	if n == 0 {
		return nil, xerrors.Errorf("encrypted vote: no option: %w", group.ErrDecoding)
	}

	ev := make(EncryptedVote, n)

	for i := range ev {
		ev[i], err = elgamal.ReadCiphertext(r)
		if err != nil {
			return nil, xerrors.Errorf("encrypted vote option %d: %w", i, err)
		}
	}

	err = r.Done()
	if err != nil {
		return nil, xerrors.Errorf("encrypted vote: %w", err)
	}

	return ev, nil
}

// Ballot is an encrypted vote whose proof has been verified for an
// election. It can only be obtained through Verify.
type Ballot struct {
	vote        EncryptedVote
	fingerprint Fingerprint
}

// Verify checks the proof of the encrypted vote and returns the ballot. It
// fails with ErrInvalidProof when the vote is not a valid unit vector.
func Verify(election Election, ev EncryptedVote, proof *zkp.UnitVector) (Ballot, error) {
	err := zkp.NewUnitVectorProof(proof).Verify(statement(election, ev))
	if err != nil {
		return Ballot{}, xerrors.Errorf("%v: %w", err, ErrInvalidProof)
	}

	b := Ballot{
		vote:        append(EncryptedVote(nil), ev...),
		fingerprint: election.Fingerprint(),
	}

	return b, nil
}

// Vote returns the encrypted vote of the ballot.
func (b Ballot) Vote() EncryptedVote {
	return b.vote
}

// Fingerprint returns the fingerprint of the election the ballot was
// verified for.
func (b Ballot) Fingerprint() Fingerprint {
	return b.fingerprint
}

func statement(election Election, ev EncryptedVote) zkp.UnitVectorStatement {
	return zkp.UnitVectorStatement{
		Key:         election.Key(),
		PublicKey:   election.PublicKey(),
		Ciphertexts: ev,
	}
}
