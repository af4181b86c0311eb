package tally

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"go.dedis.ch/privote/crypto/zkp"
	"golang.org/x/xerrors"
)

// ShareElement is the partial decryption D = x_i*E1 of the ciphertext of
// one option, with the proof it was computed with the member share.
type ShareElement struct {
	D     kyber.Point
	Proof *zkp.Decryption
}

// DecryptShare is the contribution of a committee member to the decryption
// of an encrypted tally.
type DecryptShare struct {
	member   uint32
	elements []ShareElement
}

// NewDecryptShare returns a share made of the elements.
func NewDecryptShare(member uint32, elements []ShareElement) DecryptShare {
	return DecryptShare{member: member, elements: elements}
}

// PartialDecrypt computes the share of the member for every option of the
// tally.
func PartialDecrypt(stream cipher.Stream, et *EncryptedTally, m *committee.MemberSecret) DecryptShare {
	sums := et.Ciphertexts()
	elements := make([]ShareElement, len(sums))

	for i, c := range sums {
		d, proof := zkp.ProvePartialDecryption(stream, m.SecretKey(), c)

		elements[i] = ShareElement{D: d, Proof: proof}
	}

	return DecryptShare{member: m.Index(), elements: elements}
}

// Member returns the index of the member that produced the share.
func (s DecryptShare) Member() uint32 {
	return s.member
}

// Elements returns the per-option partial decryptions.
func (s DecryptShare) Elements() []ShareElement {
	return s.elements
}

// Verify checks the share against the tally and the public share of the
// member. It returns an error wrapping ErrInvalidShareProof.
func (s DecryptShare) Verify(et *EncryptedTally, pk elgamal.PublicKey) error {
	sums := et.Ciphertexts()

	if len(s.elements) != len(sums) {
		return xerrors.Errorf("share has %d elements for %d options: %w",
			len(s.elements), len(sums), ErrInvalidShareProof)
	}

	for i, c := range sums {
		elem := s.elements[i]
		if elem.D == nil {
			return xerrors.Errorf("option %d: missing share: %w", i, ErrInvalidShareProof)
		}

		st := zkp.DecryptionStatement{
			PublicKey:  pk,
			Ciphertext: c,
			Plaintext:  group.Suite.Point().Sub(c.E2, elem.D),
		}

		err := zkp.NewDecryptionProof(elem.Proof).Verify(st)
		if err != nil {
			return xerrors.Errorf("option %d: %v: %w", i, err, ErrInvalidShareProof)
		}
	}

	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s DecryptShare) MarshalBinary() ([]byte, error) {
	w := group.Writer{}
	w.Uint32(s.member)
	w.Uint8(uint8(len(s.elements)))

	for _, e := range s.elements {
		proof, err := e.Proof.MarshalBinary()
		if err != nil {
			return nil, xerrors.Errorf("failed to marshal proof: %v", err)
		}

		w.Point(e.D)
		w.Raw(proof)
	}

	return w.Bytes(), nil
}

// DecodeDecryptShare parses a decryption share.
func DecodeDecryptShare(data []byte) (DecryptShare, error) {
	r := group.NewReader(data)

	member, err := r.Uint32()
	if err != nil {
		return DecryptShare{}, xerrors.Errorf("decrypt share member: %w", err)
	}

	n, err := r.Uint8()
	if err != nil {
		return DecryptShare{}, xerrors.Errorf("decrypt share: %w", err)
	}

	elements := make([]ShareElement, n)

	for i := range elements {
		d, err := r.Point()
		if err != nil {
			return DecryptShare{}, xerrors.Errorf("decrypt share option %d: %w", i, err)
		}

		raw, err := r.Raw(zkp.DLEQLen)
		if err != nil {
			return DecryptShare{}, xerrors.Errorf("decrypt share option %d: %w", i, err)
		}

		proof, err := zkp.DecodeDecryption(raw)
		if err != nil {
			return DecryptShare{}, xerrors.Errorf("decrypt share option %d: %w", i, err)
		}

		elements[i] = ShareElement{D: d, Proof: proof}
	}

	err = r.Done()
	if err != nil {
		return DecryptShare{}, xerrors.Errorf("decrypt share: %w", err)
	}

	return DecryptShare{member: member, elements: elements}, nil
}
