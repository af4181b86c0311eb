package tally

import (
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"go.dedis.ch/privote/vote"
	"golang.org/x/xerrors"
)

// EncryptedTally is the homomorphic sum of the ballots of a proposal, one
// ciphertext per option.
type EncryptedTally struct {
	sums        []elgamal.Ciphertext
	fingerprint vote.Fingerprint
}

// NewEncryptedTally returns an empty tally for the options of a proposal of
// the election.
func NewEncryptedTally(options int, election vote.Election) (*EncryptedTally, error) {
	if options < 1 || options > vote.MaxOptions {
		return nil, xerrors.Errorf("invalid number of options %d", options)
	}

	et := &EncryptedTally{
		sums:        make([]elgamal.Ciphertext, options),
		fingerprint: election.Fingerprint(),
	}

	for i := range et.sums {
		et.sums[i] = elgamal.Zero()
	}

	return et, nil
}

// Options returns the number of options.
func (et *EncryptedTally) Options() int {
	return len(et.sums)
}

// Fingerprint returns the fingerprint of the election.
func (et *EncryptedTally) Fingerprint() vote.Fingerprint {
	return et.fingerprint
}

// Ciphertexts returns a copy of the per-option sums.
func (et *EncryptedTally) Ciphertexts() []elgamal.Ciphertext {
	return append([]elgamal.Ciphertext(nil), et.sums...)
}

// Add folds the ballot multiplied by the weight into the sums.
func (et *EncryptedTally) Add(b vote.Ballot, weight uint64) error {
	if b.Fingerprint() != et.fingerprint {
		return xerrors.Errorf("ballot %v for tally %v: %w",
			b.Fingerprint(), et.fingerprint, ErrWrongElection)
	}

	if len(b.Vote()) != len(et.sums) {
		return xerrors.Errorf("ballot has %d options instead of %d: %w",
			len(b.Vote()), len(et.sums), ErrOptionsMismatch)
	}

	if weight == 0 {
		return ErrZeroWeight
	}

	w := group.ScalarFromUint64(weight)

	for i, c := range b.Vote() {
		et.sums[i] = et.sums[i].Add(c.Mul(w))
	}

	return nil
}

// Clone returns a deep enough copy of the tally. Ciphertexts are immutable.
func (et *EncryptedTally) Clone() *EncryptedTally {
	return &EncryptedTally{
		sums:        et.Ciphertexts(),
		fingerprint: et.fingerprint,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (et *EncryptedTally) MarshalBinary() ([]byte, error) {
	w := group.Writer{}
	w.Raw(et.fingerprint[:])
	w.Uint8(uint8(len(et.sums)))

	for _, c := range et.sums {
		c.Encode(&w)
	}

	return w.Bytes(), nil
}

// DecodeEncryptedTally parses an encrypted tally.
func DecodeEncryptedTally(data []byte) (*EncryptedTally, error) {
	r := group.NewReader(data)

	fp, err := r.Raw(vote.FingerprintLen)
	if err != nil {
		return nil, xerrors.Errorf("encrypted tally fingerprint: %w", err)
	}

	n, err := r.Uint8()
	if err != nil {
		return nil, xerrors.Errorf("encrypted tally: %w", err)
	}

	if n == 0 {
		return nil, xerrors.Errorf("encrypted tally: no option: %w", group.ErrDecoding)
	}

	et := &EncryptedTally{sums: make([]elgamal.Ciphertext, n)}
	copy(et.fingerprint[:], fp)

	for i := range et.sums {
		et.sums[i], err = elgamal.ReadCiphertext(r)
		if err != nil {
			return nil, xerrors.Errorf("encrypted tally option %d: %w", i, err)
		}
	}

	err = r.Done()
	if err != nil {
		return nil, xerrors.Errorf("encrypted tally: %w", err)
	}

	return et, nil
}
