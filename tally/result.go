package tally

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// Result is the decrypted tally of a proposal: the total weight each option
// received.
type Result struct {
	Votes []uint64
}

// Total returns the sum of the counts.
func (r Result) Total() uint64 {
	var total uint64
	for _, v := range r.Votes {
		total += v
	}

	return total
}

// Verify recomputes the decryption of the tally from verified shares and
// checks it matches the result, so that anyone can audit a published
// result.
func (r Result) Verify(et *EncryptedTally, c *committee.Committee, shares []DecryptShare) error {
	if len(r.Votes) != et.Options() {
		return xerrors.Errorf("result has %d options instead of %d", len(r.Votes), et.Options())
	}

	for _, s := range shares {
		pk, err := c.Member(s.Member())
		if err != nil {
			return xerrors.Errorf("share of member %d: %w", s.Member(), err)
		}

		err = s.Verify(et, pk)
		if err != nil {
			return xerrors.Errorf("share of member %d: %w", s.Member(), err)
		}
	}

	plaintexts, err := combine(et, c, shares)
	if err != nil {
		return err
	}

	for i, m := range plaintexts {
		expected := group.Suite.Point().Mul(group.ScalarFromUint64(r.Votes[i]), nil)
		if !expected.Equal(m) {
			return xerrors.Errorf("option %d: count %d does not match the decryption", i, r.Votes[i])
		}
	}

	return nil
}

// Decrypt combines the shares, which must have been verified, and recovers
// the counts with the table. The table must cover the total weight cast.
func Decrypt(et *EncryptedTally, c *committee.Committee, shares []DecryptShare, table *elgamal.Table) (Result, error) {
	plaintexts, err := combine(et, c, shares)
	if err != nil {
		return Result{}, err
	}

	votes, err := elgamal.DiscreteLogs(plaintexts, table)
	if err != nil {
		return Result{}, xerrors.Errorf("failed to recover counts: %w", err)
	}

	return Result{Votes: votes}, nil
}

// combine returns the lifted plaintext m*G of every option.
func combine(et *EncryptedTally, c *committee.Committee, shares []DecryptShare) ([]kyber.Point, error) {
	sums := et.Ciphertexts()
	plaintexts := make([]kyber.Point, len(sums))

	for i, ct := range sums {
		partials := make(map[uint32]kyber.Point, len(shares))

		for _, s := range shares {
			if len(s.elements) != len(sums) {
				return nil, xerrors.Errorf("share of member %d has %d elements for %d options",
					s.member, len(s.elements), len(sums))
			}

			partials[s.member] = s.elements[i].D
		}

		d, err := c.Combine(partials)
		if err != nil {
			return nil, xerrors.Errorf("option %d: %w", i, err)
		}

		plaintexts[i] = group.Suite.Point().Sub(ct.E2, d)
	}

	return plaintexts, nil
}
