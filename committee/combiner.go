package committee

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/share"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// Combiner is the rule that turns the decryption shares of the members into
// the decryption share of the whole committee.
type Combiner interface {
	// Quorum returns the number of distinct member shares the rule needs for
	// a committee of n members with threshold t.
	Quorum(t, n int) int

	// Combine returns sk*E1 from the member shares x_i*E1.
	Combine(shares []*share.PubShare, t, n int) (kyber.Point, error)
}

// LagrangeCombiner interpolates at zero the shares of a Shamir sharing of
// degree t-1. Member i holds the evaluation of the polynomial at i+1.
//
// - implements committee.Combiner
type LagrangeCombiner struct{}

// Quorum implements committee.Combiner. Any t shares are enough.
func (LagrangeCombiner) Quorum(t, n int) int {
	return t
}

// Combine implements committee.Combiner.
func (LagrangeCombiner) Combine(shares []*share.PubShare, t, n int) (kyber.Point, error) {
	if len(shares) < t {
		return nil, xerrors.Errorf("%d shares for threshold %d: %w", len(shares), t, ErrNotEnoughShares)
	}

	p, err := share.RecoverCommit(group.Suite, shares, t, n)
	if err != nil {
		return nil, xerrors.Errorf("failed to recover commit: %v", err)
	}

	return p, nil
}

// SumCombiner adds the shares of an additive n-of-n sharing.
//
// - implements committee.Combiner
type SumCombiner struct{}

// Quorum implements committee.Combiner. Every member is needed.
func (SumCombiner) Quorum(t, n int) int {
	return n
}

// Combine implements committee.Combiner.
func (SumCombiner) Combine(shares []*share.PubShare, t, n int) (kyber.Point, error) {
	seen := make(map[int]struct{}, len(shares))

	res := group.Identity()
	for _, s := range shares {
		if s == nil {
			continue
		}

		_, found := seen[s.I]
		if found {
			continue
		}

		seen[s.I] = struct{}{}
		res = group.Suite.Point().Add(res, s.V)
	}

	if len(seen) < n {
		return nil, xerrors.Errorf("%d shares out of %d: %w", len(seen), n, ErrNotEnoughShares)
	}

	return res, nil
}
