// Package tally implements the tally of a proposal: the homomorphic
// accumulation of the ballots while the vote is open, and the threshold
// decryption of the sums by the committee once it is closed.
package tally

import (
	"sort"
	"sync"

	"go.dedis.ch/privote"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/zkp"
	"go.dedis.ch/privote/vote"
	"golang.org/x/xerrors"
)

var (
	// ErrInvalidProof is returned when the proof of a vote does not verify.
	ErrInvalidProof = vote.ErrInvalidProof

	// ErrInvalidShareProof is returned when a decryption share does not
	// verify.
	ErrInvalidShareProof = xerrors.New("invalid decryption share proof")

	// ErrVotingClosed is returned when a vote is cast after the close.
	ErrVotingClosed = xerrors.New("voting is closed")

	// ErrVotingOpen is returned when a share is added before the close.
	ErrVotingOpen = xerrors.New("voting is still open")

	// ErrAlreadyDecrypted is returned when a share is added once the result
	// is known.
	ErrAlreadyDecrypted = xerrors.New("tally already decrypted")

	// ErrNotDecrypted is returned when the result is read too early.
	ErrNotDecrypted = xerrors.New("tally not decrypted")

	// ErrWrongElection is returned for a ballot verified for another
	// election.
	ErrWrongElection = xerrors.New("ballot of another election")

	// ErrOptionsMismatch is returned for a ballot with a different number of
	// options.
	ErrOptionsMismatch = xerrors.New("wrong number of options")

	// ErrZeroWeight is returned for a vote without voting power.
	ErrZeroWeight = xerrors.New("zero voting power")
)

// Tally is the state machine of the tally of one proposal. It is safe for
// concurrent use; every mutation is serialized.
type Tally struct {
	sync.Mutex

	state     State
	election  vote.Election
	committee *committee.Committee
	encrypted *EncryptedTally
	weight    uint64
	shares    map[uint32]DecryptShare
	result    *Result
}

// New returns an open tally for a proposal with the number of options.
func New(options int, election vote.Election, c *committee.Committee) (*Tally, error) {
	if !c.ElectionKey().Equal(election.PublicKey()) {
		return nil, xerrors.New("election key is not the committee key")
	}

	et, err := NewEncryptedTally(options, election)
	if err != nil {
		return nil, err
	}

	t := &Tally{
		state:     Open,
		election:  election,
		committee: c,
		encrypted: et,
		shares:    make(map[uint32]DecryptShare),
	}

	return t, nil
}

// State returns the current state.
func (t *Tally) State() State {
	t.Lock()
	defer t.Unlock()

	return t.state
}

// Options returns the number of options of the proposal.
func (t *Tally) Options() int {
	return t.encrypted.Options()
}

// Election returns the election the ballots are verified for.
func (t *Tally) Election() vote.Election {
	return t.election
}

// TotalWeight returns the sum of the weights cast so far.
func (t *Tally) TotalWeight() uint64 {
	t.Lock()
	defer t.Unlock()

	return t.weight
}

// Encrypted returns a copy of the encrypted tally.
func (t *Tally) Encrypted() *EncryptedTally {
	t.Lock()
	defer t.Unlock()

	return t.encrypted.Clone()
}

// Shares returns the decryption shares received so far, sorted by member.
func (t *Tally) Shares() []DecryptShare {
	t.Lock()
	defer t.Unlock()

	return t.sortedShares()
}

// CastVote verifies the proof of the encrypted vote and adds it with the
// weight. The vote itself is not retained.
func (t *Tally) CastVote(ev vote.EncryptedVote, proof *zkp.UnitVector, weight uint64) error {
	if t.State() != Open {
		return ErrVotingClosed
	}

	ballot, err := vote.Verify(t.election, ev, proof)
	if err != nil {
		return err
	}

	return t.Cast(ballot, weight)
}

// Cast adds an already verified ballot with the weight. The same ballot cast
// twice is counted twice.
func (t *Tally) Cast(b vote.Ballot, weight uint64) error {
	t.Lock()
	defer t.Unlock()

	if t.state != Open {
		return ErrVotingClosed
	}

	if t.weight+weight < t.weight {
		return xerrors.New("total weight overflow")
	}

	err := t.encrypted.Add(b, weight)
	if err != nil {
		return xerrors.Errorf("failed to add ballot: %w", err)
	}

	t.weight += weight

	return nil
}

// Close stops accepting votes. A tally without any vote is decrypted right
// away to zero counts.
func (t *Tally) Close() error {
	t.Lock()
	defer t.Unlock()

	err := t.switchState(Closed)
	if err != nil {
		return xerrors.Errorf("failed to close: %v", err)
	}

	if t.weight == 0 {
		t.result = &Result{Votes: make([]uint64, t.encrypted.Options())}

		err = t.switchState(Decrypted)
		if err != nil {
			return xerrors.Errorf("failed to decrypt empty tally: %v", err)
		}
	}

	return nil
}

// AddDecryptionShare verifies and stores the share of a member. A new share
// of the same member replaces the previous one. Once the quorum of the
// committee is reached, the tally is decrypted.
func (t *Tally) AddDecryptionShare(s DecryptShare) error {
	t.Lock()
	defer t.Unlock()

	switch t.state {
	case Open:
		return ErrVotingOpen
	case Decrypted:
		return ErrAlreadyDecrypted
	}

	pk, err := t.committee.Member(s.Member())
	if err != nil {
		return err
	}

	err = s.Verify(t.encrypted, pk)
	if err != nil {
		return xerrors.Errorf("member %d: %w", s.Member(), err)
	}

	if t.state == Closed {
		err = t.switchState(Decrypting)
		if err != nil {
			return err
		}
	}

	t.shares[s.Member()] = s

	privote.Logger.Debug().
		Uint32("member", s.Member()).
		Int("shares", len(t.shares)).
		Int("quorum", t.committee.Quorum()).
		Msg("decryption share accepted")

	if len(t.shares) < t.committee.Quorum() {
		return nil
	}

	table := elgamal.NewTable(t.weight)

	res, err := Decrypt(t.encrypted, t.committee, t.sortedShares(), table)
	if err != nil {
		return xerrors.Errorf("failed to decrypt: %w", err)
	}

	t.result = &res

	return t.switchState(Decrypted)
}

// Result returns the counts of a decrypted tally.
func (t *Tally) Result() (Result, error) {
	t.Lock()
	defer t.Unlock()

	if t.state != Decrypted {
		return Result{}, xerrors.Errorf("%s: %w", t.state, ErrNotDecrypted)
	}

	return Result{Votes: append([]uint64(nil), t.result.Votes...)}, nil
}

func (t *Tally) switchState(next State) error {
	err := canSwitch(t.state, next)
	if err != nil {
		return err
	}

	privote.Logger.Info().
		Stringer("from", t.state).
		Stringer("to", next).
		Stringer("election", t.election.Fingerprint()).
		Msg("tally state changed")

	t.state = next

	return nil
}

func (t *Tally) sortedShares() []DecryptShare {
	shares := make([]DecryptShare, 0, len(t.shares))
	for _, s := range t.shares {
		shares = append(shares, s)
	}

	sort.Slice(shares, func(i, j int) bool {
		return shares[i].member < shares[j].member
	})

	return shares
}
