// Package voteplan manages the private tally of the proposals of a vote plan.
//
// The manager verifies and accumulates the ballots of the voters, rejects a
// second ballot of a voter on the same proposal and drives the decryption of
// every proposal by the committee once the vote is closed.
package voteplan

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.dedis.ch/privote"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/zkp"
	"go.dedis.ch/privote/tally"
	"go.dedis.ch/privote/vote"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

var (
	// ErrInvalidProposal is returned for an index outside the plan.
	ErrInvalidProposal = xerrors.New("invalid proposal")

	// ErrZeroWeight is returned for a vote without voting power.
	ErrZeroWeight = tally.ErrZeroWeight

	// ErrAlreadyVoted is returned for the second ballot of a voter on the
	// same proposal.
	ErrAlreadyVoted = xerrors.New("already voted")

	// ErrMissingVoter is returned for a ballot without voter.
	ErrMissingVoter = xerrors.New("missing voter")
)

// VoteCast is the ballot of a voter for a proposal.
type VoteCast struct {
	Voter    string
	Proposal int
	Vote     vote.EncryptedVote
	Proof    *zkp.UnitVector
	Weight   uint64
}

type voterKey struct {
	voter    string
	proposal int
}

// Manager is the tally of a vote plan. It is safe for concurrent use.
type Manager struct {
	sync.RWMutex

	plan      Plan
	committee *committee.Committee
	election  vote.Election
	tallies   []*tally.Tally
	voters    map[voterKey]struct{}
	closed    bool
}

// NewManager returns an open manager for the plan and the committee.
func NewManager(plan Plan, c *committee.Committee) (*Manager, error) {
	err := plan.Validate()
	if err != nil {
		return nil, xerrors.Errorf("invalid plan: %v", err)
	}

	m := &Manager{
		plan:      plan,
		committee: c,
		election:  plan.Election(c),
		tallies:   make([]*tally.Tally, len(plan.Proposals)),
		voters:    make(map[voterKey]struct{}),
	}

	for i, proposal := range plan.Proposals {
		m.tallies[i], err = tally.New(proposal.Options, m.election, c)
		if err != nil {
			return nil, xerrors.Errorf("proposal %d: %v", i, err)
		}
	}

	privote.Logger.Info().
		Str("plan", plan.ID).
		Int("proposals", len(plan.Proposals)).
		Stringer("committee", c).
		Stringer("election", m.election.Fingerprint()).
		Msg("vote plan opened")

	return m, nil
}

// Plan returns the plan.
func (m *Manager) Plan() Plan {
	return m.plan
}

// Committee returns the committee that decrypts the plan.
func (m *Manager) Committee() *committee.Committee {
	return m.committee
}

// Election returns the parameters voters encrypt and prove their ballots
// with.
func (m *Manager) Election() vote.Election {
	return m.election
}

// Vote verifies the ballot and adds it to the tally of its proposal.
func (m *Manager) Vote(cast VoteCast) error {
	ballot, err := m.verify(cast)
	if err != nil {
		return err
	}

	return m.cast(cast, ballot)
}

// VoteBatch verifies the ballots concurrently and then adds the valid ones in
// order. The errors are returned at the index of their ballot, nil for an
// accepted one. Ballots not processed before the context is done fail with
// the error of the context.
func (m *Manager) VoteBatch(ctx context.Context, casts []VoteCast) []error {
	errs := make([]error, len(casts))
	ballots := make([]vote.Ballot, len(casts))

	g := errgroup.Group{}
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range casts {
		i := i

		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return nil
			}

			ballots[i], errs[i] = m.verify(casts[i])

			return nil
		})
	}

	g.Wait()

	for i, cast := range casts {
		if errs[i] != nil {
			continue
		}

		errs[i] = m.cast(cast, ballots[i])
	}

	return errs
}

// Close stops the vote on every proposal. A proposal without any vote is
// decrypted right away.
func (m *Manager) Close() error {
	m.Lock()
	defer m.Unlock()

	if m.closed {
		return tally.ErrVotingClosed
	}

	for i, t := range m.tallies {
		err := t.Close()
		if err != nil {
			return xerrors.Errorf("proposal %d: %v", i, err)
		}
	}

	m.closed = true

	privote.Logger.Info().Str("plan", m.plan.ID).Msg("vote plan closed")

	return nil
}

// EncryptedTally returns the encrypted tally of the proposal that the members
// of the committee partially decrypt.
func (m *Manager) EncryptedTally(proposal int) (*tally.EncryptedTally, error) {
	t, err := m.tally(proposal)
	if err != nil {
		return nil, err
	}

	return t.Encrypted(), nil
}

// AddDecryptionShare adds the share of a member for the proposal. The
// proposal is decrypted when the quorum of the committee is reached.
func (m *Manager) AddDecryptionShare(proposal int, share tally.DecryptShare) error {
	t, err := m.tally(proposal)
	if err != nil {
		return err
	}

	start := time.Now()

	err = t.AddDecryptionShare(share)
	if err != nil {
		promShares.WithLabelValues(statusRejected).Inc()

		privote.Logger.Warn().Err(err).
			Int("proposal", proposal).
			Uint32("member", share.Member()).
			Msg("decryption share rejected")

		return xerrors.Errorf("proposal %d: %w", proposal, err)
	}

	promShares.WithLabelValues(statusAccepted).Inc()

	if t.State() == tally.Decrypted {
		promDecrypted.Inc()
		promDecryption.Observe(time.Since(start).Seconds())
	}

	return nil
}

// Result returns the result of a decrypted proposal.
func (m *Manager) Result(proposal int) (tally.Result, error) {
	t, err := m.tally(proposal)
	if err != nil {
		return tally.Result{}, err
	}

	res, err := t.Result()
	if err != nil {
		return tally.Result{}, xerrors.Errorf("proposal %d: %w", proposal, err)
	}

	return res, nil
}

// Status returns the state of every proposal of the plan.
func (m *Manager) Status() PlanStatus {
	m.RLock()
	defer m.RUnlock()

	status := PlanStatus{
		ID:          m.plan.ID,
		Fingerprint: m.election.Fingerprint(),
		Voters:      len(m.voters),
		Proposals:   make([]ProposalStatus, len(m.tallies)),
	}

	for i, t := range m.tallies {
		snap := t.Snapshot()

		ps := ProposalStatus{
			Index:       i,
			ExternalID:  m.plan.Proposals[i].ExternalID,
			Options:     t.Options(),
			State:       snap.State,
			TotalWeight: snap.Weight,
			Shares:      len(snap.Shares),
		}

		if snap.Result != nil {
			ps.Result = snap.Result.Votes
		}

		status.Proposals[i] = ps
	}

	return status
}

func (m *Manager) tally(proposal int) (*tally.Tally, error) {
	if proposal < 0 || proposal >= len(m.tallies) {
		return nil, xerrors.Errorf("index %d of %d proposals: %w",
			proposal, len(m.tallies), ErrInvalidProposal)
	}

	return m.tallies[proposal], nil
}

// verify runs the checks that do not depend on the other ballots, which
// includes the proof verification.
func (m *Manager) verify(cast VoteCast) (vote.Ballot, error) {
	ballot, err := m.verifyCast(cast)
	if err != nil {
		promBallots.WithLabelValues(statusRejected).Inc()

		privote.Logger.Warn().Err(err).
			Str("voter", cast.Voter).
			Int("proposal", cast.Proposal).
			Msg("ballot rejected")
	}

	return ballot, err
}

func (m *Manager) verifyCast(cast VoteCast) (vote.Ballot, error) {
	t, err := m.tally(cast.Proposal)
	if err != nil {
		return vote.Ballot{}, err
	}

	if cast.Voter == "" {
		return vote.Ballot{}, ErrMissingVoter
	}

	if cast.Weight == 0 {
		return vote.Ballot{}, ErrZeroWeight
	}

	m.RLock()
	_, found := m.voters[voterKey{voter: cast.Voter, proposal: cast.Proposal}]
	closed := m.closed
	m.RUnlock()

	if closed {
		return vote.Ballot{}, tally.ErrVotingClosed
	}

	if found {
		return vote.Ballot{}, xerrors.Errorf("voter '%s' on proposal %d: %w",
			cast.Voter, cast.Proposal, ErrAlreadyVoted)
	}

	if len(cast.Vote) != t.Options() {
		return vote.Ballot{}, xerrors.Errorf("ballot has %d options instead of %d: %w",
			len(cast.Vote), t.Options(), tally.ErrOptionsMismatch)
	}

	start := time.Now()

	ballot, err := vote.Verify(m.election, cast.Vote, cast.Proof)
	if err != nil {
		return vote.Ballot{}, xerrors.Errorf("voter '%s' on proposal %d: %w",
			cast.Voter, cast.Proposal, err)
	}

	promVerify.Observe(time.Since(start).Seconds())

	return ballot, nil
}

// cast records the voter and adds the verified ballot. The voter is checked
// again as another ballot may have been added since the verification.
func (m *Manager) cast(cast VoteCast, ballot vote.Ballot) error {
	key := voterKey{voter: cast.Voter, proposal: cast.Proposal}

	m.Lock()
	defer m.Unlock()

	_, found := m.voters[key]
	if found {
		promBallots.WithLabelValues(statusRejected).Inc()

		return xerrors.Errorf("voter '%s' on proposal %d: %w",
			cast.Voter, cast.Proposal, ErrAlreadyVoted)
	}

	err := m.tallies[cast.Proposal].Cast(ballot, cast.Weight)
	if err != nil {
		promBallots.WithLabelValues(statusRejected).Inc()

		return xerrors.Errorf("proposal %d: %w", cast.Proposal, err)
	}

	m.voters[key] = struct{}{}

	promBallots.WithLabelValues(statusAccepted).Inc()

	return nil
}
