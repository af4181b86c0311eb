package voteplan

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/tally"
	"go.dedis.ch/privote/vote"
)

func TestManager_Scenario(t *testing.T) {
	m, secrets := makeManager(t, 3, 2)

	for i, choice := range []int{0, 1, 0} {
		err := m.Vote(makeCast(m, fmt.Sprintf("voter%d", i), 0, choice, 1))
		require.NoError(t, err)
	}

	err := m.Vote(makeCast(m, "voter0", 1, 1, 4))
	require.NoError(t, err)

	// A tampered ballot is rejected and does not change the sums.
	cast := makeCast(m, "voter3", 0, 2, 1)
	cast.Vote[0], cast.Vote[2] = cast.Vote[2], cast.Vote[0]

	err = m.Vote(cast)
	require.ErrorIs(t, err, vote.ErrInvalidProof)

	status := m.Status()
	require.Equal(t, uint64(3), status.Proposals[0].TotalWeight)
	require.Equal(t, uint64(4), status.Proposals[1].TotalWeight)
	require.Equal(t, 4, status.Voters)

	require.NoError(t, m.Close())

	err = m.Vote(makeCast(m, "voter4", 0, 2, 1))
	require.ErrorIs(t, err, tally.ErrVotingClosed)

	decrypt(t, m, secrets[0])

	status = m.Status()
	require.Equal(t, tally.Decrypting, status.Proposals[0].State)
	require.Equal(t, 1, status.Proposals[0].Shares)
	require.False(t, status.Decrypted())

	decrypt(t, m, secrets[1])

	status = m.Status()
	require.True(t, status.Decrypted())
	require.Equal(t, []uint64{2, 1, 0}, status.Proposals[0].Result)
	require.Equal(t, []uint64{0, 4}, status.Proposals[1].Result)
	require.Equal(t, "first", status.Proposals[0].ExternalID)

	res, err := m.Result(1)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 4}, res.Votes)

	et, err := m.EncryptedTally(0)
	require.NoError(t, err)

	err = m.AddDecryptionShare(0, tally.PartialDecrypt(nil, et, secrets[2]))
	require.ErrorIs(t, err, tally.ErrAlreadyDecrypted)
}

func TestManager_ConcurrentVotes(t *testing.T) {
	m, secrets := makeManager(t, 3, 2)

	n := 20
	errs := make(chan error, 2*n)

	var wg sync.WaitGroup
	wg.Add(2 * n)

	for i := 0; i < n; i++ {
		voter := fmt.Sprintf("voter%d", i)

		go func(i int) {
			defer wg.Done()
			errs <- m.Vote(makeCast(m, voter, 0, i%3, 1))
		}(i)

		go func(i int) {
			defer wg.Done()
			errs <- m.Vote(makeCast(m, voter, 1, i%2, 2))
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Only one of the concurrent ballots of the same voter is counted.
	repeats := make(chan error, 8)
	wg.Add(8)

	for i := 0; i < 8; i++ {
		go func() {
			defer wg.Done()
			repeats <- m.Vote(makeCast(m, "repeat", 1, 0, 1))
		}()
	}

	wg.Wait()
	close(repeats)

	accepted := 0
	for err := range repeats {
		if err == nil {
			accepted++
		} else {
			require.ErrorIs(t, err, ErrAlreadyVoted)
		}
	}

	require.Equal(t, 1, accepted)

	status := m.Status()
	require.Equal(t, 2*n+1, status.Voters)
	require.Equal(t, uint64(n), status.Proposals[0].TotalWeight)
	require.Equal(t, uint64(2*n+1), status.Proposals[1].TotalWeight)

	require.NoError(t, m.Close())
	decrypt(t, m, secrets[0])
	decrypt(t, m, secrets[2])

	status = m.Status()
	require.True(t, status.Decrypted())
	require.Equal(t, []uint64{7, 7, 6}, status.Proposals[0].Result)
	require.Equal(t, []uint64{21, 20}, status.Proposals[1].Result)
}

func TestManager_VoteRejected(t *testing.T) {
	m, _ := makeManager(t, 3, 2)

	require.NoError(t, m.Vote(makeCast(m, "alice", 0, 1, 10)))

	err := m.Vote(makeCast(m, "alice", 0, 2, 10))
	require.ErrorIs(t, err, ErrAlreadyVoted)

	// The same voter can vote on another proposal.
	require.NoError(t, m.Vote(makeCast(m, "alice", 1, 0, 10)))

	cast := makeCast(m, "bob", 0, 1, 1)
	cast.Proposal = 2
	require.ErrorIs(t, m.Vote(cast), ErrInvalidProposal)

	cast.Proposal = -1
	require.ErrorIs(t, m.Vote(cast), ErrInvalidProposal)

	cast = makeCast(m, "bob", 0, 1, 0)
	require.ErrorIs(t, m.Vote(cast), ErrZeroWeight)

	cast = makeCast(m, "", 0, 1, 1)
	require.ErrorIs(t, m.Vote(cast), ErrMissingVoter)

	cast = makeCast(m, "bob", 1, 1, 1)
	cast.Proposal = 0
	require.ErrorIs(t, m.Vote(cast), tally.ErrOptionsMismatch)

	cast = makeCast(m, "bob", 0, 1, 1)
	cast.Proof = nil
	require.ErrorIs(t, m.Vote(cast), vote.ErrInvalidProof)

	require.Equal(t, uint64(10), m.Status().Proposals[0].TotalWeight)

	_, err = m.EncryptedTally(5)
	require.ErrorIs(t, err, ErrInvalidProposal)

	_, err = m.Result(0)
	require.ErrorIs(t, err, tally.ErrNotDecrypted)

	err = m.AddDecryptionShare(0, tally.DecryptShare{})
	require.ErrorIs(t, err, tally.ErrVotingOpen)

	err = m.AddDecryptionShare(3, tally.DecryptShare{})
	require.ErrorIs(t, err, ErrInvalidProposal)
}

func TestManager_VoteBatch(t *testing.T) {
	m, secrets := makeManager(t, 3, 2)

	invalid := makeCast(m, "carol", 0, 0, 1)
	invalid.Proof = makeCast(m, "carol", 0, 1, 1).Proof

	casts := []VoteCast{
		makeCast(m, "alice", 0, 2, 3),
		makeCast(m, "bob", 0, 2, 1),
		invalid,
		makeCast(m, "alice", 0, 0, 3),
		makeCast(m, "alice", 1, 1, 3),
		makeCast(m, "dave", 0, 1, 2),
	}

	errs := m.VoteBatch(context.Background(), casts)
	require.Len(t, errs, len(casts))
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.ErrorIs(t, errs[2], vote.ErrInvalidProof)
	require.ErrorIs(t, errs[3], ErrAlreadyVoted)
	require.NoError(t, errs[4])
	require.NoError(t, errs[5])

	require.NoError(t, m.Close())

	decrypt(t, m, secrets[2])
	decrypt(t, m, secrets[0])

	status := m.Status()
	require.Equal(t, []uint64{0, 2, 4}, status.Proposals[0].Result)
	require.Equal(t, []uint64{0, 3}, status.Proposals[1].Result)
}

func TestManager_VoteBatchCanceled(t *testing.T) {
	m, _ := makeManager(t, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := m.VoteBatch(ctx, []VoteCast{makeCast(m, "alice", 0, 0, 1)})
	require.ErrorIs(t, errs[0], context.Canceled)
	require.Equal(t, uint64(0), m.Status().Proposals[0].TotalWeight)
}

func TestManager_Close(t *testing.T) {
	m, _ := makeManager(t, 3, 2)

	require.NoError(t, m.Close())

	status := m.Status()
	require.True(t, status.Decrypted())
	require.Equal(t, []uint64{0, 0, 0}, status.Proposals[0].Result)

	require.ErrorIs(t, m.Close(), tally.ErrVotingClosed)
}

func TestNewManager(t *testing.T) {
	c, _, err := committee.Deal(nil, 3, 2)
	require.NoError(t, err)

	_, err = NewManager(Plan{ID: "plan"}, c)
	require.EqualError(t, err, "invalid plan: no proposal")

	m, err := NewManager(Plan{ID: "plan", Proposals: []Proposal{{Options: 2}}}, c)
	require.NoError(t, err)
	require.Equal(t, c, m.Committee())
	require.Equal(t, "plan", m.Plan().ID)

	// The election is bound to the identifier of the plan.
	other, err := NewManager(Plan{ID: "other", Proposals: []Proposal{{Options: 2}}}, c)
	require.NoError(t, err)
	require.NotEqual(t, m.Election().Fingerprint(), other.Election().Fingerprint())
	require.True(t, m.Election().PublicKey().Equal(other.Election().PublicKey()))
}

// -----------------------------------------------------------------------------
// Utility functions

func makePlan() Plan {
	return Plan{
		ID: "plan",
		Proposals: []Proposal{
			{ExternalID: "first", Options: 3},
			{ExternalID: "second", Options: 2},
		},
	}
}

func makeManager(t *testing.T, n, threshold int) (*Manager, []*committee.MemberSecret) {
	c, secrets, err := committee.Deal(nil, n, threshold)
	require.NoError(t, err)

	m, err := NewManager(makePlan(), c)
	require.NoError(t, err)

	return m, secrets
}

func makeCast(m *Manager, voter string, proposal, choice int, weight uint64) VoteCast {
	options := m.Plan().Proposals[proposal].Options
	ev, proof := vote.Encrypt(nil, m.Election(), vote.MustUnitVector(options, choice))

	return VoteCast{
		Voter:    voter,
		Proposal: proposal,
		Vote:     ev,
		Proof:    proof,
		Weight:   weight,
	}
}

func decrypt(t *testing.T, m *Manager, secret *committee.MemberSecret) {
	for i := range m.Plan().Proposals {
		et, err := m.EncryptedTally(i)
		require.NoError(t, err)

		err = m.AddDecryptionShare(i, tally.PartialDecrypt(nil, et, secret))
		require.NoError(t, err)
	}
}
