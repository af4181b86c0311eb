package tally

import (
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"go.dedis.ch/privote/vote"
	"golang.org/x/xerrors"
)

// Snapshot is the persistent form of a tally. It only holds aggregates:
// individual ballots are never part of it.
type Snapshot struct {
	State     State
	Weight    uint64
	Encrypted *EncryptedTally
	Shares    []DecryptShare
	Result    *Result
}

// Snapshot returns the current snapshot of the tally.
func (t *Tally) Snapshot() Snapshot {
	t.Lock()
	defer t.Unlock()

	snap := Snapshot{
		State:     t.state,
		Weight:    t.weight,
		Encrypted: t.encrypted.Clone(),
		Shares:    t.sortedShares(),
	}

	if t.result != nil {
		snap.Result = &Result{Votes: append([]uint64(nil), t.result.Votes...)}
	}

	return snap
}

// Restore rebuilds a tally from a snapshot taken for the same election and
// committee. The shares are verified again.
func Restore(snap Snapshot, election vote.Election, c *committee.Committee) (*Tally, error) {
	if snap.Encrypted == nil {
		return nil, xerrors.New("snapshot without encrypted tally")
	}

	if snap.Encrypted.Fingerprint() != election.Fingerprint() {
		return nil, xerrors.Errorf("snapshot of election %v: %w",
			snap.Encrypted.Fingerprint(), ErrWrongElection)
	}

	t, err := New(snap.Encrypted.Options(), election, c)
	if err != nil {
		return nil, err
	}

	t.state = snap.State
	t.weight = snap.Weight
	t.encrypted = snap.Encrypted.Clone()

	if snap.Weight == 0 {
		for i, ct := range t.encrypted.Ciphertexts() {
			if !ct.Equal(elgamal.Zero()) {
				return nil, xerrors.Errorf("option %d: sum without weight", i)
			}
		}
	}

	for _, s := range snap.Shares {
		pk, err := c.Member(s.Member())
		if err != nil {
			return nil, err
		}

		err = s.Verify(t.encrypted, pk)
		if err != nil {
			return nil, xerrors.Errorf("member %d: %w", s.Member(), err)
		}

		t.shares[s.Member()] = s
	}

	switch snap.State {
	case Open, Closed:
		if len(snap.Shares) > 0 {
			return nil, xerrors.Errorf("%s tally with shares", snap.State)
		}
	case Decrypting:
	case Decrypted:
		if snap.Result == nil || len(snap.Result.Votes) != t.encrypted.Options() {
			return nil, xerrors.New("decrypted tally without result")
		}

		err = verifyResult(snap, c)
		if err != nil {
			return nil, xerrors.Errorf("invalid result: %v", err)
		}

		t.result = &Result{Votes: append([]uint64(nil), snap.Result.Votes...)}
	default:
		return nil, xerrors.Errorf("unknown state %d", snap.State)
	}

	return t, nil
}

// verifyResult checks the result of a decrypted snapshot. A tally without
// weight decrypts to zeros without any share, otherwise the result must be
// the decryption of a quorum of shares and account for the whole weight.
func verifyResult(snap Snapshot, c *committee.Committee) error {
	if snap.Weight == 0 {
		if len(snap.Shares) > 0 {
			return xerrors.Errorf("%d shares for a tally without weight", len(snap.Shares))
		}

		if snap.Result.Total() != 0 {
			return xerrors.Errorf("counts %v for a tally without weight", snap.Result.Votes)
		}

		return nil
	}

	if len(snap.Shares) < c.Quorum() {
		return xerrors.Errorf("%d shares for a quorum of %d: %w",
			len(snap.Shares), c.Quorum(), committee.ErrNotEnoughShares)
	}

	if snap.Result.Total() != snap.Weight {
		return xerrors.Errorf("counts sum to %d instead of %d", snap.Result.Total(), snap.Weight)
	}

	return snap.Result.Verify(snap.Encrypted, c, snap.Shares)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	if s.Encrypted == nil {
		return nil, xerrors.New("snapshot without encrypted tally")
	}

	w := group.Writer{}
	w.Uint8(uint8(s.State))
	w.Uint64(s.Weight)

	et, err := s.Encrypted.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal tally: %v", err)
	}

	w.Uint32(uint32(len(et)))
	w.Raw(et)

	w.Uint32(uint32(len(s.Shares)))

	for _, share := range s.Shares {
		data, err := share.MarshalBinary()
		if err != nil {
			return nil, xerrors.Errorf("failed to marshal share: %v", err)
		}

		w.Uint32(uint32(len(data)))
		w.Raw(data)
	}

	if s.Result == nil {
		w.Uint8(0)
	} else {
		w.Uint8(1)
		w.Uint8(uint8(len(s.Result.Votes)))

		for _, v := range s.Result.Votes {
			w.Uint64(v)
		}
	}

	return w.Bytes(), nil
}

// DecodeSnapshot parses a snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	r := group.NewReader(data)

	state, err := r.Uint8()
	if err != nil {
		return Snapshot{}, xerrors.Errorf("snapshot state: %w", err)
	}

	snap := Snapshot{State: State(state)}

	snap.Weight, err = r.Uint64()
	if err != nil {
		return Snapshot{}, xerrors.Errorf("snapshot weight: %w", err)
	}

	chunk, err := readChunk(r)
	if err != nil {
		return Snapshot{}, xerrors.Errorf("snapshot tally: %w", err)
	}

	snap.Encrypted, err = DecodeEncryptedTally(chunk)
	if err != nil {
		return Snapshot{}, xerrors.Errorf("snapshot tally: %w", err)
	}

	count, err := r.Uint32()
	if err != nil {
		return Snapshot{}, xerrors.Errorf("snapshot shares: %w", err)
	}

	for i := uint32(0); i < count; i++ {
		chunk, err = readChunk(r)
		if err != nil {
			return Snapshot{}, xerrors.Errorf("snapshot share %d: %w", i, err)
		}

		share, err := DecodeDecryptShare(chunk)
		if err != nil {
			return Snapshot{}, xerrors.Errorf("snapshot share %d: %w", i, err)
		}

		snap.Shares = append(snap.Shares, share)
	}

	hasResult, err := r.Uint8()
	if err != nil {
		return Snapshot{}, xerrors.Errorf("snapshot result: %w", err)
	}

	if hasResult == 1 {
		n, err := r.Uint8()
		if err != nil {
			return Snapshot{}, xerrors.Errorf("snapshot result: %w", err)
		}

		snap.Result = &Result{Votes: make([]uint64, n)}

		for i := range snap.Result.Votes {
			snap.Result.Votes[i], err = r.Uint64()
			if err != nil {
				return Snapshot{}, xerrors.Errorf("snapshot result: %w", err)
			}
		}
	}

	err = r.Done()
	if err != nil {
		return Snapshot{}, xerrors.Errorf("snapshot: %w", err)
	}

	return snap, nil
}

func readChunk(r *group.Reader) ([]byte, error) {
	size, err := r.Uint32()
	if err != nil {
		return nil, err
	}

	return r.Raw(int(size))
}
