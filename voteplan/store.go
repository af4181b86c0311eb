package voteplan

import (
	"errors"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"go.dedis.ch/privote"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/internal/kv"
	"go.dedis.ch/privote/tally"
	"golang.org/x/xerrors"
)

// Bucket is the name of the database bucket the plans are saved in.
var Bucket = []byte("voteplans")

type voterRecord struct {
	Voter    string `cbor:"1,keyasint"`
	Proposal int    `cbor:"2,keyasint"`
}

// record is the persistent form of a manager. The tallies are the binary
// snapshots of the proposals, in the order of the plan.
type record struct {
	Plan    planRecord    `cbor:"1,keyasint"`
	Closed  bool          `cbor:"2,keyasint"`
	Voters  []voterRecord `cbor:"3,keyasint"`
	Tallies [][]byte      `cbor:"4,keyasint"`
}

type planRecord struct {
	ID          string   `cbor:"1,keyasint"`
	ExternalIDs []string `cbor:"2,keyasint"`
	Options     []int    `cbor:"3,keyasint"`
}

// Save writes the aggregates of the plan in the database under the
// identifier of the plan. The ballots are not part of it, only who voted on
// which proposal.
func (m *Manager) Save(db kv.DB) error {
	m.RLock()

	rec := record{
		Plan:    newPlanRecord(m.plan),
		Closed:  m.closed,
		Voters:  make([]voterRecord, 0, len(m.voters)),
		Tallies: make([][]byte, len(m.tallies)),
	}

	for key := range m.voters {
		rec.Voters = append(rec.Voters, voterRecord{Voter: key.voter, Proposal: key.proposal})
	}

	for i, t := range m.tallies {
		data, err := t.Snapshot().MarshalBinary()
		if err != nil {
			m.RUnlock()
			return xerrors.Errorf("proposal %d: failed to marshal snapshot: %v", i, err)
		}

		rec.Tallies[i] = data
	}

	m.RUnlock()

	sort.Slice(rec.Voters, func(i, j int) bool {
		if rec.Voters[i].Voter == rec.Voters[j].Voter {
			return rec.Voters[i].Proposal < rec.Voters[j].Proposal
		}

		return rec.Voters[i].Voter < rec.Voters[j].Voter
	})

	data, err := encMode.Marshal(rec)
	if err != nil {
		return xerrors.Errorf("failed to encode record: %v", err)
	}

	err = db.Update(Bucket, func(b kv.Bucket) error {
		return b.Set([]byte(m.plan.ID), data)
	})
	if err != nil {
		return xerrors.Errorf("failed to write record: %v", err)
	}

	privote.Logger.Debug().
		Str("plan", m.plan.ID).
		Int("size", len(data)).
		Msg("vote plan saved")

	return nil
}

// Restore reads the plan of the identifier from the database and rebuilds
// its manager for the committee. The shares and results are verified again.
func Restore(db kv.DB, id string, c *committee.Committee) (*Manager, error) {
	var data []byte

	err := db.View(Bucket, func(b kv.Bucket) error {
		value := b.Get([]byte(id))
		if value == nil {
			return xerrors.Errorf("plan '%s' not found", id)
		}

		data = append([]byte(nil), value...)

		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read record: %w", err)
	}

	var rec record

	err = cbor.Unmarshal(data, &rec)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode record: %v", err)
	}

	m, err := NewManager(rec.Plan.plan(), c)
	if err != nil {
		return nil, err
	}

	if len(rec.Tallies) != len(m.tallies) {
		return nil, xerrors.Errorf("record has %d tallies for %d proposals",
			len(rec.Tallies), len(m.tallies))
	}

	for i, raw := range rec.Tallies {
		snap, err := tally.DecodeSnapshot(raw)
		if err != nil {
			return nil, xerrors.Errorf("proposal %d: %w", i, err)
		}

		if rec.Closed != (snap.State != tally.Open) {
			return nil, xerrors.Errorf("proposal %d: %s tally in a plan closed=%t",
				i, snap.State, rec.Closed)
		}

		m.tallies[i], err = tally.Restore(snap, m.election, c)
		if err != nil {
			return nil, xerrors.Errorf("proposal %d: %w", i, err)
		}
	}

	for _, v := range rec.Voters {
		if v.Proposal < 0 || v.Proposal >= len(m.tallies) {
			return nil, xerrors.Errorf("voter '%s': %w", v.Voter, ErrInvalidProposal)
		}

		m.voters[voterKey{voter: v.Voter, proposal: v.Proposal}] = struct{}{}
	}

	m.closed = rec.Closed

	return m, nil
}

// List returns the identifiers of the plans saved in the database that start
// with the prefix, in lexicographic order. Every plan is returned for an
// empty prefix.
func List(db kv.DB, prefix string) ([]string, error) {
	var ids []string

	collect := func(k, v []byte) error {
		ids = append(ids, string(k))
		return nil
	}

	err := db.View(Bucket, func(b kv.Bucket) error {
		if prefix == "" {
			return b.ForEach(collect)
		}

		return b.Scan([]byte(prefix), collect)
	})
	if errors.Is(err, kv.ErrBucketNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to read records: %v", err)
	}

	return ids, nil
}

// Delete removes the plan of the identifier from the database.
func Delete(db kv.DB, id string) error {
	err := db.Update(Bucket, func(b kv.Bucket) error {
		if b.Get([]byte(id)) == nil {
			return xerrors.Errorf("plan '%s' not found", id)
		}

		return b.Delete([]byte(id))
	})
	if err != nil {
		return xerrors.Errorf("failed to delete record: %v", err)
	}

	privote.Logger.Info().Str("plan", id).Msg("vote plan deleted")

	return nil
}

func newPlanRecord(p Plan) planRecord {
	rec := planRecord{
		ID:          p.ID,
		ExternalIDs: make([]string, len(p.Proposals)),
		Options:     make([]int, len(p.Proposals)),
	}

	for i, proposal := range p.Proposals {
		rec.ExternalIDs[i] = proposal.ExternalID
		rec.Options[i] = proposal.Options
	}

	return rec
}

func (r planRecord) plan() Plan {
	p := Plan{ID: r.ID}

	for i, options := range r.Options {
		proposal := Proposal{Options: options}
		if i < len(r.ExternalIDs) {
			proposal.ExternalID = r.ExternalIDs[i]
		}

		p.Proposals = append(p.Proposals, proposal)
	}

	return p
}

var encMode cbor.EncMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}
