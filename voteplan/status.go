package voteplan

import (
	"go.dedis.ch/privote/serde"
	"go.dedis.ch/privote/serde/registry"
	"go.dedis.ch/privote/tally"
	"go.dedis.ch/privote/vote"
	"golang.org/x/xerrors"
)

var statusFormats = registry.NewSimpleRegistry()

// RegisterStatusFormat registers the engine for the provided format.
func RegisterStatusFormat(f serde.Format, e serde.FormatEngine) {
	statusFormats.Register(f, e)
}

// StatusFormats returns the formats a status can be serialized with.
func StatusFormats() []serde.Format {
	return statusFormats.Formats()
}

// ProposalStatus is the public state of the tally of a proposal.
type ProposalStatus struct {
	Index       int
	ExternalID  string
	Options     int
	State       tally.State
	TotalWeight uint64
	Shares      int

	// Result is only set once the proposal is decrypted.
	Result []uint64
}

// PlanStatus is the public state of a vote plan.
//
// - implements serde.Message
type PlanStatus struct {
	ID          string
	Fingerprint vote.Fingerprint
	Voters      int
	Proposals   []ProposalStatus
}

// Decrypted returns true when every proposal is decrypted.
func (s PlanStatus) Decrypted() bool {
	for _, p := range s.Proposals {
		if p.State != tally.Decrypted {
			return false
		}
	}

	return true
}

// Serialize implements serde.Message.
func (s PlanStatus) Serialize(ctx serde.Context) ([]byte, error) {
	format := statusFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, s)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode status: %v", err)
	}

	return data, nil
}

// StatusFactory is the factory of plan statuses.
//
// - implements serde.Factory
type StatusFactory struct{}

// Deserialize implements serde.Factory.
func (StatusFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := statusFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode status: %v", err)
	}

	return msg, nil
}
