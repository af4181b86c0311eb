// Package json defines the JSON format of the vote plan statuses. The
// definitions are registered for CBOR as well, which reads the json tags.
package json

import (
	"encoding/hex"

	"go.dedis.ch/privote/serde"
	"go.dedis.ch/privote/tally"
	"go.dedis.ch/privote/vote"
	"go.dedis.ch/privote/voteplan"
	"golang.org/x/xerrors"
)

func init() {
	voteplan.RegisterStatusFormat(serde.FormatJSON, statusFormat{})
	voteplan.RegisterStatusFormat(serde.FormatCBOR, statusFormat{})
}

// ProposalStatusJSON is the JSON message of the status of a proposal.
type ProposalStatusJSON struct {
	Index       int      `json:"index"`
	ExternalID  string   `json:"external_id,omitempty"`
	Options     int      `json:"options"`
	State       string   `json:"state"`
	TotalWeight uint64   `json:"total_weight"`
	Shares      int      `json:"shares"`
	Result      []uint64 `json:"result,omitempty"`
}

// PlanStatusJSON is the JSON message of the status of a plan.
type PlanStatusJSON struct {
	ID          string               `json:"id"`
	Fingerprint string               `json:"fingerprint"`
	Voters      int                  `json:"voters"`
	Proposals   []ProposalStatusJSON `json:"proposals"`
}

// statusFormat is the format engine of a plan status.
//
// - implements serde.FormatEngine
type statusFormat struct{}

// Encode implements serde.FormatEngine.
func (statusFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	status, ok := msg.(voteplan.PlanStatus)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	m := PlanStatusJSON{
		ID:          status.ID,
		Fingerprint: hex.EncodeToString(status.Fingerprint[:]),
		Voters:      status.Voters,
		Proposals:   make([]ProposalStatusJSON, len(status.Proposals)),
	}

	for i, p := range status.Proposals {
		m.Proposals[i] = ProposalStatusJSON{
			Index:       p.Index,
			ExternalID:  p.ExternalID,
			Options:     p.Options,
			State:       p.State.String(),
			TotalWeight: p.TotalWeight,
			Shares:      p.Shares,
			Result:      p.Result,
		}
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (statusFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := PlanStatusJSON{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal status: %v", err)
	}

	fp, err := hex.DecodeString(m.Fingerprint)
	if err != nil || len(fp) != vote.FingerprintLen {
		return nil, xerrors.Errorf("invalid fingerprint '%s'", m.Fingerprint)
	}

	status := voteplan.PlanStatus{
		ID:        m.ID,
		Voters:    m.Voters,
		Proposals: make([]voteplan.ProposalStatus, len(m.Proposals)),
	}

	copy(status.Fingerprint[:], fp)

	for i, p := range m.Proposals {
		state, err := tally.ParseState(p.State)
		if err != nil {
			return nil, xerrors.Errorf("proposal %d: %v", i, err)
		}

		status.Proposals[i] = voteplan.ProposalStatus{
			Index:       p.Index,
			ExternalID:  p.ExternalID,
			Options:     p.Options,
			State:       state,
			TotalWeight: p.TotalWeight,
			Shares:      p.Shares,
			Result:      p.Result,
		}
	}

	return status, nil
}
