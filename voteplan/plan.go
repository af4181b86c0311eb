package voteplan

import (
	"os"

	"github.com/rs/xid"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/commitment"
	"go.dedis.ch/privote/vote"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Proposal is an entry of a vote plan.
type Proposal struct {
	// ExternalID identifies the proposal outside of the plan.
	ExternalID string `yaml:"id"`

	// Options is the number of choices of the proposal.
	Options int `yaml:"options"`
}

// Plan is the list of proposals voted together for the same committee.
//
// An example of YAML description:
//
//	id: fund-10
//	proposals:
//	  - id: improve-docs
//	    options: 3
//	  - id: new-logo
//	    options: 2
type Plan struct {
	ID        string     `yaml:"id"`
	Proposals []Proposal `yaml:"proposals"`
}

// ParsePlan reads the YAML description of a plan. A plan without an
// identifier gets a random one.
func ParsePlan(data []byte) (Plan, error) {
	var plan Plan

	err := yaml.UnmarshalStrict(data, &plan)
	if err != nil {
		return Plan{}, xerrors.Errorf("failed to parse plan: %v", err)
	}

	if plan.ID == "" {
		plan.ID = xid.New().String()
	}

	err = plan.Validate()
	if err != nil {
		return Plan{}, xerrors.Errorf("invalid plan: %v", err)
	}

	return plan, nil
}

// LoadPlan reads the YAML description of a plan from a file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, xerrors.Errorf("failed to read plan: %v", err)
	}

	return ParsePlan(data)
}

// Validate returns an error if the plan cannot be voted.
func (p Plan) Validate() error {
	if p.ID == "" {
		return xerrors.New("missing identifier")
	}

	if len(p.Proposals) == 0 {
		return xerrors.New("no proposal")
	}

	seen := make(map[string]struct{}, len(p.Proposals))

	for i, proposal := range p.Proposals {
		if proposal.Options < 1 || proposal.Options > vote.MaxOptions {
			return xerrors.Errorf("proposal %d: invalid number of options %d", i, proposal.Options)
		}

		if proposal.ExternalID == "" {
			continue
		}

		_, found := seen[proposal.ExternalID]
		if found {
			return xerrors.Errorf("proposal %d: duplicate id '%s'", i, proposal.ExternalID)
		}

		seen[proposal.ExternalID] = struct{}{}
	}

	return nil
}

// Election returns the parameters the ballots of the plan are encrypted and
// proved with: the key of the committee and a commitment key derived from the
// identifier of the plan.
func (p Plan) Election(c *committee.Committee) vote.Election {
	return vote.NewElection(c.ElectionKey(), commitment.KeyFromSeed([]byte(p.ID)))
}
