package tally

import "golang.org/x/xerrors"

// State is the lifecycle of the tally of a proposal. States change as
// follow, and never go backward:
//
//	┌────┐      ┌──────┐      ┌──────────┐      ┌─────────┐
//	│Open├─────►│Closed├─────►│Decrypting├─────►│Decrypted│
//	└────┘      └──┬───┘      └──────────┘      └────▲────┘
//	               └─────────────────────────────────┘
//
// A closed tally without any vote goes straight to Decrypted.
type State byte

const (
	// Open accepts votes.
	Open State = iota
	// Closed accepts decryption shares only.
	Closed
	// Decrypting has received some but not enough decryption shares.
	Decrypting
	// Decrypted exposes the result.
	Decrypted
)

func (s State) String() string {
	switch s {
	case Open:
		return "Open"
	case Closed:
		return "Closed"
	case Decrypting:
		return "Decrypting"
	case Decrypted:
		return "Decrypted"
	default:
		return "UNKNOWN"
	}
}

// ParseState returns the state of the name returned by String.
func ParseState(name string) (State, error) {
	for s := Open; s <= Decrypted; s++ {
		if s.String() == name {
			return s, nil
		}
	}

	return 0, xerrors.Errorf("unknown state '%s'", name)
}

// canSwitch returns an error if the transition is not allowed.
func canSwitch(current, next State) error {
	switch next {
	case Open:
		return xerrors.Errorf("open state cannot be set manually")
	case Closed:
		if current != Open {
			return xerrors.Errorf("closed state must switch from open: %s", current)
		}
	case Decrypting:
		if current != Closed {
			return xerrors.Errorf("decrypting state must switch from closed: %s", current)
		}
	case Decrypted:
		if current != Closed && current != Decrypting {
			return xerrors.Errorf("decrypted state must switch from closed or decrypting: %s", current)
		}
	default:
		return xerrors.Errorf("unknown state %d", next)
	}

	return nil
}
