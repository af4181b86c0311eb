package command

import (
	"context"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.dedis.ch/privote"
	"go.dedis.ch/privote/cli"
	"go.dedis.ch/privote/committee"
	ccommand "go.dedis.ch/privote/committee/command"
	"go.dedis.ch/privote/internal/kv"
	"go.dedis.ch/privote/tally"
	"go.dedis.ch/privote/vote"
	"go.dedis.ch/privote/voteplan"
	"golang.org/x/xerrors"

	// Static registration of the status formats.
	_ "go.dedis.ch/privote/voteplan/json"
)

// action defines the cli actions of the vote plan commands.
type action struct {
	printer io.Writer
	stream  cipher.Stream
}

func (a action) simulateAction(flags cli.Flags) error {
	err := requirePaths(flags, "committee", "db")
	if err != nil {
		return err
	}

	plan, err := voteplan.LoadPlan(flags.Path("plan"))
	if err != nil {
		return err
	}

	c, secrets, err := ccommand.LoadCommittee(flags.Path("committee"), flags.String("format"))
	if err != nil {
		return xerrors.Errorf("failed to load committee: %v", err)
	}

	defer func() {
		for _, s := range secrets {
			s.Zeroize()
		}
	}()

	m, err := voteplan.NewManager(plan, c)
	if err != nil {
		return err
	}

	casts := make([]voteplan.VoteCast, 0, len(flags.StringSlice("ballot")))

	for _, arg := range flags.StringSlice("ballot") {
		cast, err := a.makeCast(m, arg)
		if err != nil {
			return xerrors.Errorf("invalid ballot '%s': %v", arg, err)
		}

		casts = append(casts, cast)
	}

	errs := m.VoteBatch(context.Background(), casts)
	for i, err := range errs {
		if err != nil {
			privote.Logger.Warn().Err(err).Str("ballot", flags.StringSlice("ballot")[i]).
				Msg("ballot ignored")
		}
	}

	err = m.Close()
	if err != nil {
		return xerrors.Errorf("failed to close: %v", err)
	}

	decryptors := secrets
	if n := flags.Int("decryptors"); n > 0 && n < len(secrets) {
		decryptors = secrets[:n]
	}

	err = a.decrypt(m, decryptors)
	if err != nil {
		return err
	}

	db, err := kv.New(flags.Path("db"))
	if err != nil {
		return err
	}

	defer db.Close()

	err = m.Save(db)
	if err != nil {
		return err
	}

	return a.printStatus(m.Status(), flags.String("format"))
}

func (a action) statusAction(flags cli.Flags) error {
	err := requirePaths(flags, "committee", "db")
	if err != nil {
		return err
	}

	c, _, err := ccommand.LoadCommittee(flags.Path("committee"), flags.String("format"))
	if err != nil {
		return xerrors.Errorf("failed to load committee: %v", err)
	}

	db, err := kv.New(flags.Path("db"))
	if err != nil {
		return err
	}

	defer db.Close()

	m, err := voteplan.Restore(db, flags.String("id"), c)
	if err != nil {
		return err
	}

	return a.printStatus(m.Status(), flags.String("format"))
}

func (a action) listAction(flags cli.Flags) error {
	err := requirePaths(flags, "db")
	if err != nil {
		return err
	}

	db, err := kv.New(flags.Path("db"))
	if err != nil {
		return err
	}

	defer db.Close()

	ids, err := voteplan.List(db, flags.String("prefix"))
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Fprintln(a.printer, id)
	}

	return nil
}

func (a action) deleteAction(flags cli.Flags) error {
	err := requirePaths(flags, "db")
	if err != nil {
		return err
	}

	db, err := kv.New(flags.Path("db"))
	if err != nil {
		return err
	}

	defer db.Close()

	return voteplan.Delete(db, flags.String("id"))
}

func (a action) printStatus(status voteplan.PlanStatus, format string) error {
	ctx, _, err := ccommand.NewContext(format)
	if err != nil {
		return err
	}

	data, err := status.Serialize(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.printer, string(data))

	return nil
}

// requirePaths returns an error if one of the path flags is set neither on
// the command line nor in the environment.
func requirePaths(flags cli.Flags, names ...string) error {
	for _, name := range names {
		if flags.Path(name) == "" {
			return xerrors.Errorf("missing path '%s'", name)
		}
	}

	return nil
}

// decrypt adds the shares of the members until every proposal is decrypted.
func (a action) decrypt(m *voteplan.Manager, members []*committee.MemberSecret) error {
	for _, member := range members {
		for i := range m.Plan().Proposals {
			et, err := m.EncryptedTally(i)
			if err != nil {
				return err
			}

			err = m.AddDecryptionShare(i, tally.PartialDecrypt(a.stream, et, member))
			if err != nil && !errors.Is(err, tally.ErrAlreadyDecrypted) {
				return xerrors.Errorf("member %d: %v", member.Index(), err)
			}
		}
	}

	return nil
}

// makeCast encrypts the ballot described as voter:proposal:choice[:weight].
func (a action) makeCast(m *voteplan.Manager, arg string) (voteplan.VoteCast, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return voteplan.VoteCast{}, xerrors.New("expected voter:proposal:choice[:weight]")
	}

	proposal, err := strconv.Atoi(parts[1])
	if err != nil {
		return voteplan.VoteCast{}, xerrors.Errorf("proposal: %v", err)
	}

	if proposal < 0 || proposal >= len(m.Plan().Proposals) {
		return voteplan.VoteCast{}, xerrors.Errorf("proposal %d: %w", proposal, voteplan.ErrInvalidProposal)
	}

	choice, err := strconv.Atoi(parts[2])
	if err != nil {
		return voteplan.VoteCast{}, xerrors.Errorf("choice: %v", err)
	}

	var weight uint64 = 1
	if len(parts) == 4 {
		weight, err = strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			return voteplan.VoteCast{}, xerrors.Errorf("weight: %v", err)
		}
	}

	uv, err := vote.NewUnitVector(m.Plan().Proposals[proposal].Options, choice)
	if err != nil {
		return voteplan.VoteCast{}, err
	}

	ev, proof := vote.Encrypt(a.stream, m.Election(), uv)

	cast := voteplan.VoteCast{
		Voter:    parts[0],
		Proposal: proposal,
		Vote:     ev,
		Proof:    proof,
		Weight:   weight,
	}

	return cast, nil
}
