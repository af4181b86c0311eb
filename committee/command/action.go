package command

import (
	"crypto/cipher"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/cli"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// action defines the cli actions of the committee commands. The printer and
// the file function are fields so that tests can replace them.
type action struct {
	printer io.Writer
	stream  cipher.Stream

	saveFile func(path string, force bool, data []byte) error
}

func (a action) dealAction(flags cli.Flags) error {
	ctx, ext, err := NewContext(flags.String("format"))
	if err != nil {
		return err
	}

	scheme, err := committee.ParseScheme(flags.String("scheme"))
	if err != nil {
		return err
	}

	c, secrets, err := a.deal(scheme, flags.Int("members"), flags.Int("threshold"), flags.Bool("dkg"))
	if err != nil {
		return xerrors.Errorf("failed to create committee: %v", err)
	}

	defer func() {
		for _, s := range secrets {
			s.Zeroize()
		}
	}()

	dir := flags.Path("out")

	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return xerrors.Errorf("failed to create directory: %v", err)
	}

	data, err := c.Serialize(ctx)
	if err != nil {
		return err
	}

	err = a.saveFile(filepath.Join(dir, committeeFile+ext), flags.Bool("force"), data)
	if err != nil {
		return xerrors.Errorf("failed to save committee: %v", err)
	}

	for _, s := range secrets {
		data, err := s.Serialize(ctx)
		if err != nil {
			return err
		}

		err = a.saveFile(filepath.Join(dir, memberFile(s.Index(), ext)), flags.Bool("force"), data)
		if err != nil {
			return xerrors.Errorf("failed to save member %d: %v", s.Index(), err)
		}
	}

	fmt.Fprintf(a.printer, "%v written to %s\n", c, dir)
	fmt.Fprintf(a.printer, "election key: %v\n", c.ElectionKey())

	return nil
}

func (a action) deal(scheme committee.Scheme, n, t int, dkg bool) (*committee.Committee, []*committee.MemberSecret, error) {
	switch {
	case scheme == committee.Additive:
		return committee.DealAdditive(a.stream, n)
	case dkg:
		longterms := make([]kyber.Scalar, n)
		for i := range longterms {
			longterms[i] = group.RandomScalar(a.stream)
		}

		return committee.RunDKG(longterms, t)
	default:
		return committee.Deal(a.stream, n, t)
	}
}
