package command

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/privote/cli"
	"go.dedis.ch/privote/committee"
	"golang.org/x/xerrors"
)

func TestDealAction(t *testing.T) {
	dir := t.TempDir()
	out := new(bytes.Buffer)

	a := action{printer: out, saveFile: SaveFile}

	flags := cli.FlagSet{
		"members":   5,
		"threshold": 3,
		"scheme":    "shamir",
		"out":       dir,
		"format":    "json",
	}

	err := a.dealAction(flags)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Committee[shamir 3-of-5] written to "+dir)

	c, secrets, err := LoadCommittee(dir, "JSON")
	require.NoError(t, err)
	require.Equal(t, committee.Shamir, c.Scheme())
	require.Len(t, secrets, 5)

	for i, s := range secrets {
		require.Equal(t, uint32(i), s.Index())
	}

	info, err := os.Stat(filepath.Join(dir, "member-0.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Existing files are kept unless forced.
	err = a.dealAction(flags)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exist, use --force")

	flags["force"] = true
	require.NoError(t, a.dealAction(flags))
}

func TestDealAction_Variants(t *testing.T) {
	a := action{printer: io.Discard, saveFile: SaveFile}

	dir := t.TempDir()

	err := a.dealAction(cli.FlagSet{
		"members": 3,
		"scheme":  "additive",
		"out":     dir,
		"format":  "CBOR",
	})
	require.NoError(t, err)

	c, secrets, err := LoadCommittee(dir, "CBOR")
	require.NoError(t, err)
	require.Equal(t, committee.Additive, c.Scheme())
	require.Len(t, secrets, 3)

	dir = t.TempDir()

	err = a.dealAction(cli.FlagSet{
		"members":   4,
		"threshold": 3,
		"scheme":    "shamir",
		"dkg":       true,
		"out":       dir,
		"format":    "JSON",
	})
	require.NoError(t, err)

	c, secrets, err = LoadCommittee(dir, "JSON")
	require.NoError(t, err)
	require.Equal(t, 3, c.Threshold())
	require.NoError(t, c.VerifyMember(2, secrets[2].ProveShare(nil, c)))
}

func TestDealAction_Failures(t *testing.T) {
	a := action{printer: io.Discard, saveFile: badSaveFile}

	err := a.dealAction(cli.FlagSet{"format": "XML"})
	require.EqualError(t, err, "unknown format 'XML'")

	err = a.dealAction(cli.FlagSet{"format": "JSON", "scheme": "majority"})
	require.EqualError(t, err, "unknown scheme 'majority'")

	err = a.dealAction(cli.FlagSet{"format": "JSON", "scheme": "shamir", "members": 2, "threshold": 3})
	require.EqualError(t, err,
		"failed to create committee: invalid threshold 3 for 2 members")

	err = a.dealAction(cli.FlagSet{
		"format":    "JSON",
		"scheme":    "shamir",
		"members":   2,
		"threshold": 1,
		"out":       t.TempDir(),
	})
	require.EqualError(t, err, "failed to save committee: oops")
}

func TestLoadCommittee_Failures(t *testing.T) {
	_, _, err := LoadCommittee(t.TempDir(), "XML")
	require.EqualError(t, err, "unknown format 'XML'")

	_, _, err = LoadCommittee(t.TempDir(), "JSON")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read committee: ")

	a := action{printer: io.Discard, saveFile: SaveFile}

	first := t.TempDir()
	second := t.TempDir()

	for _, dir := range []string{first, second} {
		err = a.dealAction(cli.FlagSet{
			"format":    "JSON",
			"scheme":    "shamir",
			"members":   2,
			"threshold": 1,
			"out":       dir,
		})
		require.NoError(t, err)
	}

	// A committee file without the proofs of its members is rejected.
	ctx, _, err := NewContext("JSON")
	require.NoError(t, err)

	c, _, err := LoadCommittee(second, "JSON")
	require.NoError(t, err)

	unproven, err := committee.New(c.Scheme(), c.Threshold(), c.Members(), c.Commits())
	require.NoError(t, err)

	data, err := unproven.Serialize(ctx)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(second, "committee.json"), data, 0600))

	_, _, err = LoadCommittee(second, "JSON")
	require.EqualError(t, err, "failed to verify committee: "+committee.ErrMissingProofs.Error())

	// A member key of another committee is rejected.
	data, err = os.ReadFile(filepath.Join(second, "member-1.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(first, "member-1.json"), data, 0600))

	_, _, err = LoadCommittee(first, "JSON")
	require.EqualError(t, err, "member-1.json: key does not match member 1")

	require.NoError(t, os.WriteFile(filepath.Join(first, "member-1.json"), []byte("{"), 0600))

	_, _, err = LoadCommittee(first, "JSON")
	require.Error(t, err)
	require.Contains(t, err.Error(), "member-1.json: failed to decode member secret: ")
}

func TestNewContext(t *testing.T) {
	_, ext, err := NewContext("json")
	require.NoError(t, err)
	require.Equal(t, ".json", ext)

	_, ext, err = NewContext("Cbor")
	require.NoError(t, err)
	require.Equal(t, ".cbor", ext)
}

func TestInitializer_SetCommands(t *testing.T) {
	provider := &fakeProvider{}

	Initializer{}.SetCommands(provider)
	require.Equal(t, []string{"committee", "deal"}, provider.names)
}

// -----------------------------------------------------------------------------
// Utility functions

func badSaveFile(string, bool, []byte) error {
	return xerrors.New("oops")
}

type fakeProvider struct {
	names []string
}

func (p *fakeProvider) SetCommand(name string) cli.CommandBuilder {
	p.names = append(p.names, name)
	return fakeCommand{provider: p}
}

type fakeCommand struct {
	provider *fakeProvider
}

func (c fakeCommand) SetDescription(string) {}

func (c fakeCommand) SetFlags(...cli.Flag) {}

func (c fakeCommand) SetAction(cli.Action) {}

func (c fakeCommand) SetSubCommand(name string) cli.CommandBuilder {
	return c.provider.SetCommand(name)
}
