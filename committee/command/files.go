package command

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/serde"
	"go.dedis.ch/privote/serde/cbor"
	"go.dedis.ch/privote/serde/json"
	"golang.org/x/xerrors"

	// Static registration of the key file formats.
	_ "go.dedis.ch/privote/committee/json"
)

const (
	committeeFile = "committee"
	memberPrefix  = "member-"
)

// NewContext returns the serialization context of the format name and the
// extension of the files it writes.
func NewContext(format string) (serde.Context, string, error) {
	switch serde.Format(strings.ToUpper(format)) {
	case serde.FormatJSON:
		return json.NewIndentContext(), ".json", nil
	case serde.FormatCBOR:
		return cbor.NewContext(), ".cbor", nil
	default:
		return serde.Context{}, "", xerrors.Errorf("unknown format '%s'", format)
	}
}

// SaveFile writes the data to the path with owner-only permissions. It does
// not overwrite an existing file unless forced.
func SaveFile(path string, force bool, data []byte) error {
	if !force && fileExist(path) {
		return xerrors.Errorf("file '%s' already exist, use --force if you "+
			"want to overwrite", path)
	}

	err := os.WriteFile(path, data, 0600)
	if err != nil {
		return xerrors.Errorf("failed to write file: %v", err)
	}

	return nil
}

// LoadCommittee reads the committee file of the directory, and the key files
// of the members found next to it. The share generation proofs of the
// committee are verified and every member key is checked against it.
func LoadCommittee(dir, format string) (*committee.Committee, []*committee.MemberSecret, error) {
	ctx, ext, err := NewContext(format)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, committeeFile+ext))
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to read committee: %v", err)
	}

	c, err := committee.Factory{}.Decode(ctx, data)
	if err != nil {
		return nil, nil, err
	}

	err = c.VerifyMembers()
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to verify committee: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, memberPrefix+"*"+ext))
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to list members: %v", err)
	}

	secrets := make([]*committee.MemberSecret, 0, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, xerrors.Errorf("failed to read member: %v", err)
		}

		secret, err := committee.SecretFactory{}.Decode(ctx, data)
		if err != nil {
			return nil, nil, xerrors.Errorf("%s: %v", filepath.Base(path), err)
		}

		pk, err := c.Member(secret.Index())
		if err != nil {
			return nil, nil, xerrors.Errorf("%s: %v", filepath.Base(path), err)
		}

		if !pk.Equal(secret.Public()) {
			return nil, nil, xerrors.Errorf("%s: key does not match member %d",
				filepath.Base(path), secret.Index())
		}

		secrets = append(secrets, secret)
	}

	sort.Slice(secrets, func(i, j int) bool {
		return secrets[i].Index() < secrets[j].Index()
	})

	return c, secrets, nil
}

func memberFile(index uint32, ext string) string {
	return fmt.Sprintf("%s%d%s", memberPrefix, index, ext)
}

func fileExist(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
