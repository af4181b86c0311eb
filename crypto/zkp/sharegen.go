package zkp

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/share"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// ShareStatement claims that the committee member at Index knows the secret
// share behind PublicShare and, when Commits is set, that PublicShare is the
// evaluation of the committed sharing polynomial at that member.
type ShareStatement struct {
	Index       uint32
	PublicShare kyber.Point
	Commits     []kyber.Point
}

func (st ShareStatement) write(t *transcript) {
	t.appendUint32("index", st.Index)
	t.appendPoints("commits", st.Commits...)
	t.appendPoints("public-share", st.PublicShare)
}

// ShareGeneration proves that a committee member holds a well-formed key
// share. It is a Schnorr proof of knowledge bound to the member index and the
// committee commitments.
type ShareGeneration struct {
	C kyber.Scalar
	Z kyber.Scalar
}

// ProveShareGeneration proves the statement with the secret share x such
// that PublicShare = x*G.
func ProveShareGeneration(stream cipher.Stream, st ShareStatement, x kyber.Scalar) *ShareGeneration {
	w := group.RandomScalar(stream)
	a := group.Suite.Point().Mul(w, nil)

	t := newTranscript(shareGenerationDomain)
	st.write(t)
	t.appendPoints("announcement", a)
	c := t.challenge("c")

	z := group.Suite.Scalar().Add(w, group.Suite.Scalar().Mul(c, x))

	w.Zero()

	return &ShareGeneration{C: c, Z: z}
}

// Verify returns nil if the proof is valid for the statement.
func (p *ShareGeneration) Verify(st ShareStatement) error {
	if p == nil || p.C == nil || p.Z == nil {
		return xerrors.Errorf("empty proof: %w", ErrVerification)
	}

	if len(st.Commits) > 0 {
		poly := share.NewPubPoly(group.Suite, group.Generator(), st.Commits)

		expected := poly.Eval(int(st.Index)).V
		if !expected.Equal(st.PublicShare) {
			return xerrors.Errorf("public share of member %d does not match commitments: %w",
				st.Index, ErrVerification)
		}
	}

	a := group.Suite.Point().Sub(
		group.Suite.Point().Mul(p.Z, nil),
		group.Suite.Point().Mul(p.C, st.PublicShare))

	t := newTranscript(shareGenerationDomain)
	st.write(t)
	t.appendPoints("announcement", a)
	c := t.challenge("c")

	if !c.Equal(p.C) {
		return xerrors.Errorf("challenge mismatch: %w", ErrVerification)
	}

	return nil
}

func (p *ShareGeneration) encode(w *group.Writer) {
	w.Scalar(p.C)
	w.Scalar(p.Z)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *ShareGeneration) MarshalBinary() ([]byte, error) {
	w := group.Writer{}
	p.encode(&w)

	return w.Bytes(), nil
}

func readShareGeneration(r *group.Reader) (*ShareGeneration, error) {
	p, err := readDLEQ(r)
	if err != nil {
		return nil, err
	}

	return &ShareGeneration{C: p.C, Z: p.Z}, nil
}

// DecodeShareGeneration parses a share generation proof.
func DecodeShareGeneration(data []byte) (*ShareGeneration, error) {
	r := group.NewReader(data)

	p, err := readShareGeneration(r)
	if err != nil {
		return nil, xerrors.Errorf("share generation proof: %w", err)
	}

	err = r.Done()
	if err != nil {
		return nil, xerrors.Errorf("share generation proof: %w", err)
	}

	return p, nil
}
