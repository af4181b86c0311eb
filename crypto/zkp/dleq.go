package zkp

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// DLEQLen is the length in bytes of an encoded DLEQ proof.
const DLEQLen = 2 * group.ScalarLen

// DLEQStatement claims that log_G1(H1) == log_G2(H2).
type DLEQStatement struct {
	G1 kyber.Point
	H1 kyber.Point
	G2 kyber.Point
	H2 kyber.Point
}

func (st DLEQStatement) write(t *transcript) {
	t.appendPoints("statement", st.G1, st.H1, st.G2, st.H2)
}

// DLEQ is a Chaum-Pedersen proof of equality of discrete logarithms, in its
// compact (challenge, response) form.
type DLEQ struct {
	C kyber.Scalar
	Z kyber.Scalar
}

// ProveDLEQ proves the statement with the witness x such that H1 = x*G1 and
// H2 = x*G2.
func ProveDLEQ(stream cipher.Stream, st DLEQStatement, x kyber.Scalar) *DLEQ {
	return proveDLEQ(dleqDomain, stream, st, x)
}

// Verify returns nil when the proof is valid for the statement.
func (p *DLEQ) Verify(st DLEQStatement) error {
	return verifyDLEQ(dleqDomain, p, st)
}

func proveDLEQ(domain string, stream cipher.Stream, st DLEQStatement, x kyber.Scalar) *DLEQ {
	w := group.RandomScalar(stream)

	a1 := group.Suite.Point().Mul(w, st.G1)
	a2 := group.Suite.Point().Mul(w, st.G2)

	t := newTranscript(domain)
	st.write(t)
	t.appendPoints("announcement", a1, a2)
	c := t.challenge("c")

	z := group.Suite.Scalar().Add(w, group.Suite.Scalar().Mul(c, x))

	w.Zero()

	return &DLEQ{C: c, Z: z}
}

func verifyDLEQ(domain string, p *DLEQ, st DLEQStatement) error {
	if p == nil || p.C == nil || p.Z == nil {
		return xerrors.Errorf("empty proof: %w", ErrVerification)
	}

	// A = z*G - c*H
	a1 := group.Suite.Point().Sub(
		group.Suite.Point().Mul(p.Z, st.G1),
		group.Suite.Point().Mul(p.C, st.H1))

	a2 := group.Suite.Point().Sub(
		group.Suite.Point().Mul(p.Z, st.G2),
		group.Suite.Point().Mul(p.C, st.H2))

	t := newTranscript(domain)
	st.write(t)
	t.appendPoints("announcement", a1, a2)
	c := t.challenge("c")

	if !c.Equal(p.C) {
		return xerrors.Errorf("challenge mismatch: %w", ErrVerification)
	}

	return nil
}

func (p *DLEQ) encode(w *group.Writer) {
	w.Scalar(p.C)
	w.Scalar(p.Z)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *DLEQ) MarshalBinary() ([]byte, error) {
	w := group.Writer{}
	p.encode(&w)

	return w.Bytes(), nil
}

func readDLEQ(r *group.Reader) (*DLEQ, error) {
	c, err := r.Scalar()
	if err != nil {
		return nil, xerrors.Errorf("challenge: %w", err)
	}

	z, err := r.Scalar()
	if err != nil {
		return nil, xerrors.Errorf("response: %w", err)
	}

	return &DLEQ{C: c, Z: z}, nil
}

// DecodeDLEQ parses a DLEQ proof.
func DecodeDLEQ(data []byte) (*DLEQ, error) {
	r := group.NewReader(data)

	p, err := readDLEQ(r)
	if err != nil {
		return nil, xerrors.Errorf("dleq: %w", err)
	}

	err = r.Done()
	if err != nil {
		return nil, xerrors.Errorf("dleq: %w", err)
	}

	return p, nil
}
