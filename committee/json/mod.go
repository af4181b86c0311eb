// Package json defines the JSON format of the committee key files. The
// definitions are registered for CBOR as well.
package json

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/committee"
	"go.dedis.ch/privote/crypto/group"
	"go.dedis.ch/privote/crypto/zkp"
	"go.dedis.ch/privote/serde"
	"golang.org/x/xerrors"
)

func init() {
	for _, f := range []serde.Format{serde.FormatJSON, serde.FormatCBOR} {
		committee.RegisterCommitteeFormat(f, committeeFormat{})
		committee.RegisterMemberSecretFormat(f, secretFormat{})
	}
}

// CommitteeJSON is the public file of a committee.
type CommitteeJSON struct {
	Scheme    string   `json:"scheme"`
	Threshold int      `json:"threshold"`
	Members   [][]byte `json:"members"`
	Commits   [][]byte `json:"commits,omitempty"`
	Proofs    [][]byte `json:"proofs,omitempty"`
}

// MemberSecretJSON is the private key file of a member.
type MemberSecretJSON struct {
	Index  uint32 `json:"index"`
	Secret []byte `json:"secret"`
}

// committeeFormat is the format engine of a committee.
//
// - implements serde.FormatEngine
type committeeFormat struct{}

// Encode implements serde.FormatEngine.
func (committeeFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	c, ok := msg.(*committee.Committee)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	m := CommitteeJSON{
		Scheme:    c.Scheme().String(),
		Threshold: c.Threshold(),
		Members:   encodePoints(c.Members()),
		Commits:   encodePoints(c.Commits()),
	}

	for _, proof := range c.Proofs() {
		raw, err := zkp.NewShareGenerationProof(proof).MarshalBinary()
		if err != nil {
			return nil, xerrors.Errorf("couldn't marshal proof: %v", err)
		}

		m.Proofs = append(m.Proofs, raw)
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (committeeFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := CommitteeJSON{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal committee: %v", err)
	}

	scheme, err := committee.ParseScheme(m.Scheme)
	if err != nil {
		return nil, xerrors.Errorf("invalid scheme: %v", err)
	}

	members, err := decodePoints(m.Members)
	if err != nil {
		return nil, xerrors.Errorf("invalid member: %v", err)
	}

	commits, err := decodePoints(m.Commits)
	if err != nil {
		return nil, xerrors.Errorf("invalid commit: %v", err)
	}

	c, err := committee.New(scheme, m.Threshold, members, commits)
	if err != nil {
		return nil, xerrors.Errorf("invalid committee: %v", err)
	}

	if len(m.Proofs) == 0 {
		return c, nil
	}

	proofs := make([]*zkp.ShareGeneration, len(m.Proofs))

	for i, raw := range m.Proofs {
		proof, err := zkp.DecodeProof(raw)
		if err != nil {
			return nil, xerrors.Errorf("invalid proof: #%d: %v", i, err)
		}

		if proof.Kind() != zkp.KindShareGeneration {
			return nil, xerrors.Errorf("invalid proof: #%d: unexpected %v proof", i, proof.Kind())
		}

		proofs[i] = proof.ShareGeneration()
	}

	err = c.SetProofs(proofs)
	if err != nil {
		return nil, xerrors.Errorf("invalid proofs: %v", err)
	}

	return c, nil
}

// secretFormat is the format engine of a member secret.
//
// - implements serde.FormatEngine
type secretFormat struct{}

// Encode implements serde.FormatEngine.
func (secretFormat) Encode(ctx serde.Context, msg serde.Message) ([]byte, error) {
	secret, ok := msg.(*committee.MemberSecret)
	if !ok {
		return nil, xerrors.Errorf("unsupported message of type '%T'", msg)
	}

	m := MemberSecretJSON{
		Index:  secret.Index(),
		Secret: group.EncodeScalar(secret.SecretKey().Scalar()),
	}

	data, err := ctx.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return data, nil
}

// Decode implements serde.FormatEngine.
func (secretFormat) Decode(ctx serde.Context, data []byte) (serde.Message, error) {
	m := MemberSecretJSON{}

	err := ctx.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("couldn't unmarshal member secret: %v", err)
	}

	s, err := group.DecodeScalar(m.Secret)
	if err != nil {
		return nil, xerrors.Errorf("invalid secret: %v", err)
	}

	return committee.NewMemberSecret(m.Index, s), nil
}

func encodePoints(points []kyber.Point) [][]byte {
	if len(points) == 0 {
		return nil
	}

	res := make([][]byte, len(points))
	for i, p := range points {
		res[i] = group.EncodePoint(p)
	}

	return res
}

func decodePoints(data [][]byte) ([]kyber.Point, error) {
	if len(data) == 0 {
		return nil, nil
	}

	points := make([]kyber.Point, len(data))

	for i, buf := range data {
		p, err := group.DecodePoint(buf)
		if err != nil {
			return nil, xerrors.Errorf("#%d: %v", i, err)
		}

		points[i] = p
	}

	return points, nil
}
