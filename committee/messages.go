package committee

import (
	"go.dedis.ch/privote/serde"
	"go.dedis.ch/privote/serde/registry"
	"golang.org/x/xerrors"
)

var (
	committeeFormats = registry.NewSimpleRegistry()
	secretFormats    = registry.NewSimpleRegistry()
)

// RegisterCommitteeFormat registers the engine for the provided format.
func RegisterCommitteeFormat(f serde.Format, e serde.FormatEngine) {
	committeeFormats.Register(f, e)
}

// RegisterMemberSecretFormat registers the engine for the provided format.
func RegisterMemberSecretFormat(f serde.Format, e serde.FormatEngine) {
	secretFormats.Register(f, e)
}

// Serialize implements serde.Message. It returns the public file of the
// committee.
func (c *Committee) Serialize(ctx serde.Context) ([]byte, error) {
	format := committeeFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, c)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode committee: %v", err)
	}

	return data, nil
}

// Serialize implements serde.Message. It returns the private key file of the
// member.
func (m *MemberSecret) Serialize(ctx serde.Context) ([]byte, error) {
	format := secretFormats.Get(ctx.GetFormat())

	data, err := format.Encode(ctx, m)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode member secret: %v", err)
	}

	return data, nil
}

// Factory is the factory of committees.
//
// - implements serde.Factory
type Factory struct{}

// Deserialize implements serde.Factory.
func (Factory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := committeeFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode committee: %v", err)
	}

	return msg, nil
}

// Decode returns the committee of the data.
func (f Factory) Decode(ctx serde.Context, data []byte) (*Committee, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return nil, err
	}

	c, ok := msg.(*Committee)
	if !ok {
		return nil, xerrors.Errorf("invalid committee of type '%T'", msg)
	}

	return c, nil
}

// SecretFactory is the factory of member secrets.
//
// - implements serde.Factory
type SecretFactory struct{}

// Deserialize implements serde.Factory.
func (SecretFactory) Deserialize(ctx serde.Context, data []byte) (serde.Message, error) {
	format := secretFormats.Get(ctx.GetFormat())

	msg, err := format.Decode(ctx, data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode member secret: %v", err)
	}

	return msg, nil
}

// Decode returns the member secret of the data.
func (f SecretFactory) Decode(ctx serde.Context, data []byte) (*MemberSecret, error) {
	msg, err := f.Deserialize(ctx, data)
	if err != nil {
		return nil, err
	}

	m, ok := msg.(*MemberSecret)
	if !ok {
		return nil, xerrors.Errorf("invalid member secret of type '%T'", msg)
	}

	return m, nil
}
