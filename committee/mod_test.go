package committee

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"go.dedis.ch/privote/crypto/zkp"
)

func TestDeal(t *testing.T) {
	c, secrets, err := Deal(nil, 5, 3)
	require.NoError(t, err)
	require.Len(t, secrets, 5)
	require.Equal(t, Shamir, c.Scheme())
	require.Equal(t, 3, c.Threshold())
	require.Equal(t, 3, c.Quorum())
	require.Equal(t, 5, c.Size())
	require.Len(t, c.Commits(), 3)
	require.Equal(t, "Committee[shamir 3-of-5]", c.String())

	for i, s := range secrets {
		require.Equal(t, uint32(i), s.Index())

		pk, err := c.Member(s.Index())
		require.NoError(t, err)
		require.True(t, pk.Equal(s.Public()))

		proof := s.ProveShare(nil, c)
		require.NoError(t, c.VerifyMember(s.Index(), proof))

		// The proof of a member does not hold for another one.
		other := (s.Index() + 1) % 5
		require.ErrorIs(t, c.VerifyMember(other, proof), zkp.ErrVerification)
	}

	_, err = c.Member(5)
	require.ErrorIs(t, err, ErrUnknownMember)

	require.ErrorIs(t, c.VerifyMember(9, nil), ErrUnknownMember)

	_, _, err = Deal(nil, 2, 3)
	require.EqualError(t, err, "invalid threshold 3 for 2 members")
}

func TestCommittee_CombineShamir(t *testing.T) {
	c, secrets, err := Deal(nil, 3, 2)
	require.NoError(t, err)

	kp := c.ElectionKey()
	ct, _ := kp.EncryptRandom(nil, group.ScalarFromUint64(7))

	partials := make(map[uint32]kyber.Point)
	for _, s := range secrets {
		partials[s.Index()] = group.Suite.Point().Mul(s.SecretKey().Scalar(), ct.E1)
	}

	expected := group.Suite.Point().Sub(ct.E2, group.Suite.Point().Mul(group.ScalarFromUint64(7), nil))

	// Any pair of members decrypts.
	pairs := [][2]uint32{{0, 1}, {0, 2}, {1, 2}}
	for _, pair := range pairs {
		subset := map[uint32]kyber.Point{
			pair[0]: partials[pair[0]],
			pair[1]: partials[pair[1]],
		}

		combined, err := c.Combine(subset)
		require.NoError(t, err)
		require.True(t, combined.Equal(expected), "pair %v", pair)
	}

	combined, err := c.Combine(partials)
	require.NoError(t, err)
	require.True(t, combined.Equal(expected))

	_, err = c.Combine(map[uint32]kyber.Point{0: partials[0]})
	require.ErrorIs(t, err, ErrNotEnoughShares)

	_, err = c.Combine(map[uint32]kyber.Point{0: partials[0], 3: partials[1]})
	require.ErrorIs(t, err, ErrUnknownMember)
}

func TestCommittee_CombineAdditive(t *testing.T) {
	c, secrets, err := DealAdditive(nil, 3)
	require.NoError(t, err)
	require.Equal(t, Additive, c.Scheme())
	require.Equal(t, 3, c.Quorum())
	require.Empty(t, c.Commits())

	ct, _ := c.ElectionKey().EncryptRandom(nil, group.One())

	partials := make(map[uint32]kyber.Point)
	for _, s := range secrets {
		partials[s.Index()] = group.Suite.Point().Mul(s.SecretKey().Scalar(), ct.E1)

		require.NoError(t, c.VerifyMember(s.Index(), s.ProveShare(nil, c)))
	}

	combined, err := c.Combine(partials)
	require.NoError(t, err)
	require.True(t, group.Suite.Point().Sub(ct.E2, combined).Equal(group.Generator()))

	delete(partials, 1)

	_, err = c.Combine(partials)
	require.ErrorIs(t, err, ErrNotEnoughShares)
}

func TestNew_Invalid(t *testing.T) {
	p := group.Generator()

	_, err := New(Shamir, 1, nil, nil)
	require.EqualError(t, err, "empty committee")

	_, err = New(Shamir, 0, []kyber.Point{p}, nil)
	require.EqualError(t, err, "invalid threshold 0 for 1 members")

	_, err = New(Shamir, 1, []kyber.Point{p}, nil)
	require.EqualError(t, err, "expected 1 commits but got 0")

	_, err = New(Additive, 1, []kyber.Point{p, p}, nil)
	require.EqualError(t, err, "additive committee requires threshold 2 but got 1")

	_, err = New(Additive, 1, []kyber.Point{p}, []kyber.Point{p})
	require.EqualError(t, err, "additive committee has no commits")

	_, err = New(Scheme(9), 1, []kyber.Point{p}, nil)
	require.EqualError(t, err, "unknown scheme 9")
}

func TestNew_RogueMember(t *testing.T) {
	c, _, err := Deal(nil, 3, 2)
	require.NoError(t, err)

	members := append([]kyber.Point{}, c.Members()...)
	members[1] = elgamal.Generate(nil).Public.Point()

	_, err = New(Shamir, 2, members, c.Commits())
	require.EqualError(t, err, "member 1 does not match the commits")

	_, err = New(Shamir, 2, c.Members(), c.Commits())
	require.NoError(t, err)
}

func TestCommittee_VerifyMembers(t *testing.T) {
	for _, deal := range []func() (*Committee, []*MemberSecret, error){
		func() (*Committee, []*MemberSecret, error) { return Deal(nil, 3, 2) },
		func() (*Committee, []*MemberSecret, error) { return DealAdditive(nil, 3) },
	} {
		c, _, err := deal()
		require.NoError(t, err)
		require.Len(t, c.Proofs(), 3)
		require.NoError(t, c.VerifyMembers())

		proofs := c.Proofs()

		err = c.SetProofs(proofs[:2])
		require.EqualError(t, err, "expected 3 proofs but got 2")

		swapped := []*zkp.ShareGeneration{proofs[1], proofs[0], proofs[2]}
		require.NoError(t, c.SetProofs(swapped))

		err = c.VerifyMembers()
		require.ErrorIs(t, err, zkp.ErrVerification)
		require.Regexp(t, "^member 0: ", err.Error())
	}

	c, err := New(Additive, 1, []kyber.Point{group.Generator()}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, c.VerifyMembers(), ErrMissingProofs)
}

func TestScheme(t *testing.T) {
	for _, s := range []Scheme{Shamir, Additive} {
		parsed, err := ParseScheme(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	_, err := ParseScheme("majority")
	require.EqualError(t, err, "unknown scheme 'majority'")
	require.Equal(t, "unknown", Scheme(0).String())
}

func TestMemberSecret_Zeroize(t *testing.T) {
	m := NewMemberSecret(0, group.RandomScalar(nil))
	m.Zeroize()

	require.True(t, m.SecretKey().Scalar().Equal(group.Zero()))

	var empty *MemberSecret
	empty.Zeroize()
}

func TestRunDKG(t *testing.T) {
	longterms := make([]kyber.Scalar, 4)
	for i := range longterms {
		longterms[i] = group.RandomScalar(nil)
	}

	c, secrets, err := RunDKG(longterms, 3)
	require.NoError(t, err)
	require.Equal(t, 3, c.Quorum())
	require.Len(t, secrets, 4)
	require.NoError(t, c.VerifyMembers())

	for _, s := range secrets {
		require.NoError(t, c.VerifyMember(s.Index(), s.ProveShare(nil, c)))
	}

	// Three members decrypt a ciphertext under the distributed key.
	ct, _ := c.ElectionKey().EncryptRandom(nil, group.ScalarFromUint64(3))

	partials := map[uint32]kyber.Point{}
	for _, s := range secrets[1:] {
		partials[s.Index()] = group.Suite.Point().Mul(s.SecretKey().Scalar(), ct.E1)
	}

	combined, err := c.Combine(partials)
	require.NoError(t, err)

	m, err := elgamal.NewTable(10).Log(group.Suite.Point().Sub(ct.E2, combined))
	require.NoError(t, err)
	require.Equal(t, uint64(3), m)

	_, _, err = RunDKG(longterms, 5)
	require.EqualError(t, err, "invalid threshold 5 for 4 members")
}
