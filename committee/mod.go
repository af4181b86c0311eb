// Package committee implements the key material of the committee that
// decrypts the tallies of a vote plan.
//
// Two sharing schemes are supported. With Shamir, the election secret is
// shared with a polynomial of degree t-1 and any t members can decrypt; the
// public polynomial commitments let anyone check the public share of a
// member. With Additive, the election secret is the sum of the member
// secrets and every member must take part.
package committee

import (
	"crypto/cipher"
	"fmt"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/share"
	"go.dedis.ch/privote"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"go.dedis.ch/privote/crypto/zkp"
	"golang.org/x/xerrors"
)

var (
	// ErrNotEnoughShares is returned when a combination lacks shares.
	ErrNotEnoughShares = xerrors.New("not enough shares")

	// ErrUnknownMember is returned for an index outside the committee.
	ErrUnknownMember = xerrors.New("unknown committee member")

	// ErrMissingProofs is returned when the members of a committee have not
	// proven their share generation.
	ErrMissingProofs = xerrors.New("missing share generation proofs")
)

// Scheme is the secret sharing scheme of a committee.
type Scheme byte

const (
	// Shamir is a t-of-n threshold sharing.
	Shamir Scheme = iota + 1
	// Additive is an n-of-n sharing.
	Additive
)

func (s Scheme) String() string {
	switch s {
	case Shamir:
		return "shamir"
	case Additive:
		return "additive"
	default:
		return "unknown"
	}
}

// ParseScheme returns the scheme of the name.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "shamir":
		return Shamir, nil
	case "additive":
		return Additive, nil
	default:
		return 0, xerrors.Errorf("unknown scheme '%s'", name)
	}
}

// Committee is the public view of a decryption committee.
type Committee struct {
	scheme    Scheme
	threshold int
	members   []kyber.Point
	commits   []kyber.Point
	proofs    []*zkp.ShareGeneration
	combiner  Combiner
}

// New returns a committee after checking the parameters are consistent with
// the scheme. The commits are the public polynomial of a Shamir sharing and
// must be empty for an additive one.
func New(scheme Scheme, threshold int, members, commits []kyber.Point) (*Committee, error) {
	n := len(members)
	if n == 0 {
		return nil, xerrors.New("empty committee")
	}

	c := &Committee{
		scheme:    scheme,
		threshold: threshold,
		members:   members,
		commits:   commits,
	}

	switch scheme {
	case Shamir:
		if threshold < 1 || threshold > n {
			return nil, xerrors.Errorf("invalid threshold %d for %d members", threshold, n)
		}

		if len(commits) != threshold {
			return nil, xerrors.Errorf("expected %d commits but got %d", threshold, len(commits))
		}

		poly := share.NewPubPoly(group.Suite, group.Generator(), commits)

		for i, member := range members {
			if !poly.Eval(i).V.Equal(member) {
				return nil, xerrors.Errorf("member %d does not match the commits", i)
			}
		}

		c.combiner = LagrangeCombiner{}
	case Additive:
		if threshold != n {
			return nil, xerrors.Errorf("additive committee requires threshold %d but got %d",
				n, threshold)
		}

		if len(commits) != 0 {
			return nil, xerrors.New("additive committee has no commits")
		}

		c.combiner = SumCombiner{}
	default:
		return nil, xerrors.Errorf("unknown scheme %d", scheme)
	}

	return c, nil
}

// Scheme returns the sharing scheme.
func (c *Committee) Scheme() Scheme {
	return c.scheme
}

// Threshold returns the number of members needed to decrypt.
func (c *Committee) Threshold() int {
	return c.threshold
}

// Size returns the number of members.
func (c *Committee) Size() int {
	return len(c.members)
}

// Members returns the public shares of the members.
func (c *Committee) Members() []kyber.Point {
	return c.members
}

// Commits returns the public polynomial of a Shamir committee.
func (c *Committee) Commits() []kyber.Point {
	return c.commits
}

// Member returns the public share of the member as an ElGamal key.
func (c *Committee) Member(index uint32) (elgamal.PublicKey, error) {
	if int(index) >= len(c.members) {
		return elgamal.PublicKey{}, xerrors.Errorf("index %d: %w", index, ErrUnknownMember)
	}

	return elgamal.NewPublicKey(c.members[index]), nil
}

// ElectionKey returns the public key ballots are encrypted with.
func (c *Committee) ElectionKey() elgamal.PublicKey {
	if c.scheme == Shamir {
		return elgamal.NewPublicKey(c.commits[0])
	}

	return elgamal.NewPublicKey(group.Sum(c.members...))
}

// Combiner returns the combination rule of the scheme.
func (c *Committee) Combiner() Combiner {
	return c.combiner
}

// Quorum returns the number of member shares needed to decrypt.
func (c *Committee) Quorum() int {
	return c.combiner.Quorum(c.threshold, len(c.members))
}

// Combine returns the committee decryption share from the member shares
// indexed by member.
func (c *Committee) Combine(partials map[uint32]kyber.Point) (kyber.Point, error) {
	shares := make([]*share.PubShare, 0, len(partials))

	for index, p := range partials {
		if int(index) >= len(c.members) {
			return nil, xerrors.Errorf("index %d: %w", index, ErrUnknownMember)
		}

		shares = append(shares, &share.PubShare{I: int(index), V: p})
	}

	return c.combiner.Combine(shares, c.threshold, len(c.members))
}

// VerifyMember checks the proof that the member holds the secret share of
// its public share.
func (c *Committee) VerifyMember(index uint32, proof *zkp.ShareGeneration) error {
	pk, err := c.Member(index)
	if err != nil {
		return err
	}

	return zkp.NewShareGenerationProof(proof).Verify(c.shareStatement(index, pk))
}

// Proofs returns the share generation proofs of the members, if they are
// known.
func (c *Committee) Proofs() []*zkp.ShareGeneration {
	return c.proofs
}

// SetProofs attaches the share generation proofs of the members, in the
// order of the members. They are verified by VerifyMembers.
func (c *Committee) SetProofs(proofs []*zkp.ShareGeneration) error {
	if len(proofs) != len(c.members) {
		return xerrors.Errorf("expected %d proofs but got %d", len(c.members), len(proofs))
	}

	c.proofs = proofs

	return nil
}

// VerifyMembers checks the share generation proof of every member.
func (c *Committee) VerifyMembers() error {
	if len(c.proofs) != len(c.members) {
		return ErrMissingProofs
	}

	for i, proof := range c.proofs {
		err := c.VerifyMember(uint32(i), proof)
		if err != nil {
			return xerrors.Errorf("member %d: %w", i, err)
		}
	}

	return nil
}

func (c *Committee) proveMembers(stream cipher.Stream, secrets []*MemberSecret) error {
	proofs := make([]*zkp.ShareGeneration, len(secrets))
	for i, s := range secrets {
		proofs[i] = s.ProveShare(stream, c)
	}

	return c.SetProofs(proofs)
}

// String implements fmt.Stringer.
func (c *Committee) String() string {
	return fmt.Sprintf("Committee[%v %d-of-%d]", c.scheme, c.Quorum(), len(c.members))
}

func (c *Committee) shareStatement(index uint32, pk elgamal.PublicKey) zkp.ShareStatement {
	return zkp.ShareStatement{
		Index:       index,
		PublicShare: pk.Point(),
		Commits:     c.commits,
	}
}

// MemberSecret is the secret share of a committee member. It must be wiped
// with Zeroize once it is no longer needed.
type MemberSecret struct {
	index uint32
	key   *elgamal.SecretKey
}

// NewMemberSecret returns the secret of the member at the index.
func NewMemberSecret(index uint32, s kyber.Scalar) *MemberSecret {
	return &MemberSecret{
		index: index,
		key:   elgamal.SecretKeyFromScalar(s),
	}
}

// Index returns the index of the member in the committee.
func (m *MemberSecret) Index() uint32 {
	return m.index
}

// SecretKey returns the secret share as an ElGamal key.
func (m *MemberSecret) SecretKey() *elgamal.SecretKey {
	return m.key
}

// Public returns the public share of the member.
func (m *MemberSecret) Public() elgamal.PublicKey {
	return m.key.Public()
}

// ProveShare proves the member holds a share consistent with the committee.
func (m *MemberSecret) ProveShare(stream cipher.Stream, c *Committee) *zkp.ShareGeneration {
	st := c.shareStatement(m.index, m.Public())

	return zkp.ProveShareGeneration(stream, st, m.key.Scalar())
}

// Zeroize wipes the secret share.
func (m *MemberSecret) Zeroize() {
	if m != nil {
		m.key.Zeroize()
	}
}

// Deal creates a Shamir committee of n members with threshold t from a
// trusted dealer.
func Deal(stream cipher.Stream, n, t int) (*Committee, []*MemberSecret, error) {
	if t < 1 || t > n {
		return nil, nil, xerrors.Errorf("invalid threshold %d for %d members", t, n)
	}

	if stream == nil {
		stream = group.Suite.RandomStream()
	}

	poly := share.NewPriPoly(group.Suite, t, nil, stream)
	_, commits := poly.Commit(group.Generator()).Info()

	secrets := make([]*MemberSecret, n)
	members := make([]kyber.Point, n)

	for _, s := range poly.Shares(n) {
		secrets[s.I] = NewMemberSecret(uint32(s.I), s.V)
		members[s.I] = group.Suite.Point().Mul(s.V, nil)
		s.V.Zero()
	}

	c, err := New(Shamir, t, members, commits)
	if err != nil {
		return nil, nil, xerrors.Errorf("invalid committee: %v", err)
	}

	err = c.proveMembers(stream, secrets)
	if err != nil {
		return nil, nil, err
	}

	privote.Logger.Info().Stringer("committee", c).Msg("committee dealt")

	return c, secrets, nil
}

// DealAdditive creates an additive committee of n members with independent
// secret keys.
func DealAdditive(stream cipher.Stream, n int) (*Committee, []*MemberSecret, error) {
	secrets := make([]*MemberSecret, n)
	members := make([]kyber.Point, n)

	for i := range secrets {
		kp := elgamal.Generate(stream)

		secrets[i] = &MemberSecret{index: uint32(i), key: kp.Secret}
		members[i] = kp.Public.Point()
	}

	c, err := New(Additive, n, members, nil)
	if err != nil {
		return nil, nil, xerrors.Errorf("invalid committee: %v", err)
	}

	err = c.proveMembers(stream, secrets)
	if err != nil {
		return nil, nil, err
	}

	privote.Logger.Info().Stringer("committee", c).Msg("committee dealt")

	return c, secrets, nil
}
