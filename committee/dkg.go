package committee

import (
	"go.dedis.ch/kyber/v3"
	pedersen "go.dedis.ch/kyber/v3/share/dkg/pedersen"
	"go.dedis.ch/privote"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// RunDKG runs a Pedersen distributed key generation between the members
// identified by their long-term keys, without a trusted dealer. Messages are
// exchanged in process; the result is the Shamir committee and the secret
// share of every member.
func RunDKG(longterms []kyber.Scalar, t int) (*Committee, []*MemberSecret, error) {
	n := len(longterms)
	if t < 1 || t > n {
		return nil, nil, xerrors.Errorf("invalid threshold %d for %d members", t, n)
	}

	participants := make([]kyber.Point, n)
	for i, sk := range longterms {
		participants[i] = group.Suite.Point().Mul(sk, nil)
	}

	generators := make([]*pedersen.DistKeyGenerator, n)

	for i, sk := range longterms {
		gen, err := pedersen.NewDistKeyGenerator(group.Suite, sk, participants, t)
		if err != nil {
			return nil, nil, xerrors.Errorf("failed to create generator %d: %v", i, err)
		}

		generators[i] = gen
	}

	var responses []*pedersen.Response

	for i, gen := range generators {
		deals, err := gen.Deals()
		if err != nil {
			return nil, nil, xerrors.Errorf("failed to deal %d: %v", i, err)
		}

		for to, deal := range deals {
			resp, err := generators[to].ProcessDeal(deal)
			if err != nil {
				return nil, nil, xerrors.Errorf("member %d failed to process deal of %d: %v",
					to, i, err)
			}

			responses = append(responses, resp)
		}
	}

	privote.Logger.Debug().Int("responses", len(responses)).Msg("deals processed")

	for _, resp := range responses {
		for i, gen := range generators {
			if resp.Response.Index == uint32(i) {
				continue
			}

			_, err := gen.ProcessResponse(resp)
			if err != nil {
				return nil, nil, xerrors.Errorf("member %d failed to process response: %v", i, err)
			}
		}
	}

	var commits []kyber.Point

	secrets := make([]*MemberSecret, n)
	members := make([]kyber.Point, n)

	for i, gen := range generators {
		if !gen.Certified() {
			return nil, nil, xerrors.Errorf("member %d is not certified", i)
		}

		dks, err := gen.DistKeyShare()
		if err != nil {
			return nil, nil, xerrors.Errorf("member %d: failed to get share: %v", i, err)
		}

		if commits == nil {
			commits = dks.Commits
		} else if !dks.Public().Equal(commits[0]) {
			return nil, nil, xerrors.Errorf("member %d disagrees on the public key", i)
		}

		secrets[i] = NewMemberSecret(uint32(dks.Share.I), dks.Share.V)
		members[i] = group.Suite.Point().Mul(dks.Share.V, nil)

		dks.Share.V.Zero()
	}

	c, err := New(Shamir, t, members, commits)
	if err != nil {
		return nil, nil, xerrors.Errorf("invalid committee: %v", err)
	}

	err = c.proveMembers(nil, secrets)
	if err != nil {
		return nil, nil, err
	}

	privote.Logger.Info().Stringer("committee", c).Msg("distributed key generated")

	return c, secrets, nil
}
