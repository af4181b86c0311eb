package vote

import (
	"encoding/hex"

	"go.dedis.ch/privote/crypto"
	"go.dedis.ch/privote/crypto/commitment"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
)

// FingerprintLen is the length of an election fingerprint.
const FingerprintLen = 32

// Fingerprint identifies the public parameters of an election.
type Fingerprint [FingerprintLen]byte

// String implements fmt.Stringer.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:8])
}

// Election holds the public parameters every ballot is bound to: the
// election public key of the committee and the commitment key.
type Election struct {
	publicKey   elgamal.PublicKey
	key         commitment.Key
	fingerprint Fingerprint
}

// NewElection returns the election of the public key and commitment key.
func NewElection(pk elgamal.PublicKey, key commitment.Key) Election {
	h := crypto.NewHashFactory(crypto.Blake2b256).New()
	h.Write(group.EncodePoint(key.H()))
	h.Write(group.EncodePoint(pk.Point()))

	e := Election{
		publicKey: pk,
		key:       key,
	}

	copy(e.fingerprint[:], h.Sum(nil))

	return e
}

// PublicKey returns the election public key.
func (e Election) PublicKey() elgamal.PublicKey {
	return e.publicKey
}

// Key returns the commitment key.
func (e Election) Key() commitment.Key {
	return e.key
}

// Fingerprint returns the digest of the public parameters.
func (e Election) Fingerprint() Fingerprint {
	return e.fingerprint
}
