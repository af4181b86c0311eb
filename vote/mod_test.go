package vote

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/privote/crypto/commitment"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
)

func TestUnitVector_New(t *testing.T) {
	uv, err := NewUnitVector(3, 1)
	require.NoError(t, err)
	require.Equal(t, 3, uv.Len())
	require.Equal(t, 1, uv.Index())
	require.Equal(t, []uint64{0, 1, 0}, uv.Entries())
	require.Equal(t, uint64(1), uv.Entry(1))
	require.Equal(t, uint64(0), uv.Entry(2))
	require.Equal(t, "UnitVector(1/3)", uv.String())

	_, err = NewUnitVector(0, 0)
	require.EqualError(t, err, "invalid number of options 0")

	_, err = NewUnitVector(256, 0)
	require.EqualError(t, err, "invalid number of options 256")

	_, err = NewUnitVector(3, 3)
	require.EqualError(t, err, "choice 3 out of range [0, 3)")

	require.Panics(t, func() { MustUnitVector(2, -1) })
}

func TestUnitVector_Decode(t *testing.T) {
	uv, err := DecodeUnitVector([]uint64{0, 0, 1})
	require.NoError(t, err)
	require.Equal(t, MustUnitVector(3, 2), uv)

	_, err = DecodeUnitVector([]uint64{1, 1})
	require.EqualError(t, err, "entry 1: not a unit vector")

	_, err = DecodeUnitVector([]uint64{0, 2})
	require.EqualError(t, err, "entry 1: not a unit vector")

	_, err = DecodeUnitVector([]uint64{0, 0})
	require.EqualError(t, err, "no entry set")
}

func TestEncryptVerify(t *testing.T) {
	kp := elgamal.Generate(nil)
	election := NewElection(kp.Public, commitment.KeyFromSeed([]byte("plan")))

	table := elgamal.NewTable(1)

	for index := 0; index < 4; index++ {
		uv := MustUnitVector(4, index)

		ev, proof := Encrypt(nil, election, uv)
		require.Len(t, ev, 4)

		ballot, err := Verify(election, ev, proof)
		require.NoError(t, err)
		require.Equal(t, election.Fingerprint(), ballot.Fingerprint())

		entries := make([]uint64, len(ev))
		for i, c := range ballot.Vote() {
			entries[i], err = kp.Secret.DecryptTable(c, table)
			require.NoError(t, err)
		}

		decoded, err := DecodeUnitVector(entries)
		require.NoError(t, err)
		require.Equal(t, uv, decoded)
	}
}

func TestVerify_Reject(t *testing.T) {
	kp := elgamal.Generate(nil)
	election := NewElection(kp.Public, commitment.KeyFromSeed([]byte("plan")))

	ev, proof := Encrypt(nil, election, MustUnitVector(3, 0))

	tampered := append(EncryptedVote(nil), ev...)
	tampered[1] = tampered[1].Add(kp.Public.Encrypt(group.One(), group.Zero()))

	_, err := Verify(election, tampered, proof)
	require.ErrorIs(t, err, ErrInvalidProof)

	other := NewElection(elgamal.Generate(nil).Public, election.Key())
	require.NotEqual(t, election.Fingerprint(), other.Fingerprint())

	_, err = Verify(other, ev, proof)
	require.ErrorIs(t, err, ErrInvalidProof)

	_, err = Verify(election, ev, nil)
	require.ErrorIs(t, err, ErrInvalidProof)

	proof.Responses[0].Z = nil

	_, err = Verify(election, ev, proof)
	require.ErrorIs(t, err, ErrInvalidProof)
	require.Contains(t, err.Error(), "bit 0: missing element")
}

func TestEncryptedVote_Encoding(t *testing.T) {
	kp := elgamal.Generate(nil)
	election := NewElection(kp.Public, commitment.KeyFromSeed([]byte("plan")))

	ev, proof := Encrypt(nil, election, MustUnitVector(2, 1))

	data, err := ev.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 1+2*elgamal.CiphertextLen)

	decoded, err := DecodeEncryptedVote(data)
	require.NoError(t, err)

	_, err = Verify(election, decoded, proof)
	require.NoError(t, err)

	_, err = DecodeEncryptedVote([]byte{0})
	require.ErrorIs(t, err, group.ErrDecoding)

	_, err = DecodeEncryptedVote(data[:len(data)-3])
	require.ErrorIs(t, err, group.ErrDecoding)

	_, err = DecodeEncryptedVote(append(data, 1))
	require.ErrorIs(t, err, group.ErrDecoding)

	_, err = EncryptedVote(nil).MarshalBinary()
	require.EqualError(t, err, "invalid number of options 0")
}

func TestElection_Fingerprint(t *testing.T) {
	pk := elgamal.Generate(nil).Public

	e1 := NewElection(pk, commitment.KeyFromSeed([]byte("a")))
	e2 := NewElection(pk, commitment.KeyFromSeed([]byte("a")))
	e3 := NewElection(pk, commitment.KeyFromSeed([]byte("b")))

	require.Equal(t, e1.Fingerprint(), e2.Fingerprint())
	require.NotEqual(t, e1.Fingerprint(), e3.Fingerprint())
	require.Len(t, e1.Fingerprint().String(), 16)
	require.True(t, e1.PublicKey().Equal(pk))
}
