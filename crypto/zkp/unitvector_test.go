package zkp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/commitment"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
)

func TestUnitVector_ProveVerify(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	for size := 1; size <= 9; size++ {
		for index := 0; index < size; index++ {
			st, randomness := makeStatement(key, kp.Public, unitVector(size, index))

			proof := ProveUnitVector(nil, st, randomness, index)
			require.Len(t, proof.Announcements, bitLen(size))

			err := proof.Verify(st)
			require.NoError(t, err, "size=%d index=%d", size, index)
		}
	}
}

func TestUnitVector_RejectBitFlip(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	st, randomness := makeStatement(key, kp.Public, unitVector(3, 1))
	proof := ProveUnitVector(nil, st, randomness, 1)

	for j := range st.Ciphertexts {
		tampered := cloneStatement(st)

		// Flip the plaintext bit of entry j while keeping its randomness.
		delta := kp.Public.Encrypt(group.One(), group.Zero())
		if j == 1 {
			tampered.Ciphertexts[j] = st.Ciphertexts[j].Sub(delta)
		} else {
			tampered.Ciphertexts[j] = st.Ciphertexts[j].Add(delta)
		}

		err := proof.Verify(tampered)
		require.ErrorIs(t, err, ErrVerification)
	}
}

func TestUnitVector_RejectRerandomized(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	st, randomness := makeStatement(key, kp.Public, unitVector(4, 2))
	proof := ProveUnitVector(nil, st, randomness, 2)

	tampered := cloneStatement(st)
	tampered.Ciphertexts[0] = st.Ciphertexts[0].Add(kp.Public.Encrypt(group.Zero(), group.RandomScalar(nil)))

	err := proof.Verify(tampered)
	require.ErrorIs(t, err, ErrVerification)
}

func TestUnitVector_RejectNonUnitVectors(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	vectors := [][]uint64{
		{1, 1, 0},
		{0, 0, 0},
		{2, 0, 0},
		{0, 1, 1, 0},
	}

	for _, vector := range vectors {
		st, randomness := makeStatement(key, kp.Public, vector)

		for index := range vector {
			proof := ProveUnitVector(nil, st, randomness, index)

			err := proof.Verify(st)
			require.ErrorIs(t, err, ErrVerification, "vector=%v index=%d", vector, index)
		}
	}
}

func TestUnitVector_RejectWrongContext(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	st, randomness := makeStatement(key, kp.Public, unitVector(2, 0))
	proof := ProveUnitVector(nil, st, randomness, 0)

	other := st
	other.Key = commitment.KeyFromSeed([]byte("other"))
	require.ErrorIs(t, proof.Verify(other), ErrVerification)

	other = st
	other.PublicKey = elgamal.Generate(nil).Public
	require.ErrorIs(t, proof.Verify(other), ErrVerification)

	other = st
	other.Ciphertexts = st.Ciphertexts[:1]
	require.ErrorIs(t, proof.Verify(other), ErrVerification)

	other.Ciphertexts = nil
	require.ErrorIs(t, proof.Verify(other), ErrVerification)

	other = st
	other.Ciphertexts = append(cloneStatement(st).Ciphertexts, elgamal.Zero(), elgamal.Zero())
	err := proof.Verify(other)
	require.ErrorIs(t, err, ErrVerification)
	require.Contains(t, err.Error(), "proof size mismatch")

	var empty *UnitVector
	require.ErrorIs(t, empty.Verify(st), ErrVerification)
}

func TestUnitVector_RejectTamperedProof(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	st, randomness := makeStatement(key, kp.Public, unitVector(5, 4))

	tamper := []func(p *UnitVector){
		func(p *UnitVector) { p.R = group.Suite.Scalar().Add(p.R, group.One()) },
		func(p *UnitVector) { p.Responses[0].Z = group.RandomScalar(nil) },
		func(p *UnitVector) { p.Responses[1].W = group.RandomScalar(nil) },
		func(p *UnitVector) { p.Responses[2].V = group.RandomScalar(nil) },
		func(p *UnitVector) { p.Ds[0] = p.Ds[1] },
		func(p *UnitVector) { p.Announcements[0].I = p.Announcements[0].B },
		func(p *UnitVector) { p.Responses = p.Responses[:2] },
		func(p *UnitVector) { p.Responses[1].Z = nil },
		func(p *UnitVector) { p.Responses[2].V = nil },
		func(p *UnitVector) { p.Announcements[0].A = commitment.Commitment{} },
		func(p *UnitVector) { p.Ds[2].E1 = nil },
	}

	for i, fn := range tamper {
		proof := ProveUnitVector(nil, st, randomness, 4)
		fn(proof)

		require.ErrorIs(t, proof.Verify(st), ErrVerification, "tamper #%d", i)
	}
}

func TestUnitVector_Encoding(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	st, randomness := makeStatement(key, kp.Public, unitVector(3, 2))
	proof := ProveUnitVector(nil, st, randomness, 2)

	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	// bits | 2 * (3 points + ciphertext + 3 scalars) | R
	require.Len(t, data, 1+2*(3*32+64+3*32)+32)

	decoded, err := DecodeUnitVector(data)
	require.NoError(t, err)
	require.NoError(t, decoded.Verify(st))

	again, err := decoded.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, data, again)

	_, err = DecodeUnitVector(data[:len(data)-1])
	require.ErrorIs(t, err, group.ErrDecoding)

	_, err = DecodeUnitVector(append(data, 0))
	require.ErrorIs(t, err, group.ErrDecoding)

	_, err = DecodeUnitVector([]byte{0})
	require.ErrorIs(t, err, group.ErrDecoding)

	_, err = DecodeUnitVector(nil)
	require.ErrorIs(t, err, group.ErrDecoding)
}

func TestUnitVector_ProvePanics(t *testing.T) {
	kp := elgamal.Generate(nil)
	key := commitment.KeyFromSeed([]byte("crs"))

	st, randomness := makeStatement(key, kp.Public, unitVector(3, 0))

	require.Panics(t, func() { ProveUnitVector(nil, st, randomness[:2], 0) })
	require.Panics(t, func() { ProveUnitVector(nil, st, randomness, 3) })
}

func TestBitLen(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 255: 8, 256: 8}

	for size, bits := range cases {
		require.Equal(t, bits, bitLen(size), "size=%d", size)
	}
}

// -----------------------------------------------------------------------------
// Utility functions

func unitVector(size, index int) []uint64 {
	vector := make([]uint64, size)
	vector[index] = 1

	return vector
}

func makeStatement(key commitment.Key, pk elgamal.PublicKey, vector []uint64) (UnitVectorStatement, []kyber.Scalar) {
	cts := make([]elgamal.Ciphertext, len(vector))
	randomness := make([]kyber.Scalar, len(vector))

	for i, v := range vector {
		cts[i], randomness[i] = pk.EncryptRandom(nil, group.ScalarFromUint64(v))
	}

	st := UnitVectorStatement{
		Key:         key,
		PublicKey:   pk,
		Ciphertexts: cts,
	}

	return st, randomness
}

func cloneStatement(st UnitVectorStatement) UnitVectorStatement {
	st.Ciphertexts = append([]elgamal.Ciphertext(nil), st.Ciphertexts...)
	return st
}
