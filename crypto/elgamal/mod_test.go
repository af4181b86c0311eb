package elgamal

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/privote/crypto/group"
)

func TestSecretKey_Decrypt(t *testing.T) {
	kp := Generate(nil)
	defer kp.Secret.Zeroize()

	for _, v := range []uint64{0, 1} {
		c, _ := kp.Public.EncryptRandom(nil, group.ScalarFromUint64(v))

		m, err := kp.Secret.Decrypt(c, 1)
		require.NoError(t, err)
		require.Equal(t, v, m)
	}

	c, _ := kp.Public.EncryptRandom(nil, group.ScalarFromUint64(2))
	_, err := kp.Secret.Decrypt(c, 1)
	require.ErrorIs(t, err, ErrDecryption)

	m, err := kp.Secret.Decrypt(c, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(2), m)

	_, err = kp.Secret.DecryptTable(c, NewTable(1))
	require.ErrorIs(t, err, ErrDecryption)
}

func TestCiphertext_Homomorphism(t *testing.T) {
	kp := Generate(nil)
	table := NewTable(1 << 12)

	f := func(a, b uint8) bool {
		c1, _ := kp.Public.EncryptRandom(nil, group.ScalarFromUint64(uint64(a)))
		c2, _ := kp.Public.EncryptRandom(nil, group.ScalarFromUint64(uint64(b)))

		sum, err := kp.Secret.DecryptTable(c1.Add(c2), table)
		if err != nil || sum != uint64(a)+uint64(b) {
			return false
		}

		scaled, err := kp.Secret.DecryptTable(c1.Mul(group.ScalarFromUint64(3)), table)
		if err != nil || scaled != 3*uint64(a) {
			return false
		}

		if a < b {
			return true
		}

		diff, err := kp.Secret.DecryptTable(c1.Sub(c2), table)
		return err == nil && diff == uint64(a-b)
	}

	err := quick.Check(f, &quick.Config{MaxCount: 20})
	require.NoError(t, err)
}

func TestCiphertext_Zero(t *testing.T) {
	kp := Generate(nil)

	m, err := kp.Secret.Decrypt(Zero(), 0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), m)

	c := kp.Public.Encrypt(group.One(), group.Zero())
	require.True(t, c.Add(Zero()).Equal(c))
	require.True(t, c.E1.Equal(group.Identity()))
}

func TestCiphertext_Encoding(t *testing.T) {
	kp := Generate(nil)
	c, _ := kp.Public.EncryptRandom(nil, group.One())

	data, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, CiphertextLen)

	decoded, err := DecodeCiphertext(data)
	require.NoError(t, err)
	require.True(t, decoded.Equal(c))

	_, err = DecodeCiphertext(data[:CiphertextLen-1])
	require.ErrorIs(t, err, group.ErrDecoding)

	_, err = DecodeCiphertext(append(data, 0))
	require.ErrorIs(t, err, group.ErrDecoding)
}

func TestPublicKey_Encoding(t *testing.T) {
	kp := Generate(nil)

	data, err := kp.Public.MarshalBinary()
	require.NoError(t, err)

	pk, err := DecodePublicKey(data)
	require.NoError(t, err)
	require.True(t, pk.Equal(kp.Public))
	require.Contains(t, pk.String(), "elgamal:")

	_, err = DecodePublicKey(data[1:])
	require.ErrorIs(t, err, group.ErrDecoding)
}

func TestSecretKey_Zeroize(t *testing.T) {
	sk := NewSecretKey(nil)
	require.False(t, sk.Scalar().Equal(group.Zero()))

	sk.Zeroize()
	require.True(t, sk.Scalar().Equal(group.Zero()))

	var nilKey *SecretKey
	nilKey.Zeroize()
}

func TestSecretKeyFromScalar(t *testing.T) {
	s := group.RandomScalar(nil)

	sk := SecretKeyFromScalar(s)
	sk.Zeroize()

	require.False(t, s.Equal(group.Zero()))
}
