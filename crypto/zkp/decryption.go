package zkp

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// DecryptionStatement claims that Plaintext = E2 - sk*E1 for the ciphertext
// and the secret key of PublicKey.
type DecryptionStatement struct {
	PublicKey  elgamal.PublicKey
	Ciphertext elgamal.Ciphertext
	Plaintext  kyber.Point
}

func (st DecryptionStatement) dleq() DLEQStatement {
	return DLEQStatement{
		G1: group.Generator(),
		H1: st.PublicKey.Point(),
		G2: st.Ciphertext.E1,
		H2: group.Suite.Point().Sub(st.Ciphertext.E2, st.Plaintext),
	}
}

// Decryption proves that a ciphertext decrypts to a given group element
// without revealing the secret key.
type Decryption struct {
	DLEQ
}

// ProveDecryption decrypts the ciphertext to the lifted plaintext M = m*G and
// proves it.
func ProveDecryption(stream cipher.Stream, sk *elgamal.SecretKey, c elgamal.Ciphertext) (kyber.Point, *Decryption) {
	m := sk.DecryptPoint(c)

	st := DecryptionStatement{
		PublicKey:  sk.Public(),
		Ciphertext: c,
		Plaintext:  m,
	}

	return m, &Decryption{DLEQ: *proveDLEQ(decryptionDomain, stream, st.dleq(), sk.Scalar())}
}

// ProvePartialDecryption returns the decryption share D = sk*E1 of the
// ciphertext, with the proof that E2 - D is the decryption of the ciphertext
// under the key.
func ProvePartialDecryption(stream cipher.Stream, sk *elgamal.SecretKey, c elgamal.Ciphertext) (kyber.Point, *Decryption) {
	m, proof := ProveDecryption(stream, sk, c)

	return group.Suite.Point().Sub(c.E2, m), proof
}

// Verify returns nil if the proof is valid for the statement.
func (p *Decryption) Verify(st DecryptionStatement) error {
	if p == nil {
		return xerrors.Errorf("empty proof: %w", ErrVerification)
	}

	return verifyDLEQ(decryptionDomain, &p.DLEQ, st.dleq())
}

// VerifyShare checks a decryption share D = sk*E1 produced by
// ProvePartialDecryption.
func (p *Decryption) VerifyShare(pk elgamal.PublicKey, c elgamal.Ciphertext, share kyber.Point) error {
	return p.Verify(DecryptionStatement{
		PublicKey:  pk,
		Ciphertext: c,
		Plaintext:  group.Suite.Point().Sub(c.E2, share),
	})
}

// DecodeDecryption parses a decryption proof.
func DecodeDecryption(data []byte) (*Decryption, error) {
	p, err := DecodeDLEQ(data)
	if err != nil {
		return nil, xerrors.Errorf("decryption proof: %w", err)
	}

	return &Decryption{DLEQ: *p}, nil
}
