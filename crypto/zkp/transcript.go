package zkp

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/blake3"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
)

// Domain separation tags of the transcripts, one per proof kind.
const (
	unitVectorDomain      = "privote/unit-vector/v1"
	dleqDomain            = "privote/dleq/v1"
	decryptionDomain      = "privote/decryption/v1"
	shareGenerationDomain = "privote/share-generation/v1"
)

// challengeLen is the number of bytes read from the hash before the
// reduction modulo the group order, which makes the bias negligible.
const challengeLen = 64

// transcript is the Fiat-Shamir transcript of a proof. Every element is
// written as (<label_size><label><data_size><data>) so that the encoding is
// unambiguous.
type transcript struct {
	h *blake3.Hasher
}

func newTranscript(domain string) *transcript {
	t := &transcript{h: blake3.New()}
	_, _ = t.h.WriteString("privote-transcript")
	t.append("domain", []byte(domain))

	return t
}

func (t *transcript) append(label string, data []byte) {
	var size [8]byte

	_, _ = t.h.WriteString("(")
	binary.BigEndian.PutUint64(size[:], uint64(len(label)))
	_, _ = t.h.Write(size[:])
	_, _ = t.h.WriteString(label)
	binary.BigEndian.PutUint64(size[:], uint64(len(data)))
	_, _ = t.h.Write(size[:])
	_, _ = t.h.Write(data)
	_, _ = t.h.WriteString(")")
}

func (t *transcript) appendUint32(label string, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	t.append(label, buf[:])
}

func (t *transcript) appendPoints(label string, points ...kyber.Point) {
	w := group.Writer{}
	for _, p := range points {
		w.Point(p)
	}

	t.append(label, w.Bytes())
}

func (t *transcript) appendCiphertexts(label string, cts []elgamal.Ciphertext) {
	w := group.Writer{}
	w.Uint32(uint32(len(cts)))

	for _, c := range cts {
		c.Encode(&w)
	}

	t.append(label, w.Bytes())
}

// challenge derives a scalar from the current state. The scalar is written
// back so that later challenges depend on it.
func (t *transcript) challenge(label string) kyber.Scalar {
	t.append("challenge", []byte(label))

	out := make([]byte, challengeLen)

	_, err := io.ReadFull(t.h.Digest(), out)
	if err != nil {
		panic("blake3 digest failed: " + err.Error())
	}

	c := group.Suite.Scalar().SetBytes(out)
	t.append(label, group.EncodeScalar(c))

	return c
}
