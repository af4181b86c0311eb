package zkp

import (
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// Kind identifies a proof variant.
type Kind byte

const (
	// KindUnitVector is the kind of a UnitVector proof.
	KindUnitVector Kind = iota + 1
	// KindDLEQ is the kind of a DLEQ proof.
	KindDLEQ
	// KindDecryption is the kind of a Decryption proof.
	KindDecryption
	// KindShareGeneration is the kind of a ShareGeneration proof.
	KindShareGeneration
)

func (k Kind) String() string {
	switch k {
	case KindUnitVector:
		return "UnitVector"
	case KindDLEQ:
		return "DLEQ"
	case KindDecryption:
		return "Decryption"
	case KindShareGeneration:
		return "ShareGeneration"
	default:
		return "Unknown"
	}
}

// Statement is the public claim a proof is verified against. It is one of
// UnitVectorStatement, DLEQStatement, DecryptionStatement or ShareStatement.
type Statement interface {
	kind() Kind
}

func (UnitVectorStatement) kind() Kind { return KindUnitVector }
func (DLEQStatement) kind() Kind       { return KindDLEQ }
func (DecryptionStatement) kind() Kind { return KindDecryption }
func (ShareStatement) kind() Kind      { return KindShareGeneration }

// Proof is a closed union over the four proof variants. The zero value is
// not a valid proof.
type Proof struct {
	kind Kind

	unitVector      *UnitVector
	dleq            *DLEQ
	decryption      *Decryption
	shareGeneration *ShareGeneration
}

// NewUnitVectorProof wraps a unit vector proof.
func NewUnitVectorProof(p *UnitVector) Proof {
	return Proof{kind: KindUnitVector, unitVector: p}
}

// NewDLEQProof wraps a DLEQ proof.
func NewDLEQProof(p *DLEQ) Proof {
	return Proof{kind: KindDLEQ, dleq: p}
}

// NewDecryptionProof wraps a decryption proof.
func NewDecryptionProof(p *Decryption) Proof {
	return Proof{kind: KindDecryption, decryption: p}
}

// NewShareGenerationProof wraps a share generation proof.
func NewShareGenerationProof(p *ShareGeneration) Proof {
	return Proof{kind: KindShareGeneration, shareGeneration: p}
}

// Kind returns the variant of the proof.
func (p Proof) Kind() Kind {
	return p.kind
}

// UnitVector returns the unit vector proof, or nil for another kind.
func (p Proof) UnitVector() *UnitVector {
	return p.unitVector
}

// DLEQ returns the DLEQ proof, or nil for another kind.
func (p Proof) DLEQ() *DLEQ {
	return p.dleq
}

// Decryption returns the decryption proof, or nil for another kind.
func (p Proof) Decryption() *Decryption {
	return p.decryption
}

// ShareGeneration returns the share generation proof, or nil for another
// kind.
func (p Proof) ShareGeneration() *ShareGeneration {
	return p.shareGeneration
}

// Verify verifies the proof against a statement of the same kind.
func (p Proof) Verify(st Statement) error {
	if st == nil || st.kind() != p.kind {
		return xerrors.Errorf("statement does not match proof %v: %w", p.kind, ErrVerification)
	}

	switch p.kind {
	case KindUnitVector:
		return p.unitVector.Verify(st.(UnitVectorStatement))
	case KindDLEQ:
		return p.dleq.Verify(st.(DLEQStatement))
	case KindDecryption:
		return p.decryption.Verify(st.(DecryptionStatement))
	case KindShareGeneration:
		return p.shareGeneration.Verify(st.(ShareStatement))
	default:
		return xerrors.Errorf("unknown proof kind %d: %w", p.kind, ErrVerification)
	}
}

// MarshalBinary implements encoding.BinaryMarshaler. The encoding is the
// kind byte followed by the encoding of the variant.
func (p Proof) MarshalBinary() ([]byte, error) {
	w := group.Writer{}
	w.Uint8(uint8(p.kind))

	switch p.kind {
	case KindUnitVector:
		p.unitVector.encode(&w)
	case KindDLEQ:
		p.dleq.encode(&w)
	case KindDecryption:
		p.decryption.encode(&w)
	case KindShareGeneration:
		p.shareGeneration.encode(&w)
	default:
		return nil, xerrors.Errorf("unknown proof kind %d", p.kind)
	}

	return w.Bytes(), nil
}

// DecodeProof parses a proof of any kind.
func DecodeProof(data []byte) (Proof, error) {
	r := group.NewReader(data)

	tag, err := r.Uint8()
	if err != nil {
		return Proof{}, xerrors.Errorf("proof kind: %w", err)
	}

	var proof Proof

	switch Kind(tag) {
	case KindUnitVector:
		var uv *UnitVector
		uv, err = readUnitVector(r)
		proof = NewUnitVectorProof(uv)
	case KindDLEQ:
		var dleq *DLEQ
		dleq, err = readDLEQ(r)
		proof = NewDLEQProof(dleq)
	case KindDecryption:
		var dleq *DLEQ
		dleq, err = readDLEQ(r)
		if err == nil {
			proof = NewDecryptionProof(&Decryption{DLEQ: *dleq})
		}
	case KindShareGeneration:
		var sg *ShareGeneration
		sg, err = readShareGeneration(r)
		proof = NewShareGenerationProof(sg)
	default:
		return Proof{}, xerrors.Errorf("unknown proof kind %d: %w", tag, group.ErrDecoding)
	}

	if err != nil {
		return Proof{}, xerrors.Errorf("%v proof: %w", Kind(tag), err)
	}

	err = r.Done()
	if err != nil {
		return Proof{}, xerrors.Errorf("%v proof: %w", Kind(tag), err)
	}

	return proof, nil
}
