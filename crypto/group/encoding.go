package group

import (
	"bytes"
	"encoding/binary"

	"go.dedis.ch/kyber/v3"
	"golang.org/x/xerrors"
)

// ErrDecoding is returned when bytes are malformed or not canonical.
var ErrDecoding = xerrors.New("decoding error")

// EncodeScalar returns the canonical 32-byte encoding of the scalar.
func EncodeScalar(s kyber.Scalar) []byte {
	buf, err := s.MarshalBinary()
	if err != nil {
		// edwards25519 scalars never fail to marshal.
		panic(err)
	}

	return buf
}

// DecodeScalar parses a canonical scalar. It fails when the buffer has the
// wrong size or encodes an integer greater or equal to the group order.
func DecodeScalar(buf []byte) (kyber.Scalar, error) {
	if len(buf) != ScalarLen {
		return nil, xerrors.Errorf("scalar: invalid length %d: %w", len(buf), ErrDecoding)
	}

	s := Suite.Scalar().SetBytes(buf)

	if !bytes.Equal(EncodeScalar(s), buf) {
		return nil, xerrors.Errorf("scalar: not reduced: %w", ErrDecoding)
	}

	return s, nil
}

// EncodePoint returns the canonical 32-byte encoding of the group element.
func EncodePoint(p kyber.Point) []byte {
	buf, err := p.MarshalBinary()
	if err != nil {
		panic(err)
	}

	return buf
}

// DecodePoint parses a canonical group element. The element must be on the
// curve, use the canonical encoding and belong to the prime-order subgroup.
func DecodePoint(buf []byte) (kyber.Point, error) {
	if len(buf) != PointLen {
		return nil, xerrors.Errorf("point: invalid length %d: %w", len(buf), ErrDecoding)
	}

	p := Suite.Point()

	err := p.UnmarshalBinary(buf)
	if err != nil {
		return nil, xerrors.Errorf("point: %v: %w", err, ErrDecoding)
	}

	if !bytes.Equal(EncodePoint(p), buf) {
		return nil, xerrors.Errorf("point: non-canonical encoding: %w", ErrDecoding)
	}

	if !InSubgroup(p) {
		return nil, xerrors.Errorf("point: not in prime-order subgroup: %w", ErrDecoding)
	}

	return p, nil
}

// Writer accumulates the canonical encoding of a structure.
type Writer struct {
	buf bytes.Buffer
}

// Point appends a group element.
func (w *Writer) Point(p kyber.Point) {
	w.buf.Write(EncodePoint(p))
}

// Scalar appends a scalar.
func (w *Writer) Scalar(s kyber.Scalar) {
	w.buf.Write(EncodeScalar(s))
}

// Uint8 appends a single byte.
func (w *Writer) Uint8(v uint8) {
	w.buf.WriteByte(v)
}

// Uint32 appends a big-endian 32-bit integer.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Uint64 appends a big-endian 64-bit integer.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// Raw appends the bytes as they are.
func (w *Writer) Raw(data []byte) {
	w.buf.Write(data)
}

// Bytes returns the encoding written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Reader consumes a canonical encoding produced by a Writer. Every read
// fails with ErrDecoding when the input is too short.
type Reader struct {
	data []byte
}

// NewReader returns a reader over the data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data)
}

func (r *Reader) next(n int) ([]byte, error) {
	if len(r.data) < n {
		return nil, xerrors.Errorf("unexpected end of input (need %d, have %d): %w",
			n, len(r.data), ErrDecoding)
	}

	chunk := r.data[:n]
	r.data = r.data[n:]

	return chunk, nil
}

// Point reads a group element.
func (r *Reader) Point() (kyber.Point, error) {
	buf, err := r.next(PointLen)
	if err != nil {
		return nil, err
	}

	return DecodePoint(buf)
}

// Scalar reads a scalar.
func (r *Reader) Scalar() (kyber.Scalar, error) {
	buf, err := r.next(ScalarLen)
	if err != nil {
		return nil, err
	}

	return DecodeScalar(buf)
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() (uint8, error) {
	buf, err := r.next(1)
	if err != nil {
		return 0, err
	}

	return buf[0], nil
}

// Uint32 reads a big-endian 32-bit integer.
func (r *Reader) Uint32() (uint32, error) {
	buf, err := r.next(4)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(buf), nil
}

// Uint64 reads a big-endian 64-bit integer.
func (r *Reader) Uint64() (uint64, error) {
	buf, err := r.next(8)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(buf), nil
}

// Raw reads n bytes.
func (r *Reader) Raw(n int) ([]byte, error) {
	buf, err := r.next(n)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), buf...), nil
}

// Done returns an error if unread bytes remain.
func (r *Reader) Done() error {
	if len(r.data) != 0 {
		return xerrors.Errorf("%d trailing bytes: %w", len(r.data), ErrDecoding)
	}

	return nil
}
