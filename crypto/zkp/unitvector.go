package zkp

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/commitment"
	"go.dedis.ch/privote/crypto/elgamal"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/xerrors"
)

// maxBits bounds the size of the vectors a proof can claim when decoded.
const maxBits = 32

// UnitVectorStatement claims that the ciphertexts, encrypted under
// PublicKey, are the encryption of a unit vector.
type UnitVectorStatement struct {
	Key         commitment.Key
	PublicKey   elgamal.PublicKey
	Ciphertexts []elgamal.Ciphertext
}

func (st UnitVectorStatement) write(t *transcript) {
	t.appendPoints("commitment-key", st.Key.H())
	t.appendPoints("public-key", st.PublicKey.Point())
	t.appendCiphertexts("ciphertexts", st.Ciphertexts)
}

// Announcement is the first message of the prover for one bit of the index:
// I commits to the bit, B to a random mask and A to their product.
type Announcement struct {
	I commitment.Commitment
	B commitment.Commitment
	A commitment.Commitment
}

// Response is the answer of the prover for one bit of the index.
type Response struct {
	Z kyber.Scalar
	W kyber.Scalar
	V kyber.Scalar
}

// UnitVector is a proof that a vector of ciphertexts encrypts a vector with
// a single entry equal to one and all the others equal to zero.
//
// The vector is padded with trivial encryptions of zero up to a power of two
// N = 2^n. The prover commits to the n bits of the index, and the verifier
// checks that the committed values are bits and that the ciphertexts are
// consistent with the product polynomials of those bits, whose leading
// coefficients form the unit vector.
type UnitVector struct {
	Announcements []Announcement
	Ds            []elgamal.Ciphertext
	Responses     []Response
	R             kyber.Scalar
}

// ProveUnitVector proves that ciphertexts[j] = Enc(pk, j == index ? 1 : 0;
// randomness[j]). The caller is trusted to provide consistent inputs.
func ProveUnitVector(stream cipher.Stream, st UnitVectorStatement, randomness []kyber.Scalar, index int) *UnitVector {
	if len(randomness) != len(st.Ciphertexts) {
		panic("randomness and ciphertexts have different lengths")
	}

	if index < 0 || index >= len(st.Ciphertexts) {
		panic("index out of range")
	}

	n := bitLen(len(st.Ciphertexts))
	size := 1 << n

	bits := make([]kyber.Scalar, n)
	alphas := make([]kyber.Scalar, n)
	betas := make([]kyber.Scalar, n)
	gammas := make([]kyber.Scalar, n)
	deltas := make([]kyber.Scalar, n)

	announcements := make([]Announcement, n)

	for l := 0; l < n; l++ {
		bits[l] = group.ScalarFromUint64(uint64((index >> l) & 1))
		alphas[l] = group.RandomScalar(stream)
		betas[l] = group.RandomScalar(stream)
		gammas[l] = group.RandomScalar(stream)
		deltas[l] = group.RandomScalar(stream)

		announcements[l] = Announcement{
			I: st.Key.Commit(bits[l], alphas[l]),
			B: st.Key.Commit(betas[l], gammas[l]),
			A: st.Key.Commit(group.Suite.Scalar().Mul(bits[l], betas[l]), deltas[l]),
		}
	}

	t := newTranscript(unitVectorDomain)
	st.write(t)
	writeAnnouncements(t, announcements)
	y := t.challenge("y")

	ys := group.Powers(y, size)

	// coefficient k of sum_j y^j * p_j(x), for k < n
	coeffs := make([]kyber.Scalar, n)
	for k := range coeffs {
		coeffs[k] = group.Zero()
	}

	for j := 0; j < size; j++ {
		poly := []kyber.Scalar{group.One()}

		for l := 0; l < n; l++ {
			poly = mulLinear(poly, bitPolynomial(bits[l], betas[l], (j>>l)&1 == 1))
		}

		for k := 0; k < n; k++ {
			term := group.Suite.Scalar().Mul(ys[j], poly[k])
			coeffs[k] = group.Suite.Scalar().Add(coeffs[k], term)
		}
	}

	ds := make([]elgamal.Ciphertext, n)
	rs := make([]kyber.Scalar, n)

	for k := 0; k < n; k++ {
		rs[k] = group.RandomScalar(stream)
		ds[k] = st.PublicKey.Encrypt(coeffs[k], rs[k])
	}

	t.appendCiphertexts("polynomials", ds)
	x := t.challenge("x")

	responses := make([]Response, n)

	for l := 0; l < n; l++ {
		z := group.Suite.Scalar().Add(group.Suite.Scalar().Mul(bits[l], x), betas[l])
		w := group.Suite.Scalar().Add(group.Suite.Scalar().Mul(alphas[l], x), gammas[l])

		xz := group.Suite.Scalar().Sub(x, z)
		v := group.Suite.Scalar().Add(group.Suite.Scalar().Mul(alphas[l], xz), deltas[l])

		responses[l] = Response{Z: z, W: w, V: v}
	}

	// R = sum_j r_j * x^n * y^j + sum_k R_k * x^k
	xs := group.Powers(x, n+1)

	r := group.Zero()
	for j, rj := range randomness {
		term := group.Suite.Scalar().Mul(rj, group.Suite.Scalar().Mul(xs[n], ys[j]))
		r = group.Suite.Scalar().Add(r, term)
	}

	for k := 0; k < n; k++ {
		r = group.Suite.Scalar().Add(r, group.Suite.Scalar().Mul(rs[k], xs[k]))
	}

	for _, secrets := range [][]kyber.Scalar{bits, alphas, betas, gammas, deltas, rs} {
		for _, s := range secrets {
			s.Zero()
		}
	}

	return &UnitVector{
		Announcements: announcements,
		Ds:            ds,
		Responses:     responses,
		R:             r,
	}
}

// Verify returns nil if the proof is valid for the statement.
func (p *UnitVector) Verify(st UnitVectorStatement) error {
	if p == nil {
		return xerrors.Errorf("empty proof: %w", ErrVerification)
	}

	if len(st.Ciphertexts) == 0 {
		return xerrors.Errorf("no ciphertext: %w", ErrVerification)
	}

	n := bitLen(len(st.Ciphertexts))
	size := 1 << n

	if len(p.Announcements) != n || len(p.Ds) != n || len(p.Responses) != n || p.R == nil {
		return xerrors.Errorf("proof size mismatch (expected %d bits): %w", n, ErrVerification)
	}

	for l := 0; l < n; l++ {
		if !p.wellFormed(l) {
			return xerrors.Errorf("bit %d: missing element: %w", l, ErrVerification)
		}
	}

	t := newTranscript(unitVectorDomain)
	st.write(t)
	writeAnnouncements(t, p.Announcements)
	y := t.challenge("y")

	t.appendCiphertexts("polynomials", p.Ds)
	x := t.challenge("x")

	for l := 0; l < n; l++ {
		ann := p.Announcements[l]
		resp := p.Responses[l]

		// I^x * B == com(z; w)
		lhs := ann.I.Mul(x).Add(ann.B)
		if !st.Key.Verify(lhs, commitment.Opening{M: resp.Z, R: resp.W}) {
			return xerrors.Errorf("bit %d: invalid mask response: %w", l, ErrVerification)
		}

		// I^(x-z) * A == com(0; v)
		xz := group.Suite.Scalar().Sub(x, resp.Z)
		lhs = ann.I.Mul(xz).Add(ann.A)
		if !st.Key.Verify(lhs, commitment.Opening{M: group.Zero(), R: resp.V}) {
			return xerrors.Errorf("bit %d: committed value is not a bit: %w", l, ErrVerification)
		}
	}

	ys := group.Powers(y, size)
	xs := group.Powers(x, n+1)

	// sum_j y^j * (x^n * C_j) + sum_k x^k * D_k == Enc(sum_j y^j * p_j(x); R)
	lhs := elgamal.Zero()
	for j, c := range st.Ciphertexts {
		lhs = lhs.Add(c.Mul(group.Suite.Scalar().Mul(xs[n], ys[j])))
	}

	for k, d := range p.Ds {
		lhs = lhs.Add(d.Mul(xs[k]))
	}

	eval := group.Zero()
	for j := 0; j < size; j++ {
		pj := group.One()

		for l := 0; l < n; l++ {
			factor := p.Responses[l].Z
			if (j>>l)&1 == 0 {
				factor = group.Suite.Scalar().Sub(x, factor)
			}

			pj = group.Suite.Scalar().Mul(pj, factor)
		}

		eval = group.Suite.Scalar().Add(eval, group.Suite.Scalar().Mul(ys[j], pj))
	}

	rhs := st.PublicKey.Encrypt(eval, p.R)

	if !lhs.Equal(rhs) {
		return xerrors.Errorf("ciphertexts are not a unit vector: %w", ErrVerification)
	}

	return nil
}

// wellFormed returns true when every element of the bit l is set.
func (p *UnitVector) wellFormed(l int) bool {
	ann := p.Announcements[l]
	resp := p.Responses[l]
	d := p.Ds[l]

	for _, pt := range []kyber.Point{ann.I.Point(), ann.B.Point(), ann.A.Point(), d.E1, d.E2} {
		if pt == nil {
			return false
		}
	}

	return resp.Z != nil && resp.W != nil && resp.V != nil
}

func (p *UnitVector) encode(w *group.Writer) {
	w.Uint8(uint8(len(p.Announcements)))

	for _, a := range p.Announcements {
		w.Point(a.I.Point())
		w.Point(a.B.Point())
		w.Point(a.A.Point())
	}

	for _, d := range p.Ds {
		d.Encode(w)
	}

	for _, r := range p.Responses {
		w.Scalar(r.Z)
		w.Scalar(r.W)
		w.Scalar(r.V)
	}

	w.Scalar(p.R)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *UnitVector) MarshalBinary() ([]byte, error) {
	w := group.Writer{}
	p.encode(&w)

	return w.Bytes(), nil
}

func readUnitVector(r *group.Reader) (*UnitVector, error) {
	n, err := r.Uint8()
	if err != nil {
		return nil, err
	}

	if n == 0 || n > maxBits {
		return nil, xerrors.Errorf("invalid number of bits %d: %w", n, group.ErrDecoding)
	}

	p := &UnitVector{
		Announcements: make([]Announcement, n),
		Ds:            make([]elgamal.Ciphertext, n),
		Responses:     make([]Response, n),
	}

	for l := range p.Announcements {
		var points [3]kyber.Point

		for i := range points {
			points[i], err = r.Point()
			if err != nil {
				return nil, xerrors.Errorf("announcement %d: %w", l, err)
			}
		}

		p.Announcements[l] = Announcement{
			I: commitment.FromPoint(points[0]),
			B: commitment.FromPoint(points[1]),
			A: commitment.FromPoint(points[2]),
		}
	}

	for k := range p.Ds {
		p.Ds[k], err = elgamal.ReadCiphertext(r)
		if err != nil {
			return nil, xerrors.Errorf("polynomial %d: %w", k, err)
		}
	}

	for l := range p.Responses {
		var scalars [3]kyber.Scalar

		for i := range scalars {
			scalars[i], err = r.Scalar()
			if err != nil {
				return nil, xerrors.Errorf("response %d: %w", l, err)
			}
		}

		p.Responses[l] = Response{Z: scalars[0], W: scalars[1], V: scalars[2]}
	}

	p.R, err = r.Scalar()
	if err != nil {
		return nil, xerrors.Errorf("final randomness: %w", err)
	}

	return p, nil
}

// DecodeUnitVector parses a unit vector proof.
func DecodeUnitVector(data []byte) (*UnitVector, error) {
	r := group.NewReader(data)

	p, err := readUnitVector(r)
	if err != nil {
		return nil, xerrors.Errorf("unit vector proof: %w", err)
	}

	err = r.Done()
	if err != nil {
		return nil, xerrors.Errorf("unit vector proof: %w", err)
	}

	return p, nil
}

func writeAnnouncements(t *transcript, announcements []Announcement) {
	points := make([]kyber.Point, 0, 3*len(announcements))

	for _, a := range announcements {
		points = append(points, a.I.Point(), a.B.Point(), a.A.Point())
	}

	t.appendPoints("announcements", points...)
}

// bitLen returns the number of bits needed to index a vector of the given
// size, at least one.
func bitLen(size int) int {
	n := 1
	for (1 << n) < size {
		n++
	}

	return n
}

// bitPolynomial returns the coefficients [c0, c1] of the linear polynomial
// bit*x + beta when set is true, (1-bit)*x - beta otherwise.
func bitPolynomial(bit, beta kyber.Scalar, set bool) [2]kyber.Scalar {
	if set {
		return [2]kyber.Scalar{beta.Clone(), bit.Clone()}
	}

	return [2]kyber.Scalar{
		group.Suite.Scalar().Neg(beta),
		group.Suite.Scalar().Sub(group.One(), bit),
	}
}

// mulLinear multiplies the polynomial by a linear one.
func mulLinear(poly []kyber.Scalar, lin [2]kyber.Scalar) []kyber.Scalar {
	res := make([]kyber.Scalar, len(poly)+1)
	for i := range res {
		res[i] = group.Zero()
	}

	for i, c := range poly {
		res[i] = group.Suite.Scalar().Add(res[i], group.Suite.Scalar().Mul(c, lin[0]))
		res[i+1] = group.Suite.Scalar().Add(res[i+1], group.Suite.Scalar().Mul(c, lin[1]))
	}

	return res
}
