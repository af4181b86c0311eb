package elgamal

import (
	"math"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/privote/crypto/group"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// ErrDecryption is returned when a plaintext falls outside the searchable
// range.
var ErrDecryption = xerrors.New("decryption error")

// tableBalance trades memory for speed: the baby steps table is that many
// times larger than the square root of the range, reducing the number of
// giant steps accordingly.
const tableBalance = 2

// Table solves discrete logarithms m*G -> m for m in [0, max] with the
// baby-step giant-step algorithm. A table is immutable once built and can be
// shared between goroutines.
type Table struct {
	max   uint64
	step  uint64
	baby  map[string]uint64
	giant kyber.Point
}

// NewTable precomputes the baby steps needed to search [0, max].
func NewTable(max uint64) *Table {
	step := uint64(math.Ceil(math.Sqrt(float64(max)))) * tableBalance
	if step == 0 {
		step = 1
	}

	baby := make(map[string]uint64, step)

	acc := group.Identity()
	for i := uint64(0); i < step; i++ {
		baby[string(group.EncodePoint(acc))] = i
		acc = group.Suite.Point().Add(acc, group.Generator())
	}

	// acc now holds step*G.
	giant := group.Suite.Point().Neg(acc)

	return &Table{
		max:   max,
		step:  step,
		baby:  baby,
		giant: giant,
	}
}

// Max returns the largest value the table can recover.
func (t *Table) Max() uint64 {
	return t.max
}

// Log returns m such that p = m*G. It fails with ErrDecryption when m is not
// in the range of the table.
func (t *Table) Log(p kyber.Point) (uint64, error) {
	acc := p.Clone()

	for j := uint64(0); j*t.step <= t.max; j++ {
		i, found := t.baby[string(group.EncodePoint(acc))]
		if found {
			m := j*t.step + i
			if m <= t.max {
				return m, nil
			}

			break
		}

		acc = group.Suite.Point().Add(acc, t.giant)
	}

	return 0, xerrors.Errorf("no value in [0, %d]: %w", t.max, ErrDecryption)
}

// DiscreteLogs solves every point concurrently with the table. The result
// has the same order as the input.
func DiscreteLogs(points []kyber.Point, table *Table) ([]uint64, error) {
	res := make([]uint64, len(points))

	g := errgroup.Group{}

	for i := range points {
		i := i

		g.Go(func() error {
			m, err := table.Log(points[i])
			if err != nil {
				return xerrors.Errorf("point #%d: %w", i, err)
			}

			res[i] = m

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return res, nil
}
