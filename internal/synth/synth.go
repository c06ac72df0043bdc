// Package synth generates reproducible sparse matrices with known structure:
// pure diagonals, bands, uniform random rows and power-law row lengths.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samcharles93/lespmv/internal/sparse"
)

type Kind string

const (
	Diagonal Kind = "diagonal"
	Banded   Kind = "banded"
	Random   Kind = "random"
	PowerLaw Kind = "powerlaw"
)

func Kinds() []Kind { return []Kind{Diagonal, Banded, Random, PowerLaw} }

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Diagonal, Banded, Random, PowerLaw:
		return k, nil
	case "power-law":
		return PowerLaw, nil
	}
	return "", fmt.Errorf("unknown generator %q: %w", s, sparse.ErrConfiguration)
}

// Spec describes a generated matrix.
type Spec struct {
	Kind Kind `json:"kind" yaml:"kind"`
	Rows int  `json:"rows" yaml:"rows"`
	// Cols defaults to Rows.
	Cols int `json:"cols,omitempty" yaml:"cols,omitempty"`
	// RowNNZ is the nonzeros per row of Random and the mean row length of
	// PowerLaw.
	RowNNZ int `json:"row_nnz,omitempty" yaml:"row_nnz,omitempty"`
	// Bandwidth is the half bandwidth of Banded.
	Bandwidth int    `json:"bandwidth,omitempty" yaml:"bandwidth,omitempty"`
	Seed      uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

func (s Spec) cols() int {
	if s.Cols <= 0 {
		return s.Rows
	}
	return s.Cols
}

// Name is a short label for reports.
func (s Spec) Name() string {
	switch s.Kind {
	case Banded:
		return fmt.Sprintf("banded-%dx%d-bw%d", s.Rows, s.cols(), s.Bandwidth)
	case Random, PowerLaw:
		return fmt.Sprintf("%s-%dx%d-k%d-s%d", s.Kind, s.Rows, s.cols(), s.RowNNZ, s.Seed)
	default:
		return fmt.Sprintf("%s-%dx%d", s.Kind, s.Rows, s.cols())
	}
}

func (s Spec) Validate() error {
	if s.Rows <= 0 {
		return fmt.Errorf("synth: rows must be positive, got %d: %w", s.Rows, sparse.ErrConfiguration)
	}
	switch s.Kind {
	case Diagonal:
	case Banded:
		if s.Bandwidth < 0 {
			return fmt.Errorf("synth: negative bandwidth %d: %w", s.Bandwidth, sparse.ErrConfiguration)
		}
	case Random, PowerLaw:
		if s.RowNNZ <= 0 {
			return fmt.Errorf("synth: %s needs row_nnz > 0: %w", s.Kind, sparse.ErrConfiguration)
		}
	default:
		return fmt.Errorf("synth: unknown generator %q: %w", s.Kind, sparse.ErrConfiguration)
	}
	return nil
}

// Generate builds the matrix described by s. The same Spec always yields the
// same matrix.
func Generate[I sparse.Index, V sparse.Value](s Spec) (*sparse.CSR[I, V], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rows, cols := s.Rows, s.cols()
	if sparse.SizeOf[I]() == 4 && (rows > math.MaxInt32 || cols > math.MaxInt32) {
		return nil, fmt.Errorf("synth: %dx%d does not fit 32-bit indices: %w", rows, cols, sparse.ErrConfiguration)
	}
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))

	b := builder[I, V]{rowPtr: make([]I, 1, rows+1)}
	switch s.Kind {
	case Diagonal:
		for r := range rows {
			if r < cols {
				b.add(r, V(r+1))
			}
			b.endRow()
		}
	case Banded:
		for r := range rows {
			for c := max(0, r-s.Bandwidth); c <= min(cols-1, r+s.Bandwidth); c++ {
				b.add(c, value[V](rng))
			}
			b.endRow()
		}
	case Random:
		k := min(s.RowNNZ, cols)
		for range rows {
			b.addRandom(rng, cols, k)
			b.endRow()
		}
	case PowerLaw:
		// Pareto row lengths with shape 2 have mean 2*Xm.
		lengths := distuv.Pareto{Xm: float64(s.RowNNZ) / 2, Alpha: 2, Src: rand.NewPCG(s.Seed+1, s.Seed)}
		for range rows {
			k := min(cols, int(lengths.Rand()))
			b.addRandom(rng, cols, k)
			b.endRow()
		}
	}
	return sparse.NewCSR(rows, cols, b.rowPtr, b.colIdx, b.values)
}

type builder[I sparse.Index, V sparse.Value] struct {
	rowPtr []I
	colIdx []I
	values []V
	seen   map[int]struct{}
	row    []int
}

func (b *builder[I, V]) add(col int, v V) {
	b.colIdx = append(b.colIdx, I(col))
	b.values = append(b.values, v)
}

func (b *builder[I, V]) endRow() {
	b.rowPtr = append(b.rowPtr, I(len(b.colIdx)))
}

// addRandom appends k distinct columns drawn uniformly from [0, cols), in
// ascending order.
func (b *builder[I, V]) addRandom(rng *rand.Rand, cols, k int) {
	if k <= 0 {
		return
	}
	b.row = b.row[:0]
	if 2*k >= cols {
		for _, c := range rng.Perm(cols)[:k] {
			b.row = append(b.row, c)
		}
	} else {
		if b.seen == nil {
			b.seen = make(map[int]struct{}, k)
		}
		clear(b.seen)
		for len(b.row) < k {
			c := rng.IntN(cols)
			if _, dup := b.seen[c]; dup {
				continue
			}
			b.seen[c] = struct{}{}
			b.row = append(b.row, c)
		}
	}
	slices.Sort(b.row)
	for _, c := range b.row {
		b.add(c, value[V](rng))
	}
}

// value draws from [-1, 1) away from zero so stored entries stay nonzero.
func value[V sparse.Value](rng *rand.Rand) V {
	v := 2*rng.Float64() - 1
	if math.Abs(v) < 1e-3 {
		v = 1
	}
	return V(v)
}
