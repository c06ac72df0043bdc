package kernel

import (
	"github.com/samcharles93/lespmv/internal/sparse"
)

// diaBlock is the number of rows accumulated in one stack buffer.
const diaBlock = 256

// DIA computes y = alpha*A*x + beta*y on the diagonal layout. Rows, not
// diagonals, are partitioned: each range walks every lane over its own rows
// and accumulates into a local buffer before the single store per row.
func DIA[I sparse.Index, V sparse.Value](e Exec, alpha V, m *sparse.DIA[I, V], x []V, beta V, y []V) {
	mustFit(m.NumRows, m.NumCols, x, y)
	e.run(m.NumRows, defaultRowGrain, func(rs, re int) {
		for bs := rs; bs < re; bs += diaBlock {
			diaBlockRange(alpha, m, x, beta, y, bs, min(bs+diaBlock, re))
		}
	})
}

func diaBlockRange[I sparse.Index, V sparse.Value](alpha V, m *sparse.DIA[I, V], x []V, beta V, y []V, bs, be int) {
	var acc [diaBlock]V
	for d, off := range m.Offsets {
		k := int(off)
		lo, hi := sparse.LaneRange(m.NumRows, m.NumCols, k)
		lo, hi = max(lo, bs), min(hi, be)
		if lo >= hi {
			continue
		}
		lane := m.Values[d*m.Stride : d*m.Stride+hi]
		for r := lo; r < hi; r++ {
			acc[r-bs] += lane[r] * x[r+k]
		}
	}
	for r := bs; r < be; r++ {
		y[r] = alpha*acc[r-bs] + beta*y[r]
	}
}
