package kernel

import (
	"slices"

	"github.com/samcharles93/lespmv/internal/sparse"
)

// COO computes y = alpha*A*x + beta*y on a row-sorted coordinate matrix. Work
// is split on row boundaries so every worker owns a disjoint slice of y.
func COO[I sparse.Index, V sparse.Value](e Exec, alpha V, m *sparse.COO[I, V], x []V, beta V, y []V) {
	mustFit(m.NumRows, m.NumCols, x, y)
	e.run(m.NumRows, defaultRowGrain, func(rs, re int) {
		cooRange(alpha, m, x, beta, y, rs, re)
	})
}

func cooRange[I sparse.Index, V sparse.Value](alpha V, m *sparse.COO[I, V], x []V, beta V, y []V, rs, re int) {
	rowIdx, colIdx, values := m.RowIdx, m.ColIdx, m.Values
	p, _ := slices.BinarySearch(rowIdx, I(rs))
	for r := rs; r < re; r++ {
		var sum V
		for ; p < len(rowIdx) && int(rowIdx[p]) == r; p++ {
			sum += values[p] * x[colIdx[p]]
		}
		y[r] = alpha*sum + beta*y[r]
	}
}
