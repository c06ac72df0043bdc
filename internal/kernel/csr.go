package kernel

import (
	"github.com/samcharles93/lespmv/internal/sparse"
)

// CSR computes y = alpha*A*x + beta*y on the canonical layout. It is also the
// reference every other kernel is validated against.
func CSR[I sparse.Index, V sparse.Value](e Exec, alpha V, m *sparse.CSR[I, V], x []V, beta V, y []V) {
	mustFit(m.NumRows, m.NumCols, x, y)
	e.run(m.NumRows, defaultRowGrain, func(rs, re int) {
		csrRange(alpha, m, x, beta, y, rs, re)
	})
}

func csrRange[I sparse.Index, V sparse.Value](alpha V, m *sparse.CSR[I, V], x []V, beta V, y []V, rs, re int) {
	rowPtr, colIdx, values := m.RowPtr, m.ColIdx, m.Values
	for r := rs; r < re; r++ {
		var sum V
		for p := rowPtr[r]; p < rowPtr[r+1]; p++ {
			sum += values[p] * x[colIdx[p]]
		}
		y[r] = alpha*sum + beta*y[r]
	}
}

func mustFit[V sparse.Value](rows, cols int, x, y []V) {
	if len(x) < cols || len(y) < rows {
		panic("spmv shape mismatch")
	}
}
