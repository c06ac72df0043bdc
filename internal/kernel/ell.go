package kernel

import (
	"github.com/samcharles93/lespmv/internal/sparse"
)

// ELL computes y = alpha*A*x + beta*y on the padded-width layout.
func ELL[I sparse.Index, V sparse.Value](e Exec, alpha V, m *sparse.ELL[I, V], x []V, beta V, y []V) {
	mustFit(m.NumRows, m.NumCols, x, y)
	if m.Order == sparse.ColMajor {
		e.run(m.NumRows, defaultRowGrain, func(rs, re int) {
			ellColRange(alpha, m, x, beta, y, rs, re)
		})
		return
	}
	e.run(m.NumRows, defaultRowGrain, func(rs, re int) {
		ellRowRange(alpha, m, x, beta, y, rs, re)
	})
}

func ellRowRange[I sparse.Index, V sparse.Value](alpha V, m *sparse.ELL[I, V], x []V, beta V, y []V, rs, re int) {
	w := m.Width
	for r := rs; r < re; r++ {
		cols := m.ColIdx[r*w : (r+1)*w]
		vals := m.Values[r*w : (r+1)*w]
		var sum V
		for j, c := range cols {
			if c < 0 {
				continue
			}
			sum += vals[j] * x[c]
		}
		y[r] = alpha*sum + beta*y[r]
	}
}

func ellColRange[I sparse.Index, V sparse.Value](alpha V, m *sparse.ELL[I, V], x []V, beta V, y []V, rs, re int) {
	rows := m.NumRows
	for r := rs; r < re; r++ {
		var sum V
		for j := 0; j < m.Width; j++ {
			pos := j*rows + r
			c := m.ColIdx[pos]
			if c < 0 {
				continue
			}
			sum += m.Values[pos] * x[c]
		}
		y[r] = alpha*sum + beta*y[r]
	}
}
