package kernel

import (
	"github.com/samcharles93/lespmv/internal/sparse"
)

// SELL computes y = alpha*A*x + beta*y on the sliced layout, one chunk per
// work unit.
func SELL[I sparse.Index, V sparse.Value](e Exec, alpha V, m *sparse.SELL[I, V], x []V, beta V, y []V) {
	mustFit(m.NumRows, m.NumCols, x, y)
	e.run(m.Chunks(), defaultChunkGrain, func(cs, ce int) {
		for c := cs; c < ce; c++ {
			sellChunk(alpha, m, x, beta, y, c)
		}
	})
}

func sellChunk[I sparse.Index, V sparse.Value](alpha V, m *sparse.SELL[I, V], x []V, beta V, y []V, c int) {
	cr := m.ChunkRows
	base, width := m.ChunkPtr[c], int(m.Widths[c])
	first := c * cr
	for lr := 0; lr < min(cr, m.NumRows-first); lr++ {
		var sum V
		for j := 0; j < width; j++ {
			pos := base + j*cr + lr
			col := m.ColIdx[pos]
			if col < 0 {
				continue
			}
			sum += m.Values[pos] * x[col]
		}
		r := first + lr
		y[r] = alpha*sum + beta*y[r]
	}
}

// Reordered computes y = alpha*A*x + beta*y on SELL-c-sigma and SELL-c-R.
// Sorted position p writes y[Reorder[p]]; chunks partition the sorted
// positions and Reorder is a bijection, so chunks own disjoint y slots.
func Reordered[I sparse.Index, V sparse.Value](e Exec, alpha V, m *sparse.Reordered[I, V], x []V, beta V, y []V) {
	mustFit(m.NumRows, m.NumCols, x, y)
	e.run(m.Chunks(), defaultChunkGrain, func(cs, ce int) {
		for c := cs; c < ce; c++ {
			reorderedChunk(alpha, m, x, beta, y, c)
		}
	})
}

func reorderedChunk[I sparse.Index, V sparse.Value](alpha V, m *sparse.Reordered[I, V], x []V, beta V, y []V, c int) {
	base, width := m.ChunkPtr[c], int(m.Widths[c])
	first := c * m.ChunkRows
	last := min(first+m.ChunkRows, m.NumRows)
	for p := first; p < last; p++ {
		slot := base + (p-first)*width
		cols := m.ColIdx[slot : slot+width]
		vals := m.Values[slot : slot+width]
		var sum V
		for j, col := range cols {
			if col < 0 {
				continue
			}
			sum += vals[j] * x[col]
		}
		dst := m.Reorder[p]
		y[dst] = alpha*sum + beta*y[dst]
	}
}
