package convert

import (
	"github.com/samcharles93/lespmv/internal/sparse"
)

// ToCOO expands the row offsets of m into explicit row indices. Entries keep
// the CSR order, so the result is row-sorted and holds no duplicates.
func ToCOO[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V]) *sparse.COO[I, V] {
	out := &sparse.COO[I, V]{
		Header: sparse.Header{
			NumRows:      m.NumRows,
			NumCols:      m.NumCols,
			NumNNZ:       m.NumNNZ,
			NonEmptyRows: m.NonEmptyRows,
		},
		RowIdx: make([]I, len(m.ColIdx)),
		ColIdx: append([]I(nil), m.ColIdx...),
		Values: append([]V(nil), m.Values...),
	}
	for r := 0; r < m.NumRows; r++ {
		for p := m.RowPtr[r]; p < m.RowPtr[r+1]; p++ {
			out.RowIdx[p] = I(r)
		}
	}
	return out
}
