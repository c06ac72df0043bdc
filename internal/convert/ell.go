package convert

import (
	"github.com/samcharles93/lespmv/internal/sparse"
)

// ToELL pads every row to the longest row of m.
func ToELL[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], order sparse.Order) (*sparse.ELL[I, V], error) {
	width := m.MaxRowLen()
	slots := m.NumRows * width

	out := &sparse.ELL[I, V]{
		Header: sparse.Header{
			NumRows:      m.NumRows,
			NumCols:      m.NumCols,
			NumNNZ:       m.NumNNZ,
			NonEmptyRows: m.NonEmptyRows,
		},
		Width:  width,
		Order:  order,
		ColIdx: make([]I, slots),
		Values: make([]V, slots),
	}
	for i := range out.ColIdx {
		out.ColIdx[i] = sparse.Sentinel
	}

	for r := 0; r < m.NumRows; r++ {
		start := int(m.RowPtr[r])
		for j := 0; j < m.RowLen(r); j++ {
			pos := out.Slot(r, j)
			out.ColIdx[pos] = m.ColIdx[start+j]
			out.Values[pos] = m.Values[start+j]
		}
	}

	if err := checkStored(sparse.FormatELL, countReal(out.ColIdx), m.NumNNZ); err != nil {
		return nil, err
	}
	return out, nil
}
