package convert

import (
	"fmt"

	"github.com/samcharles93/lespmv/internal/sparse"
)

// ToDIA collects the distinct diagonal offsets of m and scatters every
// nonzero into its lane. It fails with ErrStructuralLimit, returning no
// matrix, when there are more than maxDiags offsets.
func ToDIA[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], maxDiags, alignment int) (*sparse.DIA[I, V], error) {
	rows, cols := m.NumRows, m.NumCols

	// lane[k+rows-1] is the lane index of offset k, or -1.
	span := max(rows+cols-1, 0)
	lane := make([]int, span)
	for i := range lane {
		lane[i] = -1
	}
	distinct := 0
	for r := 0; r < rows; r++ {
		for p := m.RowPtr[r]; p < m.RowPtr[r+1]; p++ {
			key := int(m.ColIdx[p]) - r + rows - 1
			if lane[key] < 0 {
				lane[key] = 0
				distinct++
			}
		}
	}
	if distinct > maxDiags {
		return nil, fmt.Errorf("dia: %d distinct diagonals exceed cap %d: %w", distinct, maxDiags, sparse.ErrStructuralLimit)
	}

	// Offsets ascending.
	offsets := make([]I, 0, distinct)
	for key := range lane {
		if lane[key] < 0 {
			continue
		}
		lane[key] = len(offsets)
		offsets = append(offsets, I(key-rows+1))
	}

	stride := roundUp(rows, alignment)
	out := &sparse.DIA[I, V]{
		Header: sparse.Header{
			NumRows:      rows,
			NumCols:      cols,
			NumNNZ:       m.NumNNZ,
			NonEmptyRows: m.NonEmptyRows,
		},
		Offsets: offsets,
		Stride:  stride,
		Values:  make([]V, len(offsets)*stride),
	}
	for _, k := range offsets {
		lo, hi := sparse.LaneRange(rows, cols, int(k))
		out.Stored += hi - lo
	}

	// Only writes that land inside their lane count towards the source nnz.
	scattered := 0
	for r := 0; r < rows; r++ {
		for p := m.RowPtr[r]; p < m.RowPtr[r+1]; p++ {
			d := lane[int(m.ColIdx[p])-r+rows-1]
			if lo, hi := sparse.LaneRange(rows, cols, int(offsets[d])); r < lo || r >= hi {
				continue
			}
			out.Values[d*stride+r] += m.Values[p]
			scattered++
		}
	}

	if err := checkStored(sparse.FormatDIA, scattered, m.NumNNZ); err != nil {
		return nil, err
	}
	return out, nil
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
