package convert

import (
	"github.com/samcharles93/lespmv/internal/sparse"
)

// ToSELL groups consecutive rows into chunks of chunkRows and pads each chunk
// to its own longest row.
func ToSELL[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], chunkRows int) (*sparse.SELL[I, V], error) {
	chunks := ceilDiv(m.NumRows, chunkRows)
	out := &sparse.SELL[I, V]{
		Header: sparse.Header{
			NumRows:      m.NumRows,
			NumCols:      m.NumCols,
			NumNNZ:       m.NumNNZ,
			NonEmptyRows: m.NonEmptyRows,
		},
		ChunkRows: chunkRows,
		Widths:    make([]I, chunks),
		ChunkPtr:  make([]int, chunks+1),
	}

	for c := 0; c < chunks; c++ {
		width := 0
		for r := c * chunkRows; r < min((c+1)*chunkRows, m.NumRows); r++ {
			width = max(width, m.RowLen(r))
		}
		out.Widths[c] = I(width)
		out.ChunkPtr[c+1] = out.ChunkPtr[c] + width*chunkRows
	}

	total := out.ChunkPtr[chunks]
	out.ColIdx = make([]I, total)
	out.Values = make([]V, total)
	for i := range out.ColIdx {
		out.ColIdx[i] = sparse.Sentinel
	}

	for c := 0; c < chunks; c++ {
		base := out.ChunkPtr[c]
		for lr := 0; lr < chunkRows; lr++ {
			r := c*chunkRows + lr
			if r >= m.NumRows {
				break
			}
			start := int(m.RowPtr[r])
			for j := 0; j < m.RowLen(r); j++ {
				pos := base + j*chunkRows + lr
				out.ColIdx[pos] = m.ColIdx[start+j]
				out.Values[pos] = m.Values[start+j]
			}
		}
	}

	if err := checkStored(sparse.FormatSELL, countReal(out.ColIdx), m.NumNNZ); err != nil {
		return nil, err
	}
	return out, nil
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
