package convert

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samcharles93/lespmv/internal/sparse"
)

// ToSELLSigma sorts rows by nonzero count inside consecutive windows of
// window rows, then chunks the sorted order. Rows never leave their window.
func ToSELLSigma[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], chunkRows, window int) (*sparse.Reordered[I, V], error) {
	return reordered(m, sparse.FormatSELLSigma, chunkRows, window)
}

// ToSELLR sorts all rows by nonzero count before chunking.
func ToSELLR[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], chunkRows int) (*sparse.Reordered[I, V], error) {
	return reordered(m, sparse.FormatSELLR, chunkRows, m.NumRows)
}

// SortRows returns the permutation sorted position -> original row. Inside
// each window rows are ordered by nonzero count descending, ties by original
// row ascending.
func SortRows[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], window int) []I {
	perm := make([]I, m.NumRows)
	for i := range perm {
		perm[i] = I(i)
	}
	if window <= 1 {
		return perm
	}
	byLength := func(a, b I) int {
		if c := cmp.Compare(m.RowLen(int(b)), m.RowLen(int(a))); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
	for lo := 0; lo < m.NumRows; lo += window {
		slices.SortFunc(perm[lo:min(lo+window, m.NumRows)], byLength)
	}
	return perm
}

func reordered[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], kind sparse.Format, chunkRows, window int) (*sparse.Reordered[I, V], error) {
	perm := SortRows(m, window)
	if err := checkPermutation(kind, perm); err != nil {
		return nil, err
	}

	chunks := ceilDiv(m.NumRows, chunkRows)
	out := &sparse.Reordered[I, V]{
		Header: sparse.Header{
			NumRows:      m.NumRows,
			NumCols:      m.NumCols,
			NumNNZ:       m.NumNNZ,
			NonEmptyRows: m.NonEmptyRows,
		},
		Kind:      kind,
		ChunkRows: chunkRows,
		Window:    window,
		Reorder:   perm,
		Widths:    make([]I, chunks),
		ChunkPtr:  make([]int, chunks+1),
	}

	for c := 0; c < chunks; c++ {
		lo, hi := c*chunkRows, min((c+1)*chunkRows, m.NumRows)
		width := 0
		for p := lo; p < hi; p++ {
			width = max(width, m.RowLen(int(perm[p])))
		}
		out.Widths[c] = I(width)
		out.ChunkPtr[c+1] = out.ChunkPtr[c] + width*(hi-lo)
	}

	total := out.ChunkPtr[chunks]
	out.ColIdx = make([]I, total)
	out.Values = make([]V, total)
	for i := range out.ColIdx {
		out.ColIdx[i] = sparse.Sentinel
	}

	for c := 0; c < chunks; c++ {
		base, width := out.ChunkPtr[c], int(out.Widths[c])
		for p := c * chunkRows; p < min((c+1)*chunkRows, m.NumRows); p++ {
			r := int(perm[p])
			start := int(m.RowPtr[r])
			slot := base + (p-c*chunkRows)*width
			for j := 0; j < m.RowLen(r); j++ {
				out.ColIdx[slot+j] = m.ColIdx[start+j]
				out.Values[slot+j] = m.Values[start+j]
			}
		}
	}

	if err := checkStored(kind, countReal(out.ColIdx), m.NumNNZ); err != nil {
		return nil, err
	}
	return out, nil
}

// checkPermutation verifies that perm is a bijection over [0, len(perm)).
func checkPermutation[I sparse.Index](kind sparse.Format, perm []I) error {
	seen := make([]bool, len(perm))
	for _, r := range perm {
		if r < 0 || int(r) >= len(perm) || seen[r] {
			return fmt.Errorf("%s: reorder is not a permutation of [0,%d): %w", kind, len(perm), sparse.ErrInvariant)
		}
		seen[r] = true
	}
	return nil
}
