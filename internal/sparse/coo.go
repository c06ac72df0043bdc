package sparse

import (
	"cmp"
	"slices"
)

// COO is the coordinate layout. Ingested matrices may list entries in any
// order and repeat a (row, col) pair; the kernel only accepts row-sorted ones.
type COO[I Index, V Value] struct {
	Header
	RowIdx []I
	ColIdx []I
	Values []V
}

// NewCOO returns an empty rows x cols coordinate matrix.
func NewCOO[I Index, V Value](rows, cols, capacity int) *COO[I, V] {
	if rows < 0 || cols < 0 {
		panic("negative dimension for coo matrix")
	}
	return &COO[I, V]{
		Header: Header{NumRows: rows, NumCols: cols},
		RowIdx: make([]I, 0, capacity),
		ColIdx: make([]I, 0, capacity),
		Values: make([]V, 0, capacity),
	}
}

// Append adds one entry. Out-of-range indices are programmer errors.
func (m *COO[I, V]) Append(row, col int, v V) {
	if row < 0 || row >= m.NumRows {
		panic("row index out of range")
	}
	if col < 0 || col >= m.NumCols {
		panic("column index out of range")
	}
	m.RowIdx = append(m.RowIdx, I(row))
	m.ColIdx = append(m.ColIdx, I(col))
	m.Values = append(m.Values, v)
	m.NumNNZ = len(m.Values)
}

func (m *COO[I, V]) Format() Format { return FormatCOO }

func (m *COO[I, V]) Slots() int { return len(m.Values) }

func (m *COO[I, V]) BytesPerSpMV() int64 {
	si, sv := SizeOf[I](), SizeOf[V]()
	occupied := make([]bool, m.NumRows)
	nonEmpty := 0
	for _, r := range m.RowIdx {
		if !occupied[r] {
			occupied[r] = true
			nonEmpty++
		}
	}
	bytes := 2 * si * int64(m.NumNNZ) // row and column indices
	bytes += 2 * sv * int64(m.NumNNZ) // A[i,j] and x[j]
	bytes += yBytes[V](nonEmpty)
	return bytes
}

// RowSorted reports whether row indices never decrease, which the COO kernel
// relies on to split work on row boundaries.
func (m *COO[I, V]) RowSorted() bool {
	return slices.IsSorted(m.RowIdx)
}

func (m *COO[I, V]) Release() {
	m.RowIdx, m.ColIdx, m.Values = nil, nil, nil
}

// ToCSR canonicalizes the entries: rows in order, columns sorted within a
// row, and duplicate (row, col) pairs summed into a single entry.
func (m *COO[I, V]) ToCSR() *CSR[I, V] {
	n := len(m.Values)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		if c := cmp.Compare(m.RowIdx[a], m.RowIdx[b]); c != 0 {
			return c
		}
		return cmp.Compare(m.ColIdx[a], m.ColIdx[b])
	})

	rowPtr := make([]I, m.NumRows+1)
	colIdx := make([]I, 0, n)
	values := make([]V, 0, n)
	lastRow, lastCol := I(-1), I(-1)
	for _, p := range perm {
		r, c := m.RowIdx[p], m.ColIdx[p]
		if r == lastRow && c == lastCol {
			values[len(values)-1] += m.Values[p]
			continue
		}
		colIdx = append(colIdx, c)
		values = append(values, m.Values[p])
		rowPtr[r+1]++
		lastRow, lastCol = r, c
	}
	for r := 0; r < m.NumRows; r++ {
		rowPtr[r+1] += rowPtr[r]
	}

	return &CSR[I, V]{
		Header: Header{
			NumRows:      m.NumRows,
			NumCols:      m.NumCols,
			NumNNZ:       len(colIdx),
			NonEmptyRows: countNonEmpty(rowPtr),
		},
		RowPtr: rowPtr,
		ColIdx: slices.Clip(colIdx),
		Values: slices.Clip(values),
	}
}
