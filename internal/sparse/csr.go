package sparse

import "fmt"

// CSR is the canonical row-compressed layout. Entries [RowPtr[r], RowPtr[r+1])
// of ColIdx and Values hold row r. Column indices need not be sorted.
type CSR[I Index, V Value] struct {
	Header
	RowPtr []I
	ColIdx []I
	Values []V
}

// NewCSR wraps the given arrays after checking the row-compressed invariants.
// The arrays become owned by the returned matrix.
func NewCSR[I Index, V Value](rows, cols int, rowPtr, colIdx []I, values []V) (*CSR[I, V], error) {
	m := &CSR[I, V]{
		Header: Header{NumRows: rows, NumCols: cols},
		RowPtr: rowPtr,
		ColIdx: colIdx,
		Values: values,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.NumNNZ = len(colIdx)
	m.NonEmptyRows = countNonEmpty(rowPtr)
	return m, nil
}

// Validate checks offsets, lengths and column bounds.
func (m *CSR[I, V]) Validate() error {
	if m.NumRows < 0 || m.NumCols < 0 {
		return fmt.Errorf("csr: negative dimension %dx%d: %w", m.NumRows, m.NumCols, ErrShape)
	}
	if len(m.RowPtr) != m.NumRows+1 {
		return fmt.Errorf("csr: row offsets length %d, want %d: %w", len(m.RowPtr), m.NumRows+1, ErrShape)
	}
	if len(m.ColIdx) != len(m.Values) {
		return fmt.Errorf("csr: %d column indices but %d values: %w", len(m.ColIdx), len(m.Values), ErrShape)
	}
	if m.RowPtr[0] != 0 {
		return fmt.Errorf("csr: row offsets must start at 0, got %d: %w", m.RowPtr[0], ErrShape)
	}
	if int(m.RowPtr[m.NumRows]) != len(m.ColIdx) {
		return fmt.Errorf("csr: last row offset %d, want %d: %w", m.RowPtr[m.NumRows], len(m.ColIdx), ErrShape)
	}
	for r := 0; r < m.NumRows; r++ {
		if m.RowPtr[r+1] < m.RowPtr[r] {
			return fmt.Errorf("csr: row offsets decrease at row %d: %w", r, ErrShape)
		}
	}
	for i, c := range m.ColIdx {
		if c < 0 || int(c) >= m.NumCols {
			return fmt.Errorf("csr: column %d of entry %d out of range [0,%d): %w", c, i, m.NumCols, ErrShape)
		}
	}
	return nil
}

func (m *CSR[I, V]) Format() Format { return FormatCSR }

func (m *CSR[I, V]) Slots() int { return len(m.ColIdx) }

// RowLen is the number of stored entries in row r.
func (m *CSR[I, V]) RowLen(r int) int {
	return int(m.RowPtr[r+1] - m.RowPtr[r])
}

// MaxRowLen scans all rows once.
func (m *CSR[I, V]) MaxRowLen() int {
	width := 0
	for r := 0; r < m.NumRows; r++ {
		width = max(width, m.RowLen(r))
	}
	return width
}

func (m *CSR[I, V]) BytesPerSpMV() int64 {
	si, sv := SizeOf[I](), SizeOf[V]()
	bytes := si * int64(m.NumRows+1)   // row offsets
	bytes += si * int64(m.NumNNZ)      // column indices
	bytes += 2 * sv * int64(m.NumNNZ)  // A[i,j] and x[j]
	bytes += yBytes[V](m.NonEmptyRows) // y[i] = alpha*sum + beta*y[i]
	return bytes
}

// Clone returns a deep copy with its own buffers and fresh metrics.
func (m *CSR[I, V]) Clone() *CSR[I, V] {
	out := &CSR[I, V]{
		Header: Header{
			NumRows:      m.NumRows,
			NumCols:      m.NumCols,
			NumNNZ:       m.NumNNZ,
			NonEmptyRows: m.NonEmptyRows,
		},
		RowPtr: make([]I, len(m.RowPtr)),
		ColIdx: make([]I, len(m.ColIdx)),
		Values: make([]V, len(m.Values)),
	}
	copy(out.RowPtr, m.RowPtr)
	copy(out.ColIdx, m.ColIdx)
	copy(out.Values, m.Values)
	return out
}

func (m *CSR[I, V]) Release() {
	m.RowPtr, m.ColIdx, m.Values = nil, nil, nil
}
