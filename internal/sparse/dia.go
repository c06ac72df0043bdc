package sparse

// DIA stores one dense lane per distinct diagonal offset (col - row).
// Lane d occupies Values[d*Stride : (d+1)*Stride] and its element r holds
// A[r, r+Offsets[d]]; positions outside the matrix are implicit zeros.
// Stride is NumRows rounded up to the configured alignment.
type DIA[I Index, V Value] struct {
	Header
	Offsets []I
	Stride  int
	Values  []V

	// Stored counts lane positions that fall inside the matrix.
	Stored int
}

func (m *DIA[I, V]) Format() Format { return FormatDIA }

// Lane returns the dense values of diagonal d.
func (m *DIA[I, V]) Lane(d int) []V {
	return m.Values[d*m.Stride : (d+1)*m.Stride]
}

// LaneRange returns the rows [lo, hi) for which diagonal offset k stays inside
// the matrix.
func LaneRange(rows, cols, k int) (lo, hi int) {
	lo = max(0, -k)
	hi = min(rows, cols-k)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func (m *DIA[I, V]) Diagonals() int { return len(m.Offsets) }

func (m *DIA[I, V]) Slots() int { return m.Stored }

func (m *DIA[I, V]) BytesPerSpMV() int64 {
	si, sv := SizeOf[I](), SizeOf[V]()
	bytes := si * int64(len(m.Offsets)) // diagonal offsets
	bytes += 2 * sv * int64(m.Stored)   // A[i,j] and x[j] for every in-range lane slot
	bytes += yBytes[V](m.NonEmptyRows)
	return bytes
}

func (m *DIA[I, V]) Release() {
	m.Offsets, m.Values = nil, nil
}
