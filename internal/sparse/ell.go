package sparse

// ELL stores every row in Width slots. Unused slots carry Sentinel in ColIdx
// and zero in Values.
//
// RowMajor: slot j of row r lives at r*Width + j.
// ColMajor: slot j of row r lives at j*NumRows + r.
type ELL[I Index, V Value] struct {
	Header
	Width  int
	Order  Order
	ColIdx []I
	Values []V
}

func (m *ELL[I, V]) Format() Format { return FormatELL }

// Slot returns the storage position of slot j of row r.
func (m *ELL[I, V]) Slot(r, j int) int {
	if m.Order == ColMajor {
		return j*m.NumRows + r
	}
	return r*m.Width + j
}

func (m *ELL[I, V]) MaxWidth() int { return m.Width }

func (m *ELL[I, V]) Slots() int { return m.NumRows * m.Width }

func (m *ELL[I, V]) BytesPerSpMV() int64 {
	si, sv := SizeOf[I](), SizeOf[V]()
	slots := int64(m.Slots())
	bytes := si * slots           // column index, padding included
	bytes += sv * slots           // A[i,j], padding included
	bytes += sv * int64(m.NumNNZ) // x[j], sentinels skip the gather
	bytes += yBytes[V](m.NonEmptyRows)
	return bytes
}

func (m *ELL[I, V]) Release() {
	m.ColIdx, m.Values = nil, nil
}
