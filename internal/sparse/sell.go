package sparse

// SELL is the sliced padded layout (S-ELL): rows are grouped in chunks of
// ChunkRows consecutive rows and each chunk is padded to its own width.
//
// Chunk c starts at ChunkPtr[c] and is stored column-major: slot j of local
// row r lives at ChunkPtr[c] + j*ChunkRows + r. The last chunk is padded with
// sentinel rows up to ChunkRows.
type SELL[I Index, V Value] struct {
	Header
	ChunkRows int
	Widths    []I
	ChunkPtr  []int
	ColIdx    []I
	Values    []V
}

func (m *SELL[I, V]) Format() Format { return FormatSELL }

func (m *SELL[I, V]) Chunks() int { return len(m.Widths) }

func (m *SELL[I, V]) MaxWidth() int { return maxWidth(m.Widths) }

func (m *SELL[I, V]) Slots() int { return len(m.ColIdx) }

func (m *SELL[I, V]) BytesPerSpMV() int64 {
	si, sv := SizeOf[I](), SizeOf[V]()
	slots := int64(m.Slots())
	bytes := si * int64(len(m.Widths)) // chunk widths
	bytes += (si + sv) * slots         // column index and value per padded slot
	bytes += sv * int64(m.NumNNZ)      // x[j]
	bytes += yBytes[V](m.NonEmptyRows)
	return bytes
}

func (m *SELL[I, V]) Release() {
	m.Widths, m.ChunkPtr, m.ColIdx, m.Values = nil, nil, nil, nil
}

// Reordered is the length-sorted chunked layout shared by SELL-c-sigma
// (sorting inside windows of Window rows) and SELL-c-R (one global sort).
//
// Position p of the sorted order holds original row Reorder[p]. Chunk c covers
// sorted positions [c*ChunkRows, min((c+1)*ChunkRows, NumRows)) and is stored
// row-major: slot j of local row r lives at ChunkPtr[c] + r*Widths[c] + j.
type Reordered[I Index, V Value] struct {
	Header
	Kind      Format
	ChunkRows int
	Window    int
	Reorder   []I
	Widths    []I
	ChunkPtr  []int
	ColIdx    []I
	Values    []V
}

func (m *Reordered[I, V]) Format() Format { return m.Kind }

func (m *Reordered[I, V]) Chunks() int { return len(m.Widths) }

func (m *Reordered[I, V]) MaxWidth() int { return maxWidth(m.Widths) }

func (m *Reordered[I, V]) Slots() int { return len(m.ColIdx) }

func (m *Reordered[I, V]) BytesPerSpMV() int64 {
	si, sv := SizeOf[I](), SizeOf[V]()
	slots := int64(m.Slots())
	bytes := si * int64(len(m.Widths)) // chunk widths
	bytes += si * int64(m.NumRows)     // reorder permutation
	bytes += (si + sv) * slots         // column index and value per padded slot
	bytes += sv * int64(m.NumNNZ)      // x[j]
	bytes += yBytes[V](m.NonEmptyRows)
	return bytes
}

func (m *Reordered[I, V]) Release() {
	m.Reorder, m.Widths, m.ChunkPtr, m.ColIdx, m.Values = nil, nil, nil, nil, nil
}

func maxWidth[I Index](widths []I) int {
	w := 0
	for _, c := range widths {
		w = max(w, int(c))
	}
	return w
}
