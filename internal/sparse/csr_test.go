package sparse

import (
	"errors"
	"testing"
)

func TestNewCSRValidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rows   int
		cols   int
		rowPtr []int32
		colIdx []int32
		values []float64
	}{
		{"short row offsets", 2, 2, []int32{0, 1}, []int32{0}, []float64{1}},
		{"nonzero start", 1, 2, []int32{1, 1}, []int32{0}, []float64{1}},
		{"decreasing offsets", 2, 2, []int32{0, 2, 1}, []int32{0, 1}, []float64{1, 2}},
		{"bad last offset", 1, 2, []int32{0, 1}, []int32{0, 1}, []float64{1, 2}},
		{"column out of range", 1, 2, []int32{0, 1}, []int32{2}, []float64{1}},
		{"negative column", 1, 2, []int32{0, 1}, []int32{-1}, []float64{1}},
		{"length mismatch", 1, 2, []int32{0, 1}, []int32{0}, []float64{1, 2}},
	}
	for _, tc := range tests {
		_, err := NewCSR(tc.rows, tc.cols, tc.rowPtr, tc.colIdx, tc.values)
		if !errors.Is(err, ErrShape) {
			t.Errorf("%s: expected ErrShape, got %v", tc.name, err)
		}
	}
}

func TestNewCSRCountsRows(t *testing.T) {
	t.Parallel()

	// Row 1 is empty.
	m, err := NewCSR(3, 4, []int64{0, 2, 2, 3}, []int64{0, 3, 1}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("NewCSR: %v", err)
	}
	if m.NumNNZ != 3 || m.NonEmptyRows != 2 {
		t.Fatalf("expected nnz=3 nonEmpty=2, got nnz=%d nonEmpty=%d", m.NumNNZ, m.NonEmptyRows)
	}
	if got := m.MaxRowLen(); got != 2 {
		t.Fatalf("MaxRowLen: expected 2, got %d", got)
	}
	if m.Format() != FormatCSR || m.Slots() != 3 {
		t.Fatalf("unexpected format %s or slots %d", m.Format(), m.Slots())
	}
}

func TestCSRBytesCountOnlyNonEmptyRows(t *testing.T) {
	t.Parallel()

	m, err := NewCSR(3, 4, []int32{0, 2, 2, 3}, []int32{0, 3, 1}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewCSR: %v", err)
	}
	// 4*4 row offsets + 4*3 columns + 2*8*3 values and x + 2*8*2 y.
	want := int64(16 + 12 + 48 + 32)
	if got := m.BytesPerSpMV(); got != want {
		t.Fatalf("BytesPerSpMV: expected %d, got %d", want, got)
	}
}

func TestCSRCloneOwnsBuffers(t *testing.T) {
	t.Parallel()

	m, err := NewCSR(2, 2, []int32{0, 1, 2}, []int32{0, 1}, []float64{1, 2})
	if err != nil {
		t.Fatalf("NewCSR: %v", err)
	}
	m.Perf.Iterations = 7
	c := m.Clone()
	c.Values[0] = 99
	c.ColIdx[1] = 0
	if m.Values[0] != 1 || m.ColIdx[1] != 1 {
		t.Fatal("clone shares storage with its source")
	}
	if c.Perf.Iterations != 0 {
		t.Fatal("clone should start with fresh metrics")
	}

	c.Release()
	if c.Values != nil || m.Values == nil {
		t.Fatal("release should only drop the clone's buffers")
	}
}

func TestFormatTextRoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range KernelFormats() {
		b, err := f.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%s): %v", f, err)
		}
		var got Format
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != f {
			t.Fatalf("round trip: expected %s, got %s", f, got)
		}
	}
	if _, err := ParseFormat("bsr"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unknown format, got %v", err)
	}
	if f, err := ParseFormat(" SELL "); err != nil || f != FormatSELL {
		t.Fatalf("ParseFormat alias: got %s, %v", f, err)
	}
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	if o, err := ParseOrder("col"); err != nil || o != ColMajor {
		t.Fatalf("ParseOrder(col): got %s, %v", o, err)
	}
	if o, err := ParseOrder(""); err != nil || o != RowMajor {
		t.Fatalf("ParseOrder(empty): got %s, %v", o, err)
	}
	if _, err := ParseOrder("diagonal"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
