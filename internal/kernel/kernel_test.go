package kernel

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/lespmv/internal/convert"
	"github.com/samcharles93/lespmv/internal/parallel"
	"github.com/samcharles93/lespmv/internal/sparse"
	"github.com/samcharles93/lespmv/internal/synth"
)

func dense(m *sparse.CSR[int32, float64]) *mat.Dense {
	d := mat.NewDense(m.NumRows, m.NumCols, nil)
	for r := range m.NumRows {
		for p := m.RowPtr[r]; p < m.RowPtr[r+1]; p++ {
			d.Set(r, int(m.ColIdx[p]), d.At(r, int(m.ColIdx[p]))+m.Values[p])
		}
	}
	return d
}

// oracle computes alpha*A*x + beta*y0 with gonum.
func oracle(m *sparse.CSR[int32, float64], alpha float64, x []float64, beta float64, y0 []float64) []float64 {
	var ax mat.VecDense
	ax.MulVec(dense(m), mat.NewVecDense(len(x), slices.Clone(x)))
	out := make([]float64, len(y0))
	for i := range out {
		out[i] = alpha*ax.AtVec(i) + beta*y0[i]
	}
	return out
}

func seq(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func testMatrices(t *testing.T) map[string]*sparse.CSR[int32, float64] {
	t.Helper()
	specs := []synth.Spec{
		{Kind: synth.Diagonal, Rows: 37},
		{Kind: synth.Banded, Rows: 300, Bandwidth: 3, Seed: 2},
		{Kind: synth.Random, Rows: 513, Cols: 200, RowNNZ: 9, Seed: 3},
		{Kind: synth.PowerLaw, Rows: 700, RowNNZ: 6, Seed: 4},
	}
	out := make(map[string]*sparse.CSR[int32, float64], len(specs))
	for _, s := range specs {
		m, err := synth.Generate[int32, float64](s)
		if err != nil {
			t.Fatalf("generate %s: %v", s.Name(), err)
		}
		out[s.Name()] = m
	}
	return out
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-10*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestKernelsMatchDenseOracle(t *testing.T) {
	t.Parallel()

	pool := parallel.New(4)
	defer pool.Close()

	params := convert.DefaultParams()
	params.ChunkRows = 4
	params.Window = 16
	params.MaxDiags = 1 << 12

	for name, m := range testMatrices(t) {
		x := seq(m.NumCols, func(i int) float64 { return float64(i%7) - 2.5 })
		y0 := seq(m.NumRows, func(i int) float64 { return float64(i % 3) })
		want := oracle(m, 1.5, x, -0.5, y0)

		for _, f := range sparse.KernelFormats() {
			layout, err := convert.Convert(m, f, params)
			if err != nil {
				t.Fatalf("%s: convert %s: %v", name, f, err)
			}
			for _, mode := range parallel.Modes() {
				op, err := Bind[int32, float64](Exec{Pool: pool, Mode: mode, Grain: 3}, layout)
				if err != nil {
					t.Fatalf("%s: bind %s: %v", name, f, err)
				}
				got := slices.Clone(y0)
				op.Apply(1.5, x, -0.5, got)
				for i := range want {
					if !closeTo(want[i], got[i]) {
						t.Fatalf("%s %s: y[%d] = %v, want %v", name, op.Name(), i, got[i], want[i])
					}
				}
			}
		}
	}
}

func TestModesAreBitIdentical(t *testing.T) {
	t.Parallel()

	pool := parallel.New(3)
	defer pool.Close()

	m, err := synth.Generate[int32, float64](synth.Spec{Kind: synth.PowerLaw, Rows: 1000, RowNNZ: 8, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	x := seq(m.NumCols, func(i int) float64 { return math.Sin(float64(i)) })

	params := convert.DefaultParams()
	params.MaxDiags = 1 << 12
	for _, f := range sparse.KernelFormats() {
		layout, err := convert.Convert(m, f, params)
		if err != nil {
			t.Fatalf("convert %s: %v", f, err)
		}
		var first []float64
		for _, mode := range parallel.Modes() {
			op, err := Bind[int32, float64](Exec{Pool: pool, Mode: mode}, layout)
			if err != nil {
				t.Fatal(err)
			}
			for range 2 {
				y := make([]float64, m.NumRows)
				op.Apply(1, x, 0, y)
				if first == nil {
					first = y
					continue
				}
				if !slices.Equal(first, y) {
					t.Fatalf("%s: output differs from serial", op.Name())
				}
			}
		}
	}
}

func TestDiagonalScenario(t *testing.T) {
	t.Parallel()

	m, err := sparse.NewCSR(4, 4, []int32{0, 1, 2, 3, 4}, []int32{0, 1, 2, 3}, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	dia, err := convert.ToDIA(m, 8, 32)
	if err != nil {
		t.Fatal(err)
	}
	y := []float64{9, 9, 9, 9}
	DIA(Serial(), 1, dia, []float64{1, 1, 1, 1}, 0, y)
	if want := []float64{1, 2, 3, 4}; !slices.Equal(y, want) {
		t.Fatalf("expected %v, got %v", want, y)
	}
}

func TestELLMatchesCSRExactlyWhenSerial(t *testing.T) {
	t.Parallel()

	lengths := []int{2, 5, 0, 3, 1, 4, 5, 2, 0, 1}
	rowPtr := []int32{0}
	var colIdx []int32
	var values []float64
	for r, n := range lengths {
		for j := range n {
			colIdx = append(colIdx, int32((r+3*j)%7))
			values = append(values, 0.1*float64(r+1)+0.01*float64(j))
		}
		rowPtr = append(rowPtr, int32(len(colIdx)))
	}
	m, err := sparse.NewCSR(10, 7, rowPtr, colIdx, values)
	if err != nil {
		t.Fatal(err)
	}
	x := seq(7, func(i int) float64 { return 1 / float64(i+1) })

	want := make([]float64, 10)
	CSR(Serial(), 1, m, x, 0, want)

	for _, order := range []sparse.Order{sparse.RowMajor, sparse.ColMajor} {
		ell, err := convert.ToELL(m, order)
		if err != nil {
			t.Fatal(err)
		}
		if ell.Width != 5 {
			t.Fatalf("expected width 5, got %d", ell.Width)
		}
		got := make([]float64, 10)
		ELL(Serial(), 1, ell, x, 0, got)
		if !slices.Equal(want, got) {
			t.Fatalf("%s-major ELL: expected %v, got %v", order, want, got)
		}
	}
}

func TestFloat32Int64Kernels(t *testing.T) {
	t.Parallel()

	m, err := synth.Generate[int64, float32](synth.Spec{Kind: synth.Banded, Rows: 64, Bandwidth: 1})
	if err != nil {
		t.Fatal(err)
	}
	x := make([]float32, 64)
	for i := range x {
		x[i] = 1
	}
	want := make([]float32, 64)
	CSR(Serial(), 1, m, x, 0, want)

	for _, f := range sparse.KernelFormats() {
		layout, err := convert.Convert(m, f, convert.DefaultParams())
		if err != nil {
			t.Fatal(err)
		}
		op, err := Bind[int64, float32](Exec{Mode: parallel.Static}, layout)
		if err != nil {
			t.Fatal(err)
		}
		got := make([]float32, 64)
		op.Apply(1, x, 0, got)
		for i := range want {
			if math.Abs(float64(want[i]-got[i])) > 1e-5 {
				t.Fatalf("%s: y[%d] = %v, want %v", op.Name(), i, got[i], want[i])
			}
		}
	}
}

func TestBindRejectsMismatchedTypes(t *testing.T) {
	t.Parallel()

	m, err := sparse.NewCSR(1, 1, []int32{0, 1}, []int32{0}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Bind[int64, float64](Serial(), m)
	if !errors.Is(err, sparse.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	coo := sparse.NewCOO[int32, float64](2, 2, 2)
	coo.Append(1, 0, 1)
	coo.Append(0, 1, 1)
	if _, err := Bind[int32, float64](Serial(), coo); !errors.Is(err, sparse.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for unsorted coo, got %v", err)
	}
}

func TestCOOMatchesCSRExactly(t *testing.T) {
	t.Parallel()

	pool := parallel.New(4)
	defer pool.Close()

	m, err := synth.Generate[int32, float64](synth.Spec{Kind: synth.PowerLaw, Rows: 300, RowNNZ: 6, Seed: 4})
	if err != nil {
		t.Fatal(err)
	}
	x := seq(m.NumCols, func(i int) float64 { return math.Cos(float64(i)) })
	y0 := seq(m.NumRows, func(i int) float64 { return float64(i%5) - 2 })
	want := slices.Clone(y0)
	CSR(Serial(), 2, m, x, 0.5, want)

	coo := convert.ToCOO(m)
	for _, mode := range parallel.Modes() {
		got := slices.Clone(y0)
		COO(Exec{Pool: pool, Mode: mode, Grain: 7}, 2, coo, x, 0.5, got)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: y[%d] = %v, want %v", mode, i, got[i], want[i])
			}
		}
	}
}

func TestShapeMismatchPanics(t *testing.T) {
	t.Parallel()

	m, err := sparse.NewCSR(2, 2, []int32{0, 1, 2}, []int32{0, 1}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if r := recover(); r == nil || fmt.Sprint(r) != "spmv shape mismatch" {
			t.Fatalf("expected shape panic, got %v", r)
		}
	}()
	CSR(Serial(), 1, m, []float64{1}, 0, make([]float64, 2))
}
