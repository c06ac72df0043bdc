package sparse

import (
	"time"
	"unsafe"
)

// Index is the integer type used for row offsets and column indices. It is
// signed so that padded slots can carry the negative Sentinel.
type Index interface {
	~int32 | ~int64
}

// Value is the element type. Kernels are monomorphic per (Index, Value) pair.
type Value interface {
	~float32 | ~float64
}

// Sentinel marks an unused padded slot.
const Sentinel = -1

// Perf holds the measured throughput of a layout instance.
type Perf struct {
	TimePerCall time.Duration `json:"time_per_call"`
	Iterations  int           `json:"iterations"`
	GFLOPs      float64       `json:"gflops"`
	GBytes      float64       `json:"gbytes"`
}

// Header carries the bookkeeping every layout shares.
type Header struct {
	NumRows int
	NumCols int
	NumNNZ  int

	// NonEmptyRows counts rows with at least one nonzero; only those rows
	// contribute y traffic to the bytes model.
	NonEmptyRows int

	// Perf is the most recent measurement. Benchmarking one layout under
	// several modes overwrites it, so callers keep their own copy per mode.
	Perf Perf
}

func (h *Header) Dims() (rows, cols, nnz int) {
	return h.NumRows, h.NumCols, h.NumNNZ
}

// Metrics exposes the latest measured properties so the benchmark can attach
// them.
func (h *Header) Metrics() *Perf {
	return &h.Perf
}

// Matrix is implemented by every layout.
type Matrix interface {
	Format() Format
	Dims() (rows, cols, nnz int)
	// Slots is the number of stored entries including padding.
	Slots() int
	// BytesPerSpMV is the modelled memory traffic of one SpMV call.
	BytesPerSpMV() int64
	Metrics() *Perf
	// Release drops the owned buffers. The matrix must not be used afterwards.
	Release()
}

// SizeOf returns the byte width of an index or value type.
func SizeOf[T Index | Value]() int64 {
	var z T
	return int64(unsafe.Sizeof(z))
}

// yBytes is the read-modify-write of y, once per non-empty row.
func yBytes[V Value](nonEmptyRows int) int64 {
	return 2 * SizeOf[V]() * int64(nonEmptyRows)
}

func countNonEmpty[I Index](rowPtr []I) int {
	n := 0
	for r := 0; r+1 < len(rowPtr); r++ {
		if rowPtr[r+1] > rowPtr[r] {
			n++
		}
	}
	return n
}
