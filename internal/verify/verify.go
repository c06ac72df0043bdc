// Package verify compares a candidate kernel against the canonical one.
package verify

import (
	"fmt"
	"math"

	"github.com/samcharles93/lespmv/internal/kernel"
	"github.com/samcharles93/lespmv/internal/sparse"
)

const (
	SingleTolerance = 1e-4
	DoubleTolerance = 1e-10
)

// Tolerance is the pass threshold for the value type V.
func Tolerance[V sparse.Value]() float64 {
	if sparse.SizeOf[V]() == 4 {
		return SingleTolerance
	}
	return DoubleTolerance
}

// Result is the outcome of one comparison.
type Result struct {
	MaxAbsErr  float64 `json:"max_abs_err"`
	MaxRelErr  float64 `json:"max_rel_err"`
	WorstIndex int     `json:"worst_index"`
	Tolerance  float64 `json:"tolerance"`
	Passed     bool    `json:"passed"`
	// NonFinite is set when an output held NaN or Inf at WorstIndex.
	NonFinite bool `json:"non_finite,omitempty"`
}

// Compare checks ref and got elementwise. An element passes when
// |ref-got| <= tol * max(|ref|, |got|, 1): relative for large magnitudes,
// absolute near zero. A NaN or Inf difference fails immediately.
func Compare[V sparse.Value](ref, got []V, tol float64) Result {
	res := Result{Tolerance: tol, Passed: len(ref) == len(got), WorstIndex: -1}
	worst := 0.0
	for i := range min(len(ref), len(got)) {
		a, b := float64(ref[i]), float64(got[i])
		diff := math.Abs(a - b)
		if math.IsNaN(diff) || math.IsInf(diff, 0) {
			res.NonFinite = true
			res.WorstIndex = i
			res.Passed = false
			return res
		}
		scale := math.Max(math.Abs(a), math.Abs(b))
		res.MaxAbsErr = math.Max(res.MaxAbsErr, diff)
		if scale > 0 {
			res.MaxRelErr = math.Max(res.MaxRelErr, diff/scale)
		}
		if excess := diff / math.Max(scale, 1); excess > worst || res.WorstIndex < 0 {
			worst = excess
			res.WorstIndex = i
		}
	}
	if worst > tol {
		res.Passed = false
	}
	return res
}

// Check runs ref and cand on the same x, alpha and beta, each starting from
// its own copy of y0, and compares the outputs. A divergence is reported as
// ErrTolerance together with the full Result.
func Check[V sparse.Value](ref, cand kernel.Operator[V], x, y0 []V, alpha, beta V) (Result, error) {
	rr, rc, _ := ref.Matrix().Dims()
	cr, cc, _ := cand.Matrix().Dims()
	if rr != cr || rc != cc {
		return Result{}, fmt.Errorf("%s is %dx%d, reference is %dx%d: %w", cand.Name(), cr, cc, rr, rc, sparse.ErrShape)
	}
	if len(x) != rc || len(y0) != rr {
		return Result{}, fmt.Errorf("vectors x[%d] y[%d] do not fit %dx%d: %w", len(x), len(y0), rr, rc, sparse.ErrShape)
	}

	want := make([]V, len(y0))
	got := make([]V, len(y0))
	copy(want, y0)
	copy(got, y0)
	ref.Apply(alpha, x, beta, want)
	cand.Apply(alpha, x, beta, got)

	res := Compare(want, got, Tolerance[V]())
	if res.NonFinite {
		return res, fmt.Errorf("%s: non-finite output at %d: %w", cand.Name(), res.WorstIndex, sparse.ErrTolerance)
	}
	if !res.Passed {
		return res, fmt.Errorf("%s: max abs err %.3g, max rel err %.3g at %d (tol %.0e): %w",
			cand.Name(), res.MaxAbsErr, res.MaxRelErr, res.WorstIndex, res.Tolerance, sparse.ErrTolerance)
	}
	return res, nil
}
