// Package bench times repeated kernel calls and derives throughput.
package bench

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/samcharles93/lespmv/internal/kernel"
	"github.com/samcharles93/lespmv/internal/sparse"
)

const (
	DefaultMinIterations = 10
	DefaultMaxIterations = 1000
	DefaultBudget        = 3 * time.Second
	DefaultSeed          = 13
)

// Options bounds the number of timed calls.
type Options struct {
	MinIterations int           `yaml:"min_iterations" json:"min_iterations"`
	MaxIterations int           `yaml:"max_iterations" json:"max_iterations"`
	Budget        time.Duration `yaml:"budget" json:"budget"`
	// Seed fills the input vector.
	Seed uint64 `yaml:"seed" json:"seed"`
}

func DefaultOptions() Options {
	return Options{
		MinIterations: DefaultMinIterations,
		MaxIterations: DefaultMaxIterations,
		Budget:        DefaultBudget,
		Seed:          DefaultSeed,
	}
}

func (o Options) Validate() error {
	if o.MinIterations < 1 {
		return fmt.Errorf("bench: min iterations must be >= 1, got %d: %w", o.MinIterations, sparse.ErrConfiguration)
	}
	if o.MaxIterations < o.MinIterations {
		return fmt.Errorf("bench: max iterations %d below min %d: %w", o.MaxIterations, o.MinIterations, sparse.ErrConfiguration)
	}
	if o.Budget <= 0 {
		return fmt.Errorf("bench: time budget must be > 0, got %s: %w", o.Budget, sparse.ErrConfiguration)
	}
	return nil
}

// Iterations picks the number of timed calls from one warm-up estimate. A zero
// estimate means the timer could not resolve the call, so the maximum is used.
func Iterations(estimate time.Duration, o Options) int {
	if estimate <= 0 {
		return o.MaxIterations
	}
	target := o.Budget.Seconds() / estimate.Seconds()
	if target >= float64(o.MaxIterations) {
		return o.MaxIterations
	}
	return max(int(target), o.MinIterations)
}

// Runner measures operators under fixed options.
type Runner struct {
	opts Options
	now  func() time.Time
}

func NewRunner(o Options) (*Runner, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Runner{opts: o, now: time.Now}, nil
}

// WithClock replaces the time source.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

func (r *Runner) Options() Options { return r.opts }

// Measure runs one warm-up call, then Iterations timed calls of
// y = 1*A*x + 0*y, and stores the resulting Perf on the operator's matrix.
func Measure[V sparse.Value](r *Runner, op kernel.Operator[V]) sparse.Perf {
	m := op.Matrix()
	rows, cols, nnz := m.Dims()
	x := RandomVector[V](cols, r.opts.Seed)
	y := make([]V, rows)

	start := r.now()
	op.Apply(1, x, 0, y)
	estimate := r.now().Sub(start)

	n := Iterations(estimate, r.opts)
	start = r.now()
	for range n {
		op.Apply(1, x, 0, y)
	}
	elapsed := r.now().Sub(start)

	perf := Throughput(elapsed, n, nnz, m.BytesPerSpMV())
	*m.Metrics() = perf
	return perf
}

// Throughput converts total elapsed time over n calls into per-call rates:
// 2*nnz flops (one multiply, one add) and bytes of modelled traffic.
func Throughput(elapsed time.Duration, n, nnz int, bytes int64) sparse.Perf {
	perf := sparse.Perf{Iterations: n}
	if n <= 0 {
		return perf
	}
	perf.TimePerCall = elapsed / time.Duration(n)
	sec := elapsed.Seconds() / float64(n)
	if sec == 0 {
		return perf
	}
	perf.GFLOPs = 2 * float64(nnz) / sec / 1e9
	perf.GBytes = float64(bytes) / sec / 1e9
	return perf
}

// RandomVector returns n values uniformly drawn from [0, 1).
func RandomVector[V sparse.Value](n int, seed uint64) []V {
	rng := rand.New(rand.NewPCG(seed, seed^math.MaxUint32))
	out := make([]V, n)
	for i := range out {
		out[i] = V(rng.Float64())
	}
	return out
}
