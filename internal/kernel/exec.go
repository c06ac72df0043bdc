// Package kernel implements y = alpha*A*x + beta*y for every layout.
//
// Each kernel partitions the rows (or chunks) of A over the worker pool; every
// output element is owned by exactly one range, so no locking is needed. A
// row's sum is accumulated in a fixed order that does not depend on the
// partition, which makes repeated calls under one Exec bit-identical.
package kernel

import (
	"github.com/samcharles93/lespmv/internal/parallel"
)

const (
	defaultRowGrain   = 256
	defaultChunkGrain = 8
)

// Exec is the execution plan of a kernel call. A nil Pool runs serially.
type Exec struct {
	Pool *parallel.Pool
	Mode parallel.Mode
	// Grain is the batch size of Dynamic and Guided, in kernel work units
	// (rows or chunks). Zero picks a per-kernel default.
	Grain int
}

// Serial is the sequential plan used by the reference kernel.
func Serial() Exec { return Exec{Mode: parallel.Serial} }

// Workers reports how many goroutines the plan may use.
func (e Exec) Workers() int {
	if e.Pool == nil || e.Mode == parallel.Serial {
		return 1
	}
	return e.Pool.Workers()
}

func (e Exec) run(units, defaultGrain int, fn func(start, end int)) {
	if e.Pool == nil || e.Mode == parallel.Serial {
		fn(0, units)
		return
	}
	grain := e.Grain
	if grain <= 0 {
		grain = defaultGrain
	}
	e.Pool.For(e.Mode, units, grain, fn)
}

