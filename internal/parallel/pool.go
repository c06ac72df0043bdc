// Package parallel provides the fork-join loop used by every SpMV kernel.
//
// A Pool is created once per run with an explicit worker count and reused for
// every kernel call:
//
//	pool := parallel.New(workers)
//	defer pool.Close()
//
//	pool.For(parallel.Dynamic, rows, 64, func(start, end int) {
//	    spmvRows(start, end)
//	})
//
// For returns only after every claimed range has completed.
package parallel

import (
	"sync"
	"sync/atomic"
)

// Pool is a persistent set of workers shared by consecutive parallel loops.
type Pool struct {
	workers int
	tasks   chan task

	// mu is held for reading by every parallel loop and for writing by Close,
	// so tasks is never closed under an in-flight loop.
	mu     sync.RWMutex
	closed bool
}

type task struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New starts a pool with the given number of workers. Values below one use
// DefaultWorkers.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan task, workers*2),
	}
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for t := range p.tasks {
		t.fn()
		t.barrier.Done()
	}
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Close stops the workers once in-flight loops have returned. Loops issued
// afterwards run serially.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

// For runs fn over [0, n) split according to mode. grain is the batch size
// for Dynamic and the minimum batch size for Guided; it is ignored otherwise.
// Every index is passed to exactly one fn call and ranges never overlap.
// fn must not call For on the same pool.
func (p *Pool) For(mode Mode, n, grain int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p == nil || mode == Serial || p.workers == 1 {
		fn(0, n)
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		fn(0, n)
		return
	}
	if grain <= 0 {
		grain = 1
	}
	switch mode {
	case Dynamic:
		p.dynamic(n, grain, fn)
	case Guided:
		p.guided(n, grain, fn)
	default:
		p.static(n, fn)
	}
}

// static hands each worker one contiguous block. The split depends only on n
// and the worker count.
func (p *Pool) static(n int, fn func(start, end int)) {
	workers := min(p.workers, n)
	if workers == 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for i := range workers {
		start := i * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		wg.Add(1)
		p.tasks <- task{
			fn:      func() { fn(start, end) },
			barrier: &wg,
		}
	}
	wg.Wait()
}

func (p *Pool) dynamic(n, grain int, fn func(start, end int)) {
	batches := (n + grain - 1) / grain
	workers := min(p.workers, batches)
	if workers == 1 {
		fn(0, n)
		return
	}

	var next atomic.Int64
	p.run(workers, func() {
		for {
			start := int(next.Add(int64(grain))) - grain
			if start >= n {
				return
			}
			fn(start, min(start+grain, n))
		}
	})
}

func (p *Pool) guided(n, minGrain int, fn func(start, end int)) {
	workers := min(p.workers, (n+minGrain-1)/minGrain)
	if workers == 1 {
		fn(0, n)
		return
	}

	var next atomic.Int64
	p.run(workers, func() {
		for {
			start := next.Load()
			remaining := int64(n) - start
			if remaining <= 0 {
				return
			}
			size := max(remaining/int64(workers), int64(minGrain))
			end := min(start+size, int64(n))
			if !next.CompareAndSwap(start, end) {
				continue
			}
			fn(int(start), int(end))
		}
	})
}

// run submits the same body to workers pool slots and waits for all of them.
func (p *Pool) run(workers int, body func()) {
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.tasks <- task{fn: body, barrier: &wg}
	}
	wg.Wait()
}
