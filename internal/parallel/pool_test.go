package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// cover records every index handed out by For and fails on overlaps.
func cover(t *testing.T, p *Pool, mode Mode, n, grain int) []int32 {
	t.Helper()
	hits := make([]int32, n)
	var calls atomic.Int32
	p.For(mode, n, grain, func(start, end int) {
		calls.Add(1)
		if start < 0 || end > n || start >= end {
			t.Errorf("%s: bad range [%d,%d) for n=%d", mode, start, end, n)
			return
		}
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})
	if n > 0 && calls.Load() == 0 {
		t.Fatalf("%s: fn never called", mode)
	}
	return hits
}

func TestForCoversEveryIndexOnce(t *testing.T) {
	t.Parallel()

	p := New(4)
	defer p.Close()

	for _, mode := range Modes() {
		for _, n := range []int{1, 3, 4, 17, 1000, 4099} {
			for _, grain := range []int{0, 1, 7, 64} {
				hits := cover(t, p, mode, n, grain)
				for i, h := range hits {
					if h != 1 {
						t.Fatalf("%s n=%d grain=%d: index %d visited %d times", mode, n, grain, i, h)
					}
				}
			}
		}
	}
}

func TestForEmptyRange(t *testing.T) {
	t.Parallel()

	p := New(2)
	defer p.Close()
	for _, mode := range Modes() {
		p.For(mode, 0, 1, func(start, end int) {
			t.Fatalf("%s: fn called for empty range", mode)
		})
	}
}

func TestStaticSplitIsContiguous(t *testing.T) {
	t.Parallel()

	p := New(3)
	defer p.Close()

	var mu sync.Mutex
	var ranges [][2]int
	p.For(Static, 10, 0, func(start, end int) {
		mu.Lock()
		ranges = append(ranges, [2]int{start, end})
		mu.Unlock()
	})
	if len(ranges) != 3 {
		t.Fatalf("expected one block per worker, got %v", ranges)
	}
	for _, r := range ranges {
		if r[1]-r[0] > 4 {
			t.Fatalf("block %v larger than ceil(10/3)", r)
		}
	}
}

func TestSerialRunsOnCaller(t *testing.T) {
	t.Parallel()

	p := New(4)
	defer p.Close()
	calls := 0
	p.For(Serial, 100, 1, func(start, end int) {
		calls++
		if start != 0 || end != 100 {
			t.Fatalf("expected whole range, got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestClosedAndNilPoolsRunSerially(t *testing.T) {
	t.Parallel()

	p := New(2)
	p.Close()
	p.Close()
	hits := cover(t, p, Dynamic, 50, 3)
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("closed pool: index %d visited %d times", i, h)
		}
	}

	var nilPool *Pool
	if nilPool.Workers() != 1 {
		t.Fatalf("nil pool should report one worker")
	}
	hits = cover(t, nilPool, Guided, 50, 3)
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("nil pool: index %d visited %d times", i, h)
		}
	}
}

func TestCloseWaitsForInFlightLoops(t *testing.T) {
	t.Parallel()

	p := New(4)
	const loops, n = 8, 500

	var wg sync.WaitGroup
	hits := make([][]int32, loops)
	for i := range loops {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits[i] = make([]int32, n)
			for range 20 {
				p.For(Modes()[1+i%3], n, 7, func(start, end int) {
					for j := start; j < end; j++ {
						atomic.AddInt32(&hits[i][j], 1)
					}
				})
			}
		}()
	}
	p.Close()
	wg.Wait()

	for i := range loops {
		for j, h := range hits[i] {
			if h != 20 {
				t.Fatalf("loop %d: index %d visited %d times, want 20", i, j, h)
			}
		}
	}
}

func TestNewDefaultsWorkers(t *testing.T) {
	t.Parallel()

	p := New(0)
	defer p.Close()
	if p.Workers() != DefaultWorkers() || p.Workers() < 1 {
		t.Fatalf("expected %d workers, got %d", DefaultWorkers(), p.Workers())
	}
}

func TestModeFromFlagFallsBackToStatic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flag int
		want Mode
	}{
		{0, Serial},
		{1, Static},
		{2, Dynamic},
		{3, Guided},
		{4, Static},
		{-1, Static},
	}
	for _, tc := range tests {
		if got := ModeFromFlag(tc.flag); got != tc.want {
			t.Errorf("ModeFromFlag(%d): expected %s, got %s", tc.flag, tc.want, got)
		}
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range Modes() {
		b, _ := m.MarshalText()
		var got Mode
		if err := got.UnmarshalText(b); err != nil || got != m {
			t.Fatalf("round trip %s: got %s, %v", m, got, err)
		}
	}
	if m, err := ParseMode("2"); err != nil || m != Dynamic {
		t.Fatalf("ParseMode(2): got %s, %v", m, err)
	}
	if _, err := ParseMode("chunked"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}
