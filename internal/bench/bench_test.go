package bench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/lespmv/internal/kernel"
	"github.com/samcharles93/lespmv/internal/sparse"
)

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultOptions().Validate())

	bad := []Options{
		{MinIterations: 0, MaxIterations: 10, Budget: time.Second},
		{MinIterations: 10, MaxIterations: 5, Budget: time.Second},
		{MinIterations: 1, MaxIterations: 5, Budget: 0},
	}
	for _, o := range bad {
		err := o.Validate()
		assert.True(t, errors.Is(err, sparse.ErrConfiguration), "%+v: %v", o, err)
	}
	_, err := NewRunner(bad[0])
	assert.ErrorIs(t, err, sparse.ErrConfiguration)
}

func TestIterations(t *testing.T) {
	t.Parallel()

	o := Options{MinIterations: 10, MaxIterations: 1000, Budget: 3 * time.Second}
	tests := []struct {
		estimate time.Duration
		want     int
	}{
		{0, 1000},
		{time.Nanosecond, 1000},
		{time.Millisecond, 1000},
		{10 * time.Millisecond, 300},
		{time.Second, 10},
		{time.Minute, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Iterations(tt.estimate, o), "estimate %s", tt.estimate)
	}
}

func TestThroughput(t *testing.T) {
	t.Parallel()

	perf := Throughput(2*time.Second, 4, 1000, 8000)
	assert.Equal(t, 4, perf.Iterations)
	assert.Equal(t, 500*time.Millisecond, perf.TimePerCall)
	assert.InDelta(t, 4e-6, perf.GFLOPs, 1e-15)
	assert.InDelta(t, 16e-6, perf.GBytes, 1e-15)

	zero := Throughput(0, 5, 1000, 8000)
	assert.Equal(t, 5, zero.Iterations)
	assert.Zero(t, zero.GFLOPs)

	assert.Equal(t, sparse.Perf{}, Throughput(time.Second, 0, 1, 1))
}

type counting struct {
	kernel.Operator[float64]
	calls int
}

func (c *counting) Apply(alpha float64, x []float64, beta float64, y []float64) {
	c.calls++
	c.Operator.Apply(alpha, x, beta, y)
}

// stepClock advances by step on every reading.
func stepClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func testOperator(t *testing.T) (*counting, *sparse.CSR[int32, float64]) {
	t.Helper()
	m, err := sparse.NewCSR(3, 3, []int32{0, 2, 2, 3}, []int32{0, 2, 1}, []float64{1, 2, 3})
	require.NoError(t, err)
	op, err := kernel.Bind[int32, float64](kernel.Serial(), m)
	require.NoError(t, err)
	return &counting{Operator: op}, m
}

func TestMeasureUnresolvedWarmupUsesMaxIterations(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(Options{MinIterations: 2, MaxIterations: 50, Budget: time.Second, Seed: 1})
	require.NoError(t, err)
	r.WithClock(stepClock(0))

	op, m := testOperator(t)
	perf := Measure[float64](r, op)

	assert.Equal(t, 50, perf.Iterations)
	assert.Equal(t, 51, op.calls)
	assert.Zero(t, perf.GFLOPs)
	assert.Equal(t, perf, m.Perf)
}

func TestMeasureFollowsBudget(t *testing.T) {
	t.Parallel()

	r, err := NewRunner(Options{MinIterations: 2, MaxIterations: 50, Budget: time.Second, Seed: 1})
	require.NoError(t, err)
	r.WithClock(stepClock(100 * time.Millisecond))

	op, m := testOperator(t)
	perf := Measure[float64](r, op)

	assert.Equal(t, 10, perf.Iterations)
	assert.Equal(t, 11, op.calls)
	assert.Equal(t, 10*time.Millisecond, perf.TimePerCall)
	assert.InDelta(t, 2*3/0.01/1e9, perf.GFLOPs, 1e-12)
	assert.InDelta(t, float64(m.BytesPerSpMV())/0.01/1e9, perf.GBytes, 1e-12)
}

func TestMeasureHeaderKeepsLatest(t *testing.T) {
	t.Parallel()

	op, m := testOperator(t)

	slow, err := NewRunner(Options{MinIterations: 2, MaxIterations: 50, Budget: time.Second, Seed: 1})
	require.NoError(t, err)
	slow.WithClock(stepClock(100 * time.Millisecond))
	first := Measure[float64](slow, op)

	fast, err := NewRunner(Options{MinIterations: 2, MaxIterations: 50, Budget: time.Second, Seed: 1})
	require.NoError(t, err)
	fast.WithClock(stepClock(50 * time.Millisecond))
	second := Measure[float64](fast, op)

	assert.Equal(t, 10, first.Iterations)
	assert.Equal(t, 20, second.Iterations)
	assert.Equal(t, second, m.Perf)
	assert.NotEqual(t, first, m.Perf)
}

func TestRandomVector(t *testing.T) {
	t.Parallel()

	a := RandomVector[float64](64, 7)
	b := RandomVector[float64](64, 7)
	c := RandomVector[float64](64, 8)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, v := range RandomVector[float32](256, 3) {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}
