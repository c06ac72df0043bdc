package kernel

import (
	"fmt"

	"github.com/samcharles93/lespmv/internal/sparse"
)

// Operator is a layout bound to its kernel and execution plan. Validator and
// benchmark only see this interface.
type Operator[V sparse.Value] interface {
	Name() string
	Matrix() sparse.Matrix
	Exec() Exec
	// Apply computes y = alpha*A*x + beta*y in place.
	Apply(alpha V, x []V, beta V, y []V)
}

type operator[V sparse.Value] struct {
	name  string
	m     sparse.Matrix
	exec  Exec
	apply func(alpha V, x []V, beta V, y []V)
}

func (o *operator[V]) Name() string          { return o.name }
func (o *operator[V]) Matrix() sparse.Matrix { return o.m }
func (o *operator[V]) Exec() Exec            { return o.exec }

func (o *operator[V]) Apply(alpha V, x []V, beta V, y []V) {
	o.apply(alpha, x, beta, y)
}

// Bind resolves the kernel for m once, so the hot path does no type dispatch.
func Bind[I sparse.Index, V sparse.Value](e Exec, m sparse.Matrix) (Operator[V], error) {
	op := &operator[V]{
		name: fmt.Sprintf("%s/%s", m.Format(), e.Mode),
		m:    m,
		exec: e,
	}
	switch mm := m.(type) {
	case *sparse.CSR[I, V]:
		op.apply = func(alpha V, x []V, beta V, y []V) { CSR(e, alpha, mm, x, beta, y) }
	case *sparse.COO[I, V]:
		if !mm.RowSorted() {
			return nil, fmt.Errorf("coo: entries are not sorted by row: %w", sparse.ErrConfiguration)
		}
		op.apply = func(alpha V, x []V, beta V, y []V) { COO(e, alpha, mm, x, beta, y) }
	case *sparse.ELL[I, V]:
		op.apply = func(alpha V, x []V, beta V, y []V) { ELL(e, alpha, mm, x, beta, y) }
	case *sparse.DIA[I, V]:
		op.apply = func(alpha V, x []V, beta V, y []V) { DIA(e, alpha, mm, x, beta, y) }
	case *sparse.SELL[I, V]:
		op.apply = func(alpha V, x []V, beta V, y []V) { SELL(e, alpha, mm, x, beta, y) }
	case *sparse.Reordered[I, V]:
		op.apply = func(alpha V, x []V, beta V, y []V) { Reordered(e, alpha, mm, x, beta, y) }
	default:
		return nil, fmt.Errorf("no kernel for %s (%T): %w", m.Format(), m, sparse.ErrConfiguration)
	}
	return op, nil
}
