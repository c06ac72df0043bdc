package sparse

import "errors"

// Error taxonomy shared by the converter, kernels, validator and harness.
// Callers match with errors.Is; producers wrap with fmt.Errorf("...: %w", ErrX).
var (
	// ErrStructuralLimit is returned when a layout parameter (e.g. the diagonal
	// cap) cannot hold the input. The layout is skipped, the run continues.
	ErrStructuralLimit = errors.New("sparse: structural limit exceeded")

	// ErrInvariant signals an internal bug, e.g. a converted entry count that
	// differs from the source nonzero count. The conversion is aborted.
	ErrInvariant = errors.New("sparse: invariant violation")

	// ErrTolerance is returned when a candidate kernel diverges from the reference.
	ErrTolerance = errors.New("sparse: tolerance exceeded")

	// ErrConfiguration marks an invalid execution mode or layout parameter.
	ErrConfiguration = errors.New("sparse: invalid configuration")

	// ErrShape reports malformed structure or mismatched dimensions.
	ErrShape = errors.New("sparse: invalid shape")
)
