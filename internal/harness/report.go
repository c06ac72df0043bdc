package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samcharles93/lespmv/internal/sparse"
	"github.com/samcharles93/lespmv/internal/verify"
	"github.com/samcharles93/lespmv/internal/version"
)

// Stage is how far the pipeline goes for each layout.
type Stage uint8

const (
	// StageConvert only builds the layouts and describes their structure.
	StageConvert Stage = iota
	// StageValidate also checks every kernel mode against the reference.
	StageValidate
	// StageBenchmark also times every mode that validated.
	StageBenchmark
)

func (s Stage) String() string {
	switch s {
	case StageConvert:
		return "convert"
	case StageValidate:
		return "validate"
	default:
		return "benchmark"
	}
}

func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "convert", "inspect":
		return StageConvert, nil
	case "validate":
		return StageValidate, nil
	case "", "benchmark", "bench":
		return StageBenchmark, nil
	default:
		return StageBenchmark, fmt.Errorf("unknown stage %q: %w", s, sparse.ErrConfiguration)
	}
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stage) UnmarshalText(b []byte) error {
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Kind classifies why an evaluation did not pass.
type Kind string

const (
	KindStructuralLimit Kind = "structural_limit"
	KindInvariant       Kind = "invariant"
	KindTolerance       Kind = "tolerance"
	KindConfiguration   Kind = "configuration"
	KindShape           Kind = "shape"
	KindCanceled        Kind = "canceled"
	KindInternal        Kind = "internal"
)

func classify(err error) (Status, Kind) {
	switch {
	case errors.Is(err, sparse.ErrStructuralLimit):
		return StatusSkipped, KindStructuralLimit
	case errors.Is(err, sparse.ErrConfiguration):
		return StatusSkipped, KindConfiguration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusSkipped, KindCanceled
	case errors.Is(err, sparse.ErrInvariant):
		return StatusFailed, KindInvariant
	case errors.Is(err, sparse.ErrTolerance):
		return StatusFailed, KindTolerance
	case errors.Is(err, sparse.ErrShape):
		return StatusFailed, KindShape
	default:
		return StatusFailed, KindInternal
	}
}

// Structure describes the storage of a converted layout.
type Structure struct {
	Slots     int     `json:"slots"`
	FillRatio float64 `json:"fill_ratio"`
	Bytes     int64   `json:"bytes_per_spmv"`
	Width     int     `json:"width,omitempty"`
	Chunks    int     `json:"chunks,omitempty"`
	Diagonals int     `json:"diagonals,omitempty"`
}

// Describe summarises m. FillRatio is nonzeros over stored slots.
func Describe(m sparse.Matrix) Structure {
	_, _, nnz := m.Dims()
	s := Structure{Slots: m.Slots(), Bytes: m.BytesPerSpMV()}
	if s.Slots > 0 {
		s.FillRatio = float64(nnz) / float64(s.Slots)
	}
	if c, ok := m.(interface{ Chunks() int }); ok {
		s.Chunks = c.Chunks()
	}
	if w, ok := m.(interface{ MaxWidth() int }); ok {
		s.Width = w.MaxWidth()
	}
	if d, ok := m.(interface{ Diagonals() int }); ok {
		s.Diagonals = d.Diagonals()
	}
	return s
}

// MatrixInfo identifies the input of a run.
type MatrixInfo struct {
	Name         string `json:"name"`
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	NNZ          int    `json:"nnz"`
	NonEmptyRows int    `json:"non_empty_rows"`
	MaxRowLen    int    `json:"max_row_len"`
}

// Evaluation is the outcome for one (layout, mode) pair. In the convert stage
// there is one evaluation per layout and Mode is empty.
type Evaluation struct {
	Format      string         `json:"format"`
	Mode        string         `json:"mode,omitempty"`
	Workers     int            `json:"workers,omitempty"`
	Status      Status         `json:"status"`
	Kind        Kind           `json:"kind,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	ConvertTime time.Duration  `json:"convert_time"`
	Structure   *Structure     `json:"structure,omitempty"`
	Validation  *verify.Result `json:"validation,omitempty"`
	Perf        *sparse.Perf   `json:"perf,omitempty"`
}

// Report is the best-effort result of a run.
type Report struct {
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Stage       Stage        `json:"stage"`
	Matrix      MatrixInfo   `json:"matrix"`
	Precision   int          `json:"precision"`
	IndexBits   int          `json:"index_bits"`
	Workers     int          `json:"workers"`
	Host        version.Host `json:"host"`
	Evaluations []Evaluation `json:"evaluations"`
}

type Summary struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func (r *Report) Summary() Summary {
	var s Summary
	for _, ev := range r.Evaluations {
		switch ev.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Skipped++
		}
	}
	return s
}

// Best returns the passed evaluation with the highest GFLOP/s, if any.
func (r *Report) Best() (Evaluation, bool) {
	var best Evaluation
	found := false
	for _, ev := range r.Evaluations {
		if ev.Status != StatusPassed || ev.Perf == nil {
			continue
		}
		if !found || ev.Perf.GFLOPs > best.Perf.GFLOPs {
			best, found = ev, true
		}
	}
	return best, found
}
