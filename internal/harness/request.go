package harness

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samcharles93/lespmv/internal/logger"
	"github.com/samcharles93/lespmv/internal/mmio"
	"github.com/samcharles93/lespmv/internal/sparse"
	"github.com/samcharles93/lespmv/internal/synth"
)

// Source names the input matrix: a MatrixMarket file or a generator. Exactly
// one must be set.
type Source struct {
	Path      string      `json:"path,omitempty" yaml:"path,omitempty"`
	Synthetic *synth.Spec `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

func (s Source) validate() error {
	switch {
	case s.Path != "" && s.Synthetic != nil:
		return fmt.Errorf("source has both a path and a generator: %w", sparse.ErrConfiguration)
	case s.Path == "" && s.Synthetic == nil:
		return fmt.Errorf("source needs a path or a generator: %w", sparse.ErrConfiguration)
	}
	return nil
}

func (s Source) Name() string {
	if s.Synthetic != nil {
		return s.Synthetic.Name()
	}
	return filepath.Base(s.Path)
}

// Request is a complete run description: input, element types and Config.
type Request struct {
	Source Source `json:"source" yaml:"source"`
	// Precision is 32 or 64; zero means 64.
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`
	// IndexBits is 32 or 64; zero means 32.
	IndexBits int    `json:"index_bits,omitempty" yaml:"index_bits,omitempty"`
	Config    Config `json:"config" yaml:"config"`
}

func (r *Request) normalize() error {
	if r.Precision == 0 {
		r.Precision = 64
	}
	if r.IndexBits == 0 {
		r.IndexBits = 32
	}
	if r.Precision != 32 && r.Precision != 64 {
		return fmt.Errorf("precision must be 32 or 64, got %d: %w", r.Precision, sparse.ErrConfiguration)
	}
	if r.IndexBits != 32 && r.IndexBits != 64 {
		return fmt.Errorf("index bits must be 32 or 64, got %d: %w", r.IndexBits, sparse.ErrConfiguration)
	}
	return r.Source.validate()
}

// Execute loads the source and runs it with the requested element types.
func Execute(ctx context.Context, req Request) (*Report, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	switch {
	case req.IndexBits == 32 && req.Precision == 32:
		return execute[int32, float32](ctx, req)
	case req.IndexBits == 32:
		return execute[int32, float64](ctx, req)
	case req.Precision == 32:
		return execute[int64, float32](ctx, req)
	default:
		return execute[int64, float64](ctx, req)
	}
}

func execute[I sparse.Index, V sparse.Value](ctx context.Context, req Request) (*Report, error) {
	csr, err := Load[I, V](ctx, req.Source)
	if err != nil {
		return nil, err
	}
	defer csr.Release()

	rep, err := Run(ctx, csr, req.Config)
	if rep != nil {
		rep.Matrix.Name = req.Source.Name()
	}
	return rep, err
}

// Load materializes src as CSR.
func Load[I sparse.Index, V sparse.Value](ctx context.Context, src Source) (*sparse.CSR[I, V], error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	if src.Synthetic != nil {
		log.Debug("generating matrix", "spec", src.Synthetic.Name())
		return synth.Generate[I, V](*src.Synthetic)
	}
	csr, banner, err := mmio.ReadFile[I, V](src.Path)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded matrix", "path", src.Path, "banner", banner.String(),
		"rows", csr.NumRows, "cols", csr.NumCols, "nnz", csr.NumNNZ)
	return csr, nil
}
