// Package harness drives a sparse matrix through every requested layout and
// execution mode: conversion, validation against the CSR reference and
// benchmarking. Failures are recorded per evaluation and never abort a run.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/lespmv/internal/bench"
	"github.com/samcharles93/lespmv/internal/convert"
	"github.com/samcharles93/lespmv/internal/kernel"
	"github.com/samcharles93/lespmv/internal/logger"
	"github.com/samcharles93/lespmv/internal/parallel"
	"github.com/samcharles93/lespmv/internal/sparse"
	"github.com/samcharles93/lespmv/internal/verify"
	"github.com/samcharles93/lespmv/internal/version"
)

// Validation coefficients. A nonzero beta makes the check cover the y update.
const (
	validateAlpha = 1.0
	validateBeta  = 0.5
)

// Config selects what a run evaluates.
type Config struct {
	Formats []sparse.Format `json:"formats" yaml:"formats"`
	Modes   []parallel.Mode `json:"modes" yaml:"modes"`

	// Workers <= 0 uses every available CPU.
	Workers int `json:"workers" yaml:"workers"`
	// Grain <= 0 uses the per-kernel default.
	Grain int `json:"grain" yaml:"grain"`

	Params convert.Params `json:"params" yaml:"params"`
	Bench  bench.Options  `json:"bench" yaml:"bench"`
	Stage  Stage          `json:"stage" yaml:"stage"`

	// Observer, when set, sees every evaluation as soon as it is recorded.
	Observer func(Evaluation) `json:"-" yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Formats: sparse.KernelFormats(),
		Modes:   parallel.Modes(),
		Params:  convert.DefaultParams(),
		Bench:   bench.DefaultOptions(),
		Stage:   StageBenchmark,
	}
}

// Evaluations is the number of evaluations a run with c records.
func (c Config) Evaluations() int {
	if c.Stage == StageConvert {
		return len(c.Formats)
	}
	return len(c.Formats) * len(c.Modes)
}

func (c Config) validate() error {
	if len(c.Formats) == 0 {
		return fmt.Errorf("no formats selected: %w", sparse.ErrConfiguration)
	}
	if c.Stage != StageConvert && len(c.Modes) == 0 {
		return fmt.Errorf("no execution modes selected: %w", sparse.ErrConfiguration)
	}
	if c.Stage == StageBenchmark {
		return c.Bench.Validate()
	}
	return nil
}

type conversion struct {
	m    sparse.Matrix
	err  error
	took time.Duration
}

// Run evaluates csr under cfg. The report is returned even when ctx is
// canceled part way; the remaining evaluations are marked skipped and the
// context error is returned alongside.
func Run[I sparse.Index, V sparse.Value](ctx context.Context, csr *sparse.CSR[I, V], cfg Config) (*Report, error) {
	if csr == nil {
		return nil, fmt.Errorf("nil input matrix: %w", sparse.ErrShape)
	}
	if err := csr.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}
	rep := &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Stage:     cfg.Stage,
		Matrix: MatrixInfo{
			Rows:         csr.NumRows,
			Cols:         csr.NumCols,
			NNZ:          csr.NumNNZ,
			NonEmptyRows: csr.NonEmptyRows,
			MaxRowLen:    csr.MaxRowLen(),
		},
		Precision:   int(8 * sparse.SizeOf[V]()),
		IndexBits:   int(8 * sparse.SizeOf[I]()),
		Workers:     workers,
		Host:        version.CurrentHost(),
		Evaluations: make([]Evaluation, 0, cfg.Evaluations()),
	}
	log := logger.FromContext(ctx).With("run", rep.ID)
	log.Info("run started",
		"rows", csr.NumRows, "cols", csr.NumCols, "nnz", csr.NumNNZ,
		"formats", len(cfg.Formats), "modes", len(cfg.Modes), "stage", cfg.Stage, "workers", workers)

	record := func(ev Evaluation) {
		rep.Evaluations = append(rep.Evaluations, ev)
		switch {
		case ev.Status == StatusPassed && ev.Perf != nil:
			log.Info("benchmarked", "format", ev.Format, "mode", ev.Mode, "workers", ev.Workers,
				"iterations", ev.Perf.Iterations, "gflops", ev.Perf.GFLOPs, "gbytes", ev.Perf.GBytes)
		case ev.Status == StatusPassed:
			log.Debug("evaluation passed", "format", ev.Format, "mode", ev.Mode, "convert", ev.ConvertTime)
		default:
			log.Warn("evaluation "+string(ev.Status), "format", ev.Format, "mode", ev.Mode, "kind", ev.Kind, "reason", ev.Reason)
		}
		if cfg.Observer != nil {
			cfg.Observer(ev)
		}
	}

	conversions := convertAll(ctx, csr, cfg.Formats, cfg.Params, workers)

	var (
		pool   *parallel.Pool
		runner *bench.Runner
		ref    kernel.Operator[V]
		x, y0  []V
	)
	if cfg.Stage != StageConvert {
		pool = parallel.New(workers)
		defer pool.Close()

		var err error
		if ref, err = kernel.Bind[I, V](kernel.Serial(), csr); err != nil {
			return nil, err
		}
		x = bench.RandomVector[V](csr.NumCols, cfg.Bench.Seed)
		y0 = bench.RandomVector[V](csr.NumRows, cfg.Bench.Seed+1)
	}
	if cfg.Stage == StageBenchmark {
		var err error
		if runner, err = bench.NewRunner(cfg.Bench); err != nil {
			return nil, err
		}
	}

	for i, f := range cfg.Formats {
		conv := conversions[i]
		base := Evaluation{Format: f.String(), ConvertTime: conv.took}
		if conv.err == nil {
			st := Describe(conv.m)
			base.Structure = &st
		}

		if cfg.Stage == StageConvert {
			ev := base
			if conv.err != nil {
				ev.Status, ev.Kind = classify(conv.err)
				ev.Reason = conv.err.Error()
			} else {
				ev.Status = StatusPassed
				conv.m.Release()
			}
			record(ev)
			continue
		}

		for _, mode := range cfg.Modes {
			ev := base
			ev.Mode = mode.String()
			exec := kernel.Exec{Pool: pool, Mode: mode, Grain: cfg.Grain}
			ev.Workers = exec.Workers()
			if conv.err != nil {
				ev.Status, ev.Kind = classify(conv.err)
				ev.Reason = conv.err.Error()
				record(ev)
				continue
			}
			if err := ctx.Err(); err != nil {
				ev.Status, ev.Kind = classify(err)
				ev.Reason = err.Error()
				record(ev)
				continue
			}
			evaluate[I, V](ev, conv.m, ref, exec, runner, x, y0, record)
		}
		if conv.err == nil {
			conv.m.Release()
		}
	}

	sum := rep.Summary()
	log.Info("run finished", "passed", sum.Passed, "failed", sum.Failed, "skipped", sum.Skipped)
	return rep, ctx.Err()
}

func evaluate[I sparse.Index, V sparse.Value](ev Evaluation, m sparse.Matrix, ref kernel.Operator[V], e kernel.Exec, runner *bench.Runner, x, y0 []V, record func(Evaluation)) {
	fail := func(err error) {
		ev.Status, ev.Kind = classify(err)
		ev.Reason = err.Error()
		record(ev)
	}

	op, err := kernel.Bind[I, V](e, m)
	if err != nil {
		fail(err)
		return
	}
	res, err := verify.Check(ref, op, x, y0, V(validateAlpha), V(validateBeta))
	ev.Validation = &res
	if err != nil {
		fail(err)
		return
	}
	if runner != nil {
		perf := bench.Measure(runner, op)
		ev.Perf = &perf
	}
	ev.Status = StatusPassed
	record(ev)
}

func convertAll[I sparse.Index, V sparse.Value](ctx context.Context, csr *sparse.CSR[I, V], formats []sparse.Format, p convert.Params, limit int) []conversion {
	out := make([]conversion, len(formats))
	var g errgroup.Group
	g.SetLimit(max(1, limit))
	for i, f := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i] = conversion{err: err}
				return nil
			}
			start := time.Now()
			m, err := convert.Convert(csr, f, p)
			if err != nil {
				out[i] = conversion{err: err, took: time.Since(start)}
				return nil
			}
			out[i] = conversion{m: m, took: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
