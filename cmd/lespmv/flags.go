package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lespmv/internal/bench"
	"github.com/samcharles93/lespmv/internal/convert"
	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/parallel"
	"github.com/samcharles93/lespmv/internal/sparse"
	"github.com/samcharles93/lespmv/internal/synth"
)

var (
	matrixPath string
	synthKind  string
	rows       int
	cols       int
	rowNNZ     int
	bandwidth  int
	synthSeed  uint64
	precision  int
	indexBits  int

	formatNames []string
	modeNames   []string
	modeFlag    int
	threads     int
	grain       int
	maxDiags    int
	alignment   int
	leadingDim  string
	chunkRows   int
	window      int

	minIters int
	maxIters int
	budget   time.Duration
	seed     uint64

	logLevel  string
	logFormat string
	debug     bool
)

func matrixFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "matrix",
			Aliases:     []string{"m"},
			Usage:       "path to a MatrixMarket file (.mtx, .mtx.gz, .mtx.zst)",
			Destination: &matrixPath,
		},
		&cli.StringFlag{
			Name:        "synthetic",
			Aliases:     []string{"s"},
			Usage:       "generate the matrix instead (diagonal, banded, random, powerlaw)",
			Destination: &synthKind,
		},
		&cli.IntFlag{
			Name:        "rows",
			Usage:       "rows of the generated matrix",
			Value:       100_000,
			Destination: &rows,
		},
		&cli.IntFlag{
			Name:        "cols",
			Usage:       "columns of the generated matrix (default: rows)",
			Destination: &cols,
		},
		&cli.IntFlag{
			Name:        "row-nnz",
			Usage:       "nonzeros per row (random) or mean row length (powerlaw)",
			Value:       16,
			Destination: &rowNNZ,
		},
		&cli.IntFlag{
			Name:        "bandwidth",
			Usage:       "half bandwidth of a banded matrix",
			Value:       2,
			Destination: &bandwidth,
		},
		&cli.Uint64Flag{
			Name:        "synthetic-seed",
			Usage:       "generator seed",
			Value:       1,
			Destination: &synthSeed,
		},
		&cli.IntFlag{
			Name:        "precision",
			Aliases:     []string{"p"},
			Usage:       "value precision in bits (32 or 64)",
			Value:       64,
			Destination: &precision,
		},
		&cli.IntFlag{
			Name:        "index-bits",
			Usage:       "index width in bits (32 or 64)",
			Value:       32,
			Destination: &indexBits,
		},
	}
}

func layoutFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "formats",
			Aliases:     []string{"f"},
			Usage:       "layouts to evaluate (csr, coo, ell, dia, s-ell, sell-c-sigma, sell-c-r)",
			Destination: &formatNames,
		},
		&cli.IntFlag{
			Name:        "sche",
			Usage:       "single execution mode by number (0 serial, 1 static, 2 dynamic, 3 guided)",
			Value:       -1,
			Destination: &modeFlag,
		},
		&cli.StringSliceFlag{
			Name:        "modes",
			Usage:       "execution modes to evaluate (serial, static, dynamic, guided)",
			Destination: &modeNames,
		},
		&cli.IntFlag{
			Name:        "threads",
			Aliases:     []string{"t"},
			Usage:       "worker count (0: all available CPUs)",
			Destination: &threads,
		},
		&cli.IntFlag{
			Name:        "grain",
			Usage:       "batch size of dynamic and guided schedules (0: per-kernel default)",
			Destination: &grain,
		},
		&cli.IntFlag{
			Name:        "max-diags",
			Usage:       "DIA diagonal cap",
			Value:       convert.DefaultMaxDiags,
			Destination: &maxDiags,
		},
		&cli.IntFlag{
			Name:        "alignment",
			Usage:       "DIA lane alignment",
			Value:       convert.DefaultAlignment,
			Destination: &alignment,
		},
		&cli.StringFlag{
			Name:        "ld",
			Usage:       "ELL leading dimension (row, col)",
			Value:       "row",
			Destination: &leadingDim,
		},
		&cli.IntFlag{
			Name:        "chunk-rows",
			Aliases:     []string{"c"},
			Usage:       "rows per chunk of the sliced layouts",
			Value:       convert.DefaultChunkRows,
			Destination: &chunkRows,
		},
		&cli.IntFlag{
			Name:        "window",
			Aliases:     []string{"sigma"},
			Usage:       "SELL-c-sigma sorting window",
			Value:       convert.DefaultWindow,
			Destination: &window,
		},
	}
}

func benchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "min-iters",
			Usage:       "minimum timed iterations",
			Value:       bench.DefaultMinIterations,
			Destination: &minIters,
		},
		&cli.IntFlag{
			Name:        "max-iters",
			Usage:       "maximum timed iterations",
			Value:       bench.DefaultMaxIterations,
			Destination: &maxIters,
		},
		&cli.DurationFlag{
			Name:        "budget",
			Usage:       "target wall time per layout and mode",
			Value:       bench.DefaultBudget,
			Destination: &budget,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "seed of the x and y vectors",
			Value:       bench.DefaultSeed,
			Destination: &seed,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func runFlags() []cli.Flag {
	flags := append([]cli.Flag{}, matrixFlags()...)
	return append(flags, layoutFlags()...)
}

// buildRequest turns the flag variables into a harness request.
func buildRequest(stage harness.Stage) (harness.Request, error) {
	src, err := buildSource()
	if err != nil {
		return harness.Request{}, err
	}
	cfg, err := buildConfig(stage)
	if err != nil {
		return harness.Request{}, err
	}
	return harness.Request{
		Source:    src,
		Precision: precision,
		IndexBits: indexBits,
		Config:    cfg,
	}, nil
}

func buildSource() (harness.Source, error) {
	switch {
	case matrixPath != "" && synthKind != "":
		return harness.Source{}, fmt.Errorf("--matrix and --synthetic are mutually exclusive")
	case matrixPath != "":
		return harness.Source{Path: matrixPath}, nil
	case synthKind != "":
		kind, err := synth.ParseKind(synthKind)
		if err != nil {
			return harness.Source{}, err
		}
		return harness.Source{Synthetic: &synth.Spec{
			Kind:      kind,
			Rows:      rows,
			Cols:      cols,
			RowNNZ:    rowNNZ,
			Bandwidth: bandwidth,
			Seed:      synthSeed,
		}}, nil
	default:
		return harness.Source{}, fmt.Errorf("one of --matrix or --synthetic is required")
	}
}

func buildConfig(stage harness.Stage) (harness.Config, error) {
	cfg := harness.DefaultConfig()
	cfg.Stage = stage
	cfg.Workers = threads
	cfg.Grain = grain
	if len(formatNames) > 0 {
		cfg.Formats = cfg.Formats[:0]
		for _, name := range formatNames {
			f, err := sparse.ParseFormat(name)
			if err != nil {
				return cfg, err
			}
			cfg.Formats = append(cfg.Formats, f)
		}
	}
	switch {
	case len(modeNames) > 0:
		cfg.Modes = cfg.Modes[:0]
		for _, name := range modeNames {
			m, err := parallel.ParseMode(name)
			if err != nil {
				return cfg, err
			}
			cfg.Modes = append(cfg.Modes, m)
		}
	case modeFlag >= 0:
		cfg.Modes = []parallel.Mode{parallel.ModeFromFlag(modeFlag)}
	}

	order, err := sparse.ParseOrder(leadingDim)
	if err != nil {
		return cfg, err
	}
	cfg.Params = convert.Params{
		MaxDiags:  maxDiags,
		Alignment: alignment,
		Order:     order,
		ChunkRows: chunkRows,
		Window:    window,
	}
	cfg.Bench = bench.Options{
		MinIterations: minIters,
		MaxIterations: maxIters,
		Budget:        budget,
		Seed:          seed,
	}
	return cfg, nil
}
