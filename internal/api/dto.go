package api

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/parallel"
	"github.com/samcharles93/lespmv/internal/sparse"
)

// toHarness overlays req on the defaults. Paths are resolved inside dataDir
// and may not escape it.
func (req *RunRequest) toHarness(defaults harness.Config, dataDir string) (harness.Request, error) {
	out := harness.Request{
		Precision: req.Precision,
		IndexBits: req.IndexBits,
		Config:    defaults,
	}
	switch {
	case req.Path != "" && req.Synthetic != nil:
		return out, newInvalidRequest("path and synthetic are mutually exclusive")
	case req.Synthetic != nil:
		spec := *req.Synthetic
		if err := spec.Validate(); err != nil {
			return out, newInvalidRequest(err.Error())
		}
		out.Source.Synthetic = &spec
	case req.Path != "":
		if dataDir == "" {
			return out, newInvalidRequest("file inputs are disabled on this server")
		}
		if !filepath.IsLocal(req.Path) {
			return out, newInvalidRequest(fmt.Sprintf("path %q must be relative to the data directory", req.Path))
		}
		out.Source.Path = filepath.Join(dataDir, req.Path)
	default:
		return out, newInvalidRequest("one of path or synthetic is required")
	}

	cfg := &out.Config
	if len(req.Formats) > 0 {
		cfg.Formats = make([]sparse.Format, 0, len(req.Formats))
		for _, name := range req.Formats {
			f, err := sparse.ParseFormat(name)
			if err != nil {
				return out, newInvalidRequest(err.Error())
			}
			cfg.Formats = append(cfg.Formats, f)
		}
	}
	if len(req.Modes) > 0 {
		cfg.Modes = make([]parallel.Mode, 0, len(req.Modes))
		for _, name := range req.Modes {
			m, err := parallel.ParseMode(name)
			if err != nil {
				return out, newInvalidRequest(err.Error())
			}
			cfg.Modes = append(cfg.Modes, m)
		}
	}
	if req.Workers != nil {
		cfg.Workers = *req.Workers
	}
	if req.Grain != nil {
		cfg.Grain = *req.Grain
	}
	if req.Stage != "" {
		stage, err := harness.ParseStage(req.Stage)
		if err != nil {
			return out, newInvalidRequest(err.Error())
		}
		cfg.Stage = stage
	}
	if p := req.Params; p != nil {
		setInt(&cfg.Params.MaxDiags, p.MaxDiags)
		setInt(&cfg.Params.Alignment, p.Alignment)
		setInt(&cfg.Params.ChunkRows, p.ChunkRows)
		setInt(&cfg.Params.Window, p.Window)
		if p.Order != "" {
			order, err := sparse.ParseOrder(p.Order)
			if err != nil {
				return out, newInvalidRequest(err.Error())
			}
			cfg.Params.Order = order
		}
	}
	if b := req.Bench; b != nil {
		setInt(&cfg.Bench.MinIterations, b.MinIterations)
		setInt(&cfg.Bench.MaxIterations, b.MaxIterations)
		if b.Seed != nil {
			cfg.Bench.Seed = *b.Seed
		}
		if b.Budget != "" {
			d, err := time.ParseDuration(b.Budget)
			if err != nil {
				return out, newInvalidRequest(fmt.Sprintf("bench.budget: %v", err))
			}
			cfg.Bench.Budget = d
		}
		if cfg.Stage == harness.StageBenchmark {
			if err := cfg.Bench.Validate(); err != nil {
				return out, newInvalidRequest(err.Error())
			}
		}
	}
	return out, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
