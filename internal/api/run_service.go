package api

import (
	"context"

	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/logger"
	"github.com/samcharles93/lespmv/internal/parallel"
)

// Executor runs one harness request.
type Executor func(ctx context.Context, req harness.Request) (*harness.Report, error)

// RunService turns API requests into harness runs. Runs execute one at a time
// so concurrent benchmarks do not share the CPUs.
type RunService struct {
	exec     Executor
	defaults harness.Config
	dataDir  string
	slot     chan struct{}
}

// NewRunService serves runs with the given defaults. File inputs are resolved
// inside dataDir; an empty dataDir allows only synthetic inputs.
func NewRunService(defaults harness.Config, dataDir string) *RunService {
	return &RunService{
		exec:     harness.Execute,
		defaults: defaults,
		dataDir:  dataDir,
		slot:     make(chan struct{}, 1),
	}
}

// WithExecutor replaces the harness, for tests.
func (s *RunService) WithExecutor(exec Executor) *RunService {
	s.exec = exec
	return s
}

func (s *RunService) Workers() int {
	if s.defaults.Workers <= 0 {
		return parallel.DefaultWorkers()
	}
	return s.defaults.Workers
}

// Busy reports whether a run is executing.
func (s *RunService) Busy() bool { return len(s.slot) > 0 }

// Run validates req, waits for the run slot and executes it. A report is
// returned together with the context error when the run was cut short.
func (s *RunService) Run(ctx context.Context, req *RunRequest) (*harness.Report, error) {
	hreq, err := req.toHarness(s.defaults, s.dataDir)
	if err != nil {
		return nil, err
	}

	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.slot }()

	logger.FromContext(ctx).Info("executing run", "source", hreq.Source.Name(), "stage", hreq.Config.Stage)
	return s.exec(ctx, hreq)
}
