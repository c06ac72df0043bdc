package api

import (
	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/synth"
)

// RunRequest is the body of POST /v1/runs. Unset fields take the server
// defaults.
type RunRequest struct {
	Path      string      `json:"path,omitempty"`
	Synthetic *synth.Spec `json:"synthetic,omitempty"`
	Precision int         `json:"precision,omitempty"`
	IndexBits int         `json:"index_bits,omitempty"`
	Formats   []string    `json:"formats,omitempty"`
	Modes     []string    `json:"modes,omitempty"`
	Workers   *int        `json:"workers,omitempty"`
	Grain     *int        `json:"grain,omitempty"`
	Stage     string      `json:"stage,omitempty"`
	Params    *RunParams  `json:"params,omitempty"`
	Bench     *RunBench   `json:"bench,omitempty"`
}

type RunParams struct {
	MaxDiags  *int   `json:"max_diags,omitempty"`
	Alignment *int   `json:"alignment,omitempty"`
	Order     string `json:"order,omitempty"`
	ChunkRows *int   `json:"chunk_rows,omitempty"`
	Window    *int   `json:"window,omitempty"`
}

type RunBench struct {
	MinIterations *int    `json:"min_iterations,omitempty"`
	MaxIterations *int    `json:"max_iterations,omitempty"`
	Budget        string  `json:"budget,omitempty"`
	Seed          *uint64 `json:"seed,omitempty"`
}

type RunResponse struct {
	Object  string          `json:"object"`
	Summary harness.Summary `json:"summary"`
	*harness.Report
}

type RunListItem struct {
	ID        string          `json:"id"`
	Object    string          `json:"object"`
	CreatedAt int64           `json:"created_at"`
	Matrix    string          `json:"matrix"`
	Stage     harness.Stage   `json:"stage"`
	Summary   harness.Summary `json:"summary"`
}

type RunList struct {
	Object string        `json:"object"`
	Data   []RunListItem `json:"data"`
}

type DeleteRunResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Workers int    `json:"workers"`
	Busy    bool   `json:"busy"`
	Runs    int    `json:"runs"`
}

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

func newRunResponse(rep *harness.Report) RunResponse {
	return RunResponse{Object: "run", Summary: rep.Summary(), Report: rep}
}
