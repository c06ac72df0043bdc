package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/logger"
	"github.com/samcharles93/lespmv/internal/mmio"
)

func genCmd() *cli.Command {
	var out string

	flags := append(matrixFlags(),
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "output path (.mtx, .mtx.gz, .mtx.zst)",
			Required:    true,
			Destination: &out,
		},
	)

	return &cli.Command{
		Name:  "gen",
		Usage: "Write a generated matrix as a MatrixMarket file",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if synthKind == "" {
				return cli.Exit("error: --synthetic is required", 2)
			}
			if matrixPath != "" {
				return cli.Exit("error: gen does not read --matrix", 2)
			}
			src, err := buildSource()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 2)
			}
			csr, err := harness.Load[int64, float64](ctx, src)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := mmio.WriteFile(out, csr, "generated by lespmv: "+src.Name()); err != nil {
				return cli.Exit(fmt.Sprintf("error: write %s: %v", out, err), 1)
			}
			logger.FromContext(ctx).Info("matrix written", "path", out, "rows", csr.NumRows, "nnz", csr.NumNNZ)
			return nil
		},
	}
}
