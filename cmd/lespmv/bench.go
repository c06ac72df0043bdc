package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/logger"
	"github.com/samcharles93/lespmv/internal/report"
)

var (
	jsonOut  string
	plotOut  string
	noProg   bool
	failExit bool
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "json",
			Usage:       "write the report as JSON to this path (- for stdout)",
			Destination: &jsonOut,
		},
		&cli.StringFlag{
			Name:        "plot",
			Usage:       "write a GFLOP/s bar chart (.png, .svg, .pdf)",
			Destination: &plotOut,
		},
		&cli.BoolFlag{
			Name:        "no-progress",
			Usage:       "disable the progress bar",
			Destination: &noProg,
		},
		&cli.BoolFlag{
			Name:        "fail",
			Usage:       "exit non-zero when any evaluation fails",
			Value:       true,
			Destination: &failExit,
		},
	}
}

func benchCmd() *cli.Command {
	flags := append(runFlags(), benchFlags()...)
	flags = append(flags, outputFlags()...)

	return &cli.Command{
		Name:    "bench",
		Aliases: []string{"benchmark"},
		Usage:   "Convert, validate and benchmark every layout and execution mode",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStage(ctx, cmd, harness.StageBenchmark)
		},
	}
}

func validateCmd() *cli.Command {
	flags := append(runFlags(), outputFlags()...)
	return &cli.Command{
		Name:  "validate",
		Usage: "Check every layout and execution mode against the CSR reference",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStage(ctx, cmd, harness.StageValidate)
		},
	}
}

func runStage(ctx context.Context, cmd *cli.Command, stage harness.Stage) error {
	log := logger.FromContext(ctx)
	applyRunConfig(cmd, LoadConfig())

	req, err := buildRequest(stage)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 2)
	}

	if !noProg {
		bar := progressbar.Default(int64(req.Config.Evaluations()), stage.String())
		defer func() { _ = bar.Close() }()
		req.Config.Observer = func(ev harness.Evaluation) {
			bar.Describe(fmt.Sprintf("%s %s/%s", stage, ev.Format, ev.Mode))
			_ = bar.Add(1)
		}
	}

	log.Info("starting", "stage", stage, "source", req.Source.Name(),
		"precision", req.Precision, "index_bits", req.IndexBits, "gomaxprocs", runtime.GOMAXPROCS(0))
	rep, err := harness.Execute(ctx, req)
	if rep == nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if err != nil {
		log.Warn("run interrupted, report is partial", "error", err)
	}
	if err := writeOutputs(rep); err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	if sum := rep.Summary(); failExit && sum.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d evaluation(s) failed", sum.Failed), 1)
	}
	if errors.Is(err, context.Canceled) {
		return cli.Exit("interrupted", 130)
	}
	return nil
}

func writeOutputs(rep *harness.Report) error {
	switch jsonOut {
	case "-":
		return report.WriteJSON(os.Stdout, rep)
	case "":
		if err := report.WriteText(os.Stdout, rep); err != nil {
			return err
		}
	default:
		if err := report.WriteText(os.Stdout, rep); err != nil {
			return err
		}
		if err := report.SaveJSON(jsonOut, rep); err != nil {
			return err
		}
	}
	if plotOut != "" && rep.Stage == harness.StageBenchmark {
		return report.SaveChart(plotOut, rep)
	}
	return nil
}
