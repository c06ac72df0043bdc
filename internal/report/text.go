// Package report renders harness reports as a text table, JSON or a bar chart.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/samcharles93/lespmv/internal/harness"
)

// WriteText prints one line per evaluation followed by a summary.
func WriteText(w io.Writer, rep *harness.Report) error {
	fmt.Fprintf(w, "run %s  %s  %dx%d nnz=%d  fp%d/i%d  workers=%d  stage=%s\n",
		rep.ID, nameOr(rep.Matrix.Name), rep.Matrix.Rows, rep.Matrix.Cols, rep.Matrix.NNZ,
		rep.Precision, rep.IndexBits, rep.Workers, rep.Stage)
	if rep.Host.OS != "" {
		fmt.Fprintf(w, "host %s\n", rep.Host)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FORMAT\tMODE\tTHREADS\tSTATUS\tSLOTS\tFILL\tCONVERT\tMAX REL ERR\tITERS\tTIME/CALL\tGFLOP/s\tGB/s\t")
	for _, ev := range rep.Evaluations {
		slots, fill := "-", "-"
		if ev.Structure != nil {
			slots = fmt.Sprint(ev.Structure.Slots)
			fill = fmt.Sprintf("%.3f", ev.Structure.FillRatio)
		}
		relErr := "-"
		if ev.Validation != nil {
			relErr = fmt.Sprintf("%.2e", ev.Validation.MaxRelErr)
		}
		iters, perCall, gflops, gbytes := "-", "-", "-", "-"
		if ev.Perf != nil {
			iters = fmt.Sprint(ev.Perf.Iterations)
			perCall = ev.Perf.TimePerCall.String()
			gflops = fmt.Sprintf("%.3f", ev.Perf.GFLOPs)
			gbytes = fmt.Sprintf("%.3f", ev.Perf.GBytes)
		}
		status := string(ev.Status)
		if ev.Kind != "" {
			status += "(" + string(ev.Kind) + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			ev.Format, dash(ev.Mode), ev.Workers, status, slots, fill,
			ev.ConvertTime.Round(time.Microsecond), relErr, iters, perCall, gflops, gbytes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, ev := range rep.Evaluations {
		if ev.Reason != "" {
			fmt.Fprintf(w, "  %s/%s: %s\n", ev.Format, dash(ev.Mode), ev.Reason)
		}
	}
	sum := rep.Summary()
	fmt.Fprintf(w, "passed %d, failed %d, skipped %d\n", sum.Passed, sum.Failed, sum.Skipped)
	if best, ok := rep.Best(); ok {
		fmt.Fprintf(w, "best: %s/%s at %.3f GFLOP/s\n", best.Format, best.Mode, best.Perf.GFLOPs)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func nameOr(s string) string {
	if s == "" {
		return "(unnamed)"
	}
	return s
}
