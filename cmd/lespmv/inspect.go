package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/lespmv/internal/harness"
	"github.com/samcharles93/lespmv/internal/report"
)

func inspectCmd() *cli.Command {
	flags := append(runFlags(), outputFlags()...)
	return &cli.Command{
		Name:  "inspect",
		Usage: "Convert the matrix to every layout and print its structure",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyRunConfig(cmd, LoadConfig())
			req, err := buildRequest(harness.StageConvert)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 2)
			}
			rep, err := harness.Execute(ctx, req)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if jsonOut == "-" {
				return report.WriteJSON(os.Stdout, rep)
			}

			m := rep.Matrix
			fmt.Printf("matrix:         %s\n", m.Name)
			fmt.Printf("shape:          %d x %d\n", m.Rows, m.Cols)
			fmt.Printf("nonzeros:       %d\n", m.NNZ)
			fmt.Printf("non-empty rows: %d\n", m.NonEmptyRows)
			fmt.Printf("max row length: %d\n", m.MaxRowLen)
			if m.Rows > 0 {
				fmt.Printf("mean row:       %.2f\n", float64(m.NNZ)/float64(m.Rows))
			}
			fmt.Println()

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tSTATUS\tSLOTS\tFILL\tWIDTH\tCHUNKS\tDIAGS\tBYTES/SPMV\tCONVERT\t")
			for _, ev := range rep.Evaluations {
				if ev.Structure == nil {
					fmt.Fprintf(tw, "%s\t%s\t\t\t\t\t\t\t%s\t\n", ev.Format, ev.Kind, ev.Reason)
					continue
				}
				s := ev.Structure
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.3f\t%d\t%d\t%d\t%d\t%s\t\n",
					ev.Format, ev.Status, s.Slots, s.FillRatio, s.Width, s.Chunks, s.Diagonals, s.Bytes, ev.ConvertTime)
			}
			return tw.Flush()
		},
	}
}
