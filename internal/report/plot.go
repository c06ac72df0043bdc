package report

import (
	"fmt"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/samcharles93/lespmv/internal/harness"
)

// Chart builds a grouped bar chart of GFLOP/s: one group per layout, one bar
// per execution mode. Evaluations without a measurement plot as zero.
func Chart(rep *harness.Report) (*plot.Plot, error) {
	var formats, modes []string
	gflops := map[[2]string]float64{}
	for _, ev := range rep.Evaluations {
		if ev.Mode == "" {
			continue
		}
		if !slices.Contains(formats, ev.Format) {
			formats = append(formats, ev.Format)
		}
		if !slices.Contains(modes, ev.Mode) {
			modes = append(modes, ev.Mode)
		}
		if ev.Status == harness.StatusPassed && ev.Perf != nil {
			gflops[[2]string{ev.Format, ev.Mode}] = ev.Perf.GFLOPs
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("report %s has no kernel evaluations to plot", rep.ID)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("SpMV %s (%dx%d, nnz %d, fp%d)",
		nameOr(rep.Matrix.Name), rep.Matrix.Rows, rep.Matrix.Cols, rep.Matrix.NNZ, rep.Precision)
	p.Y.Label.Text = "GFLOP/s"
	p.Legend.Top = true

	width := vg.Points(60 / float64(len(modes)))
	for i, mode := range modes {
		vals := make(plotter.Values, len(formats))
		for j, f := range formats {
			vals[j] = gflops[[2]string{f, mode}]
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return nil, err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = width * vg.Length(float64(i)-float64(len(modes)-1)/2)
		p.Add(bars)
		p.Legend.Add(mode, bars)
	}
	p.NominalX(formats...)
	return p, nil
}

// SaveChart renders the chart to path; the extension picks the image format.
func SaveChart(path string, rep *harness.Report) error {
	p, err := Chart(rep)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
