package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/panel"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

var fileReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// fileName keeps entry names from escaping the plot directory.
func fileName(name string) string {
	if name = fileReplacer.Replace(name); name == "" || name == "." || name == ".." {
		return "panel"
	}
	return name
}

// SavePlots writes the trajectory, beta and per-index sigma charts of e into
// dir. format is any extension gonum/plot can save ("png", "svg", "pdf").
// It returns the written paths.
func SavePlots(dir string, e Entry, format string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if format == "" {
		format = "png"
	}

	var paths []string
	save := func(p *plot.Plot, kind string) error {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", fileName(e.Name), kind, format))
		if err := p.Save(plotWidth, plotHeight, path); err != nil {
			return fmt.Errorf("save %s: %w", kind, err)
		}
		paths = append(paths, path)
		return nil
	}

	traj, err := TrajectoryPlot(e.Name, e.Panel)
	if err != nil {
		return nil, err
	}
	if err := save(traj, "trajectories"); err != nil {
		return nil, err
	}

	if e.Report.BetaErr == nil {
		beta, err := BetaPlot(e.Name, e.Report)
		if err != nil {
			return nil, err
		}
		if err := save(beta, "beta"); err != nil {
			return nil, err
		}
	}

	for _, idx := range e.Report.Config.Indices {
		sp, err := SigmaPlot(e.Name, e.Report, idx)
		if err != nil {
			return nil, err
		}
		if err := save(sp, "sigma_"+string(idx)); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

// TrajectoryPlot draws one line per area over its observed years.
func TrajectoryPlot(name string, pn *panel.Panel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = name + ": trajectories"
	p.X.Label.Text = "year"
	p.Y.Label.Text = "value"
	p.Add(plotter.NewGrid())

	for i, area := range pn.Areas() {
		var pts plotter.XYs
		for _, ob := range pn.Series(area) {
			if ob.Missing() {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(ob.Year), Y: ob.Value})
		}
		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(area, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// BetaPlot scatters growth against initial value with the fitted line.
func BetaPlot(name string, rep *analysis.Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: beta (%s, p=%.3g)", name, rep.Beta.Class, rep.Beta.PValue)
	p.X.Label.Text = "initial value"
	p.Y.Label.Text = "annualized growth"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rep.Growth))
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for i, gp := range rep.Growth {
		pts[i] = plotter.XY{X: gp.Initial, Y: gp.Growth}
		xmin = math.Min(xmin, gp.Initial)
		xmax = math.Max(xmax, gp.Initial)
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Color = plotutil.Color(0)
	p.Add(scatter)

	b := rep.Beta
	fit := plotter.NewFunction(func(x float64) float64 { return b.Intercept + b.Slope*x })
	fit.XMin, fit.XMax = xmin, xmax
	fit.Color = plotutil.Color(1)
	fit.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(fit)

	return p, nil
}

// SigmaPlot draws one dispersion index by year; degenerate years are gaps.
func SigmaPlot(name string, rep *analysis.Report, idx analysis.Index) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s", name, idx)
	if tr, ok := rep.Trend(idx); ok && tr.Err == nil {
		p.Title.Text += fmt.Sprintf(" (%s, p=%.3g)", tr.Class, tr.PValue)
	}
	p.X.Label.Text = "year"
	p.Y.Label.Text = string(idx)
	p.Add(plotter.NewGrid())

	// a degenerate year ends the current segment
	var all plotter.XYs
	var segments []plotter.XYs
	var seg plotter.XYs
	for _, pt := range rep.Series {
		v := pt.Value(idx)
		if math.IsNaN(v) {
			if len(seg) > 0 {
				segments = append(segments, seg)
				seg = nil
			}
			continue
		}
		xy := plotter.XY{X: float64(pt.Year), Y: v}
		seg = append(seg, xy)
		all = append(all, xy)
	}
	if len(seg) > 0 {
		segments = append(segments, seg)
	}
	if len(all) == 0 {
		return p, nil
	}

	for _, s := range segments {
		if len(s) < 2 {
			continue
		}
		line, err := plotter.NewLine(s)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(2)
		p.Add(line)
	}
	points, err := plotter.NewScatter(all)
	if err != nil {
		return nil, err
	}
	points.Shape = draw.CircleGlyph{}
	points.Color = plotutil.Color(2)
	p.Add(points)

	return p, nil
}
