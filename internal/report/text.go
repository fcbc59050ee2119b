package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/convlab/internal/analysis"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	converging = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	diverging  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	failed     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
)

// Verdict styles a classification for the given kind ("beta" or "sigma").
func Verdict(kind string, c analysis.Classification) string {
	switch c {
	case analysis.Convergence:
		return converging.Render(kind + "-convergence")
	case analysis.Divergence:
		return diverging.Render(kind + "-divergence")
	}
	return Subtle.Render("no significant " + kind)
}

type Options struct {
	Charts bool
	Width  int
	Height int
}

func DefaultOptions() Options {
	return Options{Charts: true, Width: 60, Height: 8}
}

// Text renders a full report: beta result, trend table, yearly series and,
// optionally, one chart per index.
func Text(title string, rep *analysis.Report, opts Options) string {
	var sb strings.Builder

	sb.WriteString(Title.Render(title))
	sb.WriteString("\n\n")

	sb.WriteString(Label.Render("beta   "))
	if rep.BetaErr != nil {
		sb.WriteString(failed.Render(rep.BetaErr.Error()))
	} else {
		b := rep.Beta
		fmt.Fprintf(&sb, "slope %s  se %.3g  t %s  p %s  n %d  %s",
			Value.Render(fmt.Sprintf("%+.4g", b.Slope)), b.StdErr,
			formatT(b.TStat), formatP(b.PValue), b.N, Verdict("beta", b.Class))
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "%s\n", Label.Render(fmt.Sprintf("%-9s %11s %10s %8s %8s  %s", "index", "slope", "stderr", "t", "p", "verdict")))
	for _, tr := range rep.Trends {
		if tr.Err != nil {
			fmt.Fprintf(&sb, "%-9s %s\n", tr.Index, failed.Render(tr.Err.Error()))
			continue
		}
		fmt.Fprintf(&sb, "%-9s %+11.4g %10.3g %8s %8s  %s\n",
			tr.Index, tr.Slope, tr.StdErr, formatT(tr.TStat), formatP(tr.PValue), Verdict("sigma", tr.Class))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "%s\n", Label.Render(fmt.Sprintf("%4s %3s %8s %8s %8s %9s", "year", "n", "gini", "range", "cov", "variance")))
	for _, pt := range rep.Series {
		fmt.Fprintf(&sb, "%4d %3d %8s %8s %8s %9s",
			pt.Year, pt.EffectiveN, formatV(pt.Gini), formatV(pt.Range), formatV(pt.CoV), formatV(pt.Variance))
		if pt.Err != nil {
			sb.WriteString("  " + failed.Render("degenerate"))
		}
		sb.WriteString("\n")
	}

	if opts.Charts {
		for _, idx := range rep.Config.Indices {
			data := finite(rep.Series, idx)
			if len(data) < 2 {
				continue
			}
			sb.WriteString("\n")
			sb.WriteString(asciigraph.Plot(data,
				asciigraph.Height(opts.Height),
				asciigraph.Width(opts.Width),
				asciigraph.Caption(string(idx)+" by year"),
			))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Render writes Text to w.
func Render(w io.Writer, title string, rep *analysis.Report, opts Options) error {
	_, err := io.WriteString(w, Text(title, rep, opts))
	return err
}

func finite(series []analysis.DispersionPoint, idx analysis.Index) []float64 {
	out := make([]float64, 0, len(series))
	for _, pt := range series {
		if v := pt.Value(idx); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func formatV(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4g", v)
}

func formatT(t float64) string {
	if math.IsInf(t, 0) {
		return fmt.Sprintf("%cinf", sign(t))
	}
	return fmt.Sprintf("%.2f", t)
}

func formatP(p float64) string {
	if p < 1e-4 {
		return "<1e-4"
	}
	return fmt.Sprintf("%.4f", p)
}

func sign(v float64) rune {
	if v < 0 {
		return '-'
	}
	return '+'
}
