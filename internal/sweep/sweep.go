package sweep

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/scenario"
)

// Tally counts outcomes over seeds. Failed counts regressions that returned
// an error.
type Tally struct {
	Convergence int `json:"convergence"`
	Divergence  int `json:"divergence"`
	None        int `json:"none"`
	Failed      int `json:"failed"`
}

func (t *Tally) add(c analysis.Classification, err error) {
	switch {
	case err != nil:
		t.Failed++
	case c == analysis.Convergence:
		t.Convergence++
	case c == analysis.Divergence:
		t.Divergence++
	default:
		t.None++
	}
}

// Share returns the fraction of runs classified as c.
func (t Tally) Share(c analysis.Classification) float64 {
	total := t.Convergence + t.Divergence + t.None + t.Failed
	if total == 0 {
		return 0
	}
	var n int
	switch c {
	case analysis.Convergence:
		n = t.Convergence
	case analysis.Divergence:
		n = t.Divergence
	default:
		n = t.None
	}
	return float64(n) / float64(total)
}

type Result struct {
	Params map[string]float64       `json:"params"`
	Runs   int                      `json:"runs"`
	Beta   Tally                    `json:"beta"`
	Sigma  map[analysis.Index]Tally `json:"sigma"`
}

type Sweep struct {
	reg      *scenario.Registry
	analyzer *analysis.Analyzer
}

func New(reg *scenario.Registry, a *analysis.Analyzer) *Sweep {
	return &Sweep{reg: reg, analyzer: a}
}

// Run generates and analyzes name at every grid point for every seed. It
// stops early when ctx is cancelled.
func (s *Sweep) Run(ctx context.Context, name string, base scenario.Params, g *Grid, seeds []int64) ([]Result, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("sweep: no seeds")
	}
	if _, err := s.reg.Get(name); err != nil {
		return nil, err
	}

	points := g.Points()
	results := make([]Result, 0, len(points))
	for _, point := range points {
		params := base
		for _, pn := range g.Names() {
			var err error
			if params, err = apply(params, pn, point[pn]); err != nil {
				return nil, err
			}
		}
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("sweep at %v: %w", point, err)
		}

		res := Result{Params: point, Sigma: make(map[analysis.Index]Tally)}
		for _, seed := range seeds {
			if err := ctx.Err(); err != nil {
				return results, err
			}

			p, err := s.reg.Generate(name, params, seed)
			if err != nil {
				return nil, err
			}
			rep, err := s.analyzer.Analyze(p)
			if err != nil {
				return nil, err
			}

			res.Runs++
			res.Beta.add(rep.Beta.Class, rep.BetaErr)
			for _, tr := range rep.Trends {
				t := res.Sigma[tr.Index]
				t.add(tr.Class, tr.Err)
				res.Sigma[tr.Index] = t
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// Seeds returns n consecutive seeds starting at first.
func Seeds(first int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = first + int64(i)
	}
	return out
}

// WriteTable prints one row per grid point with the share of convergent and
// divergent outcomes for beta and each index.
func WriteTable(w io.Writer, names []string, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	var indices []analysis.Index
	if len(results) > 0 {
		for idx := range results[0].Sigma {
			indices = append(indices, idx)
		}
		sort.Slice(indices, func(i, j int) bool { return order(indices[i]) < order(indices[j]) })
	}

	header := append([]string{}, names...)
	header = append(header, "RUNS", "BETA+", "BETA-")
	for _, idx := range indices {
		name := strings.ToUpper(string(idx))
		header = append(header, name+"+", name+"-")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range results {
		row := make([]string, 0, len(header))
		for _, n := range names {
			row = append(row, fmt.Sprintf("%g", r.Params[n]))
		}
		row = append(row, fmt.Sprintf("%d", r.Runs), pct(r.Beta.Share(analysis.Divergence)), pct(r.Beta.Share(analysis.Convergence)))
		for _, idx := range indices {
			t := r.Sigma[idx]
			row = append(row, pct(t.Share(analysis.Divergence)), pct(t.Share(analysis.Convergence)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func order(idx analysis.Index) int {
	for i, v := range analysis.Indices() {
		if v == idx {
			return i
		}
	}
	return len(analysis.Indices())
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", 100*v)
}
