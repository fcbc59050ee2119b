package sweep

import (
	"bytes"
	"context"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/scenario"
)

func newSweep(t *testing.T) *Sweep {
	t.Helper()
	a, err := analysis.New(analysis.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return New(scenario.NewRegistry(), a)
}

func TestGridPoints(t *testing.T) {
	g := NewWithT(t)

	grid, err := NewGrid([]string{"noise", "rate"}, [][]float64{{0, 1}, {0.1, 0.2, 0.3}})
	g.Expect(err).NotTo(HaveOccurred())

	points := grid.Points()
	g.Expect(points).To(HaveLen(6))
	g.Expect(points[0]).To(Equal(map[string]float64{"noise": 0, "rate": 0.1}))
	g.Expect(points[1]).To(Equal(map[string]float64{"noise": 0, "rate": 0.2}))
	g.Expect(points[5]).To(Equal(map[string]float64{"noise": 1, "rate": 0.3}))
}

func TestNewGrid_Invalid(t *testing.T) {
	g := NewWithT(t)

	_, err := NewGrid([]string{"noise"}, nil)
	g.Expect(err).To(HaveOccurred())

	_, err = NewGrid([]string{"gravity"}, [][]float64{{1}})
	g.Expect(err).To(MatchError(ContainSubstring("unknown param")))

	_, err = NewGrid([]string{"noise", "noise"}, [][]float64{{1}, {2}})
	g.Expect(err).To(MatchError(ContainSubstring("duplicate")))

	_, err = NewGrid([]string{"noise"}, [][]float64{{}})
	g.Expect(err).To(HaveOccurred())
}

func TestRun_Noiseless(t *testing.T) {
	g := NewWithT(t)

	grid, err := NewGrid([]string{"rate"}, [][]float64{{0.1, 0.2}})
	g.Expect(err).NotTo(HaveOccurred())

	results, err := newSweep(t).Run(context.Background(), "laggards_catch_up", scenario.DefaultParams().Noiseless(), grid, Seeds(1, 3))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))

	for _, r := range results {
		g.Expect(r.Runs).To(Equal(3))
		g.Expect(r.Beta.Convergence).To(Equal(3))
		g.Expect(r.Beta.Share(analysis.Convergence)).To(Equal(1.0))
		g.Expect(r.Sigma).To(HaveKey(analysis.IndexGini))
	}
}

func TestRun_InvalidPoint(t *testing.T) {
	g := NewWithT(t)

	grid, _ := NewGrid([]string{"areas"}, [][]float64{{2}})
	_, err := newSweep(t).Run(context.Background(), "stability", scenario.DefaultParams(), grid, Seeds(1, 1))
	g.Expect(err).To(HaveOccurred())
}

func TestRun_UnknownScenario(t *testing.T) {
	g := NewWithT(t)

	grid, _ := NewGrid([]string{"noise"}, [][]float64{{0}})
	_, err := newSweep(t).Run(context.Background(), "nope", scenario.DefaultParams(), grid, Seeds(1, 1))
	g.Expect(err).To(MatchError(ContainSubstring("unknown scenario")))

	_, err = newSweep(t).Run(context.Background(), "stability", scenario.DefaultParams(), grid, nil)
	g.Expect(err).To(HaveOccurred())
}

func TestRun_Cancelled(t *testing.T) {
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	grid, _ := NewGrid([]string{"noise"}, [][]float64{{0}})
	_, err := newSweep(t).Run(ctx, "stability", scenario.DefaultParams(), grid, Seeds(1, 2))
	g.Expect(err).To(MatchError(context.Canceled))
}

func TestTally(t *testing.T) {
	g := NewWithT(t)

	var tally Tally
	tally.add(analysis.Convergence, nil)
	tally.add(analysis.Divergence, nil)
	tally.add(analysis.None, nil)
	tally.add(analysis.Convergence, analysis.ErrInsufficientData)

	g.Expect(tally).To(Equal(Tally{Convergence: 1, Divergence: 1, None: 1, Failed: 1}))
	g.Expect(tally.Share(analysis.Convergence)).To(Equal(0.25))
	g.Expect(Tally{}.Share(analysis.None)).To(Equal(0.0))
}

func TestWriteTable(t *testing.T) {
	g := NewWithT(t)

	results := []Result{{
		Params: map[string]float64{"noise": 0.5},
		Runs:   4,
		Beta:   Tally{Divergence: 1, None: 3},
		Sigma: map[analysis.Index]Tally{
			analysis.IndexCoV:  {Convergence: 4},
			analysis.IndexGini: {Divergence: 2, None: 2},
		},
	}}

	var buf bytes.Buffer
	g.Expect(WriteTable(&buf, []string{"noise"}, results)).To(Succeed())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	g.Expect(lines).To(HaveLen(2))
	g.Expect(strings.Fields(lines[0])).To(Equal([]string{"noise", "RUNS", "BETA+", "BETA-", "GINI+", "GINI-", "COV+", "COV-"}))
	g.Expect(strings.Fields(lines[1])).To(Equal([]string{"0.5", "4", "25%", "0%", "50%", "0%", "0%", "100%"}))
}
