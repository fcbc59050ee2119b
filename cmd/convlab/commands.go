package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/config"
	"github.com/san-kum/convlab/internal/panel"
	"github.com/san-kum/convlab/internal/report"
	"github.com/san-kum/convlab/internal/scenario"
	"github.com/san-kum/convlab/internal/storage"
	"github.com/san-kum/convlab/internal/sweep"
	"github.com/san-kum/convlab/internal/tui"
)

func newAnalyzer(c *config.Config) (*analysis.Analyzer, error) {
	ac, err := c.AnalyzerConfig()
	if err != nil {
		return nil, err
	}
	return analysis.New(ac)
}

func analyze(a *analysis.Analyzer, name string, p *panel.Panel) (*analysis.Report, error) {
	rep, err := a.Analyze(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if rep.BetaErr != nil {
		slog.Warn("beta regression failed", "scenario", name, "err", rep.BetaErr)
	}
	if years := rep.DegenerateYears(); len(years) > 0 {
		slog.Debug("degenerate years", "scenario", name, "years", years)
	}
	if skipped := len(p.Areas()) - len(rep.Growth); skipped > 0 {
		slog.Debug("areas skipped in beta", "scenario", name, "count", skipped)
	}
	for _, tr := range rep.Trends {
		if tr.Err != nil {
			slog.Warn("trend failed", "scenario", name, "index", tr.Index, "err", tr.Err)
		}
	}
	return rep, nil
}

func buildEntry(reg *scenario.Registry, a *analysis.Analyzer, name string, params scenario.Params, s int64) (report.Entry, error) {
	sc, err := reg.Get(name)
	if err != nil {
		return report.Entry{}, err
	}
	p, err := reg.Generate(name, params, s)
	if err != nil {
		return report.Entry{}, err
	}
	slog.Info("generated panel", "scenario", name, "seed", s, "areas", len(p.Areas()), "years", len(p.Years()))

	rep, err := analyze(a, name, p)
	if err != nil {
		return report.Entry{}, err
	}
	return report.Entry{Name: name, Description: sc.Description, Seed: s, Panel: p, Report: rep}, nil
}

func scenarioArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Scenario
}

// writeOutputs handles the file outputs shared by run, all and analyze.
func writeOutputs(entries []report.Entry) error {
	if dir := cfg.Output.PlotDir; dir != "" {
		for _, e := range entries {
			paths, err := report.SavePlots(dir, e, plotFormat)
			if err != nil {
				return fmt.Errorf("plots for %s: %w", e.Name, err)
			}
			slog.Info("plots written", "scenario", e.Name, "count", len(paths), "dir", dir)
		}
	}
	if path := cfg.Output.XLSX; path != "" {
		if err := report.WriteWorkbook(path, entries); err != nil {
			return fmt.Errorf("workbook: %w", err)
		}
		slog.Info("workbook written", "path", path)
	}
	return nil
}

func render(out io.Writer, e report.Entry) error {
	if asJSON {
		return report.WriteJSON(out, []report.Entry{e})
	}
	opts := report.DefaultOptions()
	opts.Charts = !noCharts
	return report.Render(out, e.Name, e.Report, opts)
}

func runScenario(cmd *cobra.Command, args []string) error {
	name := scenarioArg(args)
	a, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	e, err := buildEntry(scenario.NewRegistry(), a, name, cfg.Params, cfg.Seed)
	if err != nil {
		return err
	}

	if err := render(cmd.OutOrStdout(), e); err != nil {
		return err
	}
	if err := writeOutputs([]report.Entry{e}); err != nil {
		return err
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Scenario: name,
			Seed:     cfg.Seed,
			Params:   cfg.Params,
			Analysis: cfg.Analysis,
			Metrics:  storage.Metrics(e.Report),
		}, e.Panel)
		if err != nil {
			return err
		}
		slog.Info("run saved", "id", runID, "dir", dataDir)
	}
	return nil
}

func allEntries(c *config.Config) ([]report.Entry, error) {
	a, err := newAnalyzer(c)
	if err != nil {
		return nil, err
	}
	reg := scenario.NewRegistry()

	entries := make([]report.Entry, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		e, err := buildEntry(reg, a, name, c.Params, c.Seed)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func runAll(cmd *cobra.Command, args []string) error {
	entries, err := allEntries(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		err = report.WriteJSON(out, entries)
	} else {
		err = report.Summary(out, entries)
	}
	if err != nil {
		return err
	}
	return writeOutputs(entries)
}

func generatePanel(cmd *cobra.Command, args []string) error {
	name := scenarioArg(args)
	p, err := scenario.NewRegistry().Generate(name, cfg.Params, cfg.Seed)
	if err != nil {
		return err
	}

	if outPath == "" {
		return p.WriteCSV(cmd.OutOrStdout())
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := p.WriteCSV(f); err != nil {
		return err
	}
	slog.Info("panel written", "scenario", name, "seed", cfg.Seed, "path", outPath)
	return nil
}

func analyzeFile(cmd *cobra.Command, args []string) error {
	path := args[0]

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	p, err := panel.ReadCSV(r)
	if err != nil {
		return err
	}
	slog.Info("panel loaded", "path", path, "observations", p.Len(), "areas", len(p.Areas()))

	a, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	rep, err := analyze(a, panelName(path), p)
	if err != nil {
		return err
	}

	e := report.Entry{Name: panelName(path), Panel: p, Report: rep}
	if err := render(cmd.OutOrStdout(), e); err != nil {
		return err
	}
	return writeOutputs([]report.Entry{e})
}

// panelName names an analyzed file after its base name without extension.
func panelName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, sc := range scenario.NewRegistry().List() {
		fmt.Fprintf(w, "%s\t%s\n", sc.Name, sc.Description)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSEED\tBETA_SLOPE\tBETA_P")

	for _, run := range runs {
		slope, p := "-", "-"
		if v, ok := run.Metrics["beta_slope"]; ok {
			slope = fmt.Sprintf("%+.4g", v)
		}
		if v, ok := run.Metrics["beta_p"]; ok {
			p = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			slope,
			p,
		)
	}

	return w.Flush()
}

// storedEntry reloads a run and re-analyzes its panel with the settings it
// was saved with.
func storedEntry(runID string) (report.Entry, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return report.Entry{}, err
	}
	p, err := st.LoadPanel(runID)
	if err != nil {
		return report.Entry{}, err
	}

	c := config.DefaultConfig()
	c.Analysis = meta.Analysis
	a, err := newAnalyzer(c)
	if err != nil {
		return report.Entry{}, err
	}
	rep, err := analyze(a, meta.Scenario, p)
	if err != nil {
		return report.Entry{}, err
	}
	return report.Entry{Name: meta.Scenario, Seed: meta.Seed, Panel: p, Report: rep}, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	e, err := storedEntry(args[0])
	if err != nil {
		return err
	}
	opts := report.DefaultOptions()
	opts.Charts = !noCharts
	return report.Render(cmd.OutOrStdout(), fmt.Sprintf("%s (%s)", e.Name, args[0]), e.Report, opts)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	e, err := storedEntry(args[0])
	if err != nil {
		return err
	}
	return report.WriteJSON(cmd.OutOrStdout(), []report.Entry{e})
}

func browse(cmd *cobra.Command, args []string) error {
	// keep generation logs off the alternate screen
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	entries, err := allEntries(cfg)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	reg := scenario.NewRegistry()
	regen := func(name string, s int64) (report.Entry, error) {
		return buildEntry(reg, a, name, cfg.Params, s)
	}
	return tui.Run(entries, regen)
}

// parseVary turns "name=v1,v2" flags into grid axes.
func parseVary(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	values := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --vary %q: want param=v1,v2", spec)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --vary %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		values = append(values, vals)
	}
	return names, values, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	name := scenarioArg(args)
	if seedCount < 1 {
		return fmt.Errorf("--seeds must be positive, got %d", seedCount)
	}

	names, values, err := parseVary(vary)
	if err != nil {
		return err
	}
	grid, err := sweep.NewGrid(names, values)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	slog.Info("sweep started", "scenario", name, "points", len(grid.Points()), "seeds", seedCount)
	results, err := sweep.New(scenario.NewRegistry(), a).Run(cmd.Context(), name, cfg.Params, grid, sweep.Seeds(cfg.Seed, seedCount))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return sweep.WriteTable(out, names, results)
}
