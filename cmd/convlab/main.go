package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/san-kum/convlab/internal/config"
	"github.com/san-kum/convlab/internal/logging"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	preset     string
	// scenario
	seed  int64
	noise float64
	rate  float64
	// analysis
	significance   float64
	stddev         string
	skipDegenerate bool
	// output
	plotDir    string
	plotFormat string
	xlsxPath   string
	outPath    string
	asJSON     bool
	noCharts   bool
	save       bool
	// sweep
	vary      []string
	seedCount int

	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "convlab",
		Short:         "beta and sigma convergence lab",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = c
			if _, err := logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, isatty.IsTerminal(os.Stderr.Fd())); err != nil {
				return err
			}
			slog.Debug("config loaded", "file", configFile, "preset", preset, "seed", cfg.Seed)
			return nil
		},
		// no subcommand opens the browser
		RunE: browse,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".convlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset scenario params")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "generate and analyze one scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	scenarioFlags(runCmd)
	analysisFlags(runCmd)
	outputFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	runCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip terminal charts")

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "run every scenario with the same seed and summarize",
		Args:  cobra.NoArgs,
		RunE:  runAll,
	}
	scenarioFlags(allCmd)
	analysisFlags(allCmd)
	outputFlags(allCmd)

	generateCmd := &cobra.Command{
		Use:   "generate [scenario]",
		Short: "write a scenario panel as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  generatePanel,
	}
	scenarioFlags(generateCmd)
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [csv]",
		Short: "analyze a panel CSV file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeFile,
	}
	analysisFlags(analyzeCmd)
	outputFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip terminal charts")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(out, "  %-14s areas=%d years=%d noise=%g jitter=%g\n", name, p.Areas, p.Years, p.Noise, p.BaseJitter)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "re-analyze and render a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip terminal charts")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run's analysis as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "browse every scenario interactively",
		Args:  cobra.NoArgs,
		RunE:  browse,
	}
	scenarioFlags(browseCmd)
	analysisFlags(browseCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "tally verdicts over a param grid and many seeds",
		Long: "sweep generates the scenario at every combination of --vary values for\n" +
			"--seeds consecutive seeds. X+ columns give the share of divergent verdicts,\n" +
			"X- the share of convergent ones.",
		Example: "  convlab sweep laggards_catch_up --vary noise=0,0.5,1 --vary rate=0.05,0.1 --seeds 50",
		Args:    cobra.MaximumNArgs(1),
		RunE:    runSweep,
	}
	scenarioFlags(sweepCmd)
	analysisFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&vary, "vary", nil, "param=v1,v2,... (repeatable)")
	sweepCmd.Flags().IntVar(&seedCount, "seeds", 20, "seeds per grid point")
	sweepCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(runCmd, allCmd, generateCmd, analyzeCmd, scenariosCmd, presetsCmd, listCmd, showCmd, exportJSONCmd, browseCmd, sweepCmd)
	return rootCmd
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&noise, "noise", 0, "observation noise stddev")
	cmd.Flags().Float64Var(&rate, "rate", 0, "common growth per year")
}

func analysisFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&significance, "significance", config.DefaultSignificance, "significance level")
	cmd.Flags().StringVar(&stddev, "stddev", config.DefaultStdDev, "coefficient of variation convention (sample, population)")
	cmd.Flags().BoolVar(&skipDegenerate, "skip-degenerate", false, "drop degenerate years from trends")
}

func outputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&plotDir, "plots", "", "write charts into this directory")
	cmd.Flags().StringVar(&plotFormat, "plot-format", "png", "chart format (png, svg, pdf)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an excel workbook")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
}

// loadConfig layers defaults, the config file, the preset and then any
// explicitly set flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		c.Params = p.Params
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("noise") {
		c.Params.Noise = noise
	}
	if flags.Changed("rate") {
		c.Params.Rate = rate
	}
	if flags.Changed("significance") {
		c.Analysis.Significance = significance
	}
	if flags.Changed("stddev") {
		c.Analysis.StdDev = stddev
	}
	if flags.Changed("skip-degenerate") {
		c.Analysis.SkipDegenerate = skipDegenerate
	}
	if flags.Changed("plots") {
		c.Output.PlotDir = plotDir
	}
	if flags.Changed("xlsx") {
		c.Output.XLSX = xlsxPath
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
