package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/scenario"
)

const (
	DefaultScenario     = "stability"
	DefaultSeed         = 42
	DefaultSignificance = analysis.DefaultSignificance
	DefaultStdDev       = "sample"
	DefaultLogLevel     = "info"
)

type Config struct {
	Scenario string          `yaml:"scenario"`
	Seed     int64           `yaml:"seed"`
	Analysis AnalysisConfig  `yaml:"analysis"`
	Params   scenario.Params `yaml:"params"`
	Output   OutputConfig    `yaml:"output"`
	Log      LogConfig       `yaml:"log"`
}

type AnalysisConfig struct {
	Significance   float64  `yaml:"significance"`
	StdDev         string   `yaml:"stddev"`
	SkipDegenerate bool     `yaml:"skip_degenerate"`
	Indices        []string `yaml:"indices"`
}

type OutputConfig struct {
	PlotDir string `yaml:"plot_dir"`
	XLSX    string `yaml:"xlsx"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	indices := make([]string, 0, 4)
	for _, idx := range analysis.Indices() {
		indices = append(indices, string(idx))
	}

	return &Config{
		Scenario: DefaultScenario,
		Seed:     DefaultSeed,
		Analysis: AnalysisConfig{
			Significance: DefaultSignificance,
			StdDev:       DefaultStdDev,
			Indices:      indices,
		},
		Params: scenario.DefaultParams(),
		Log:    LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := c.AnalyzerConfig(); err != nil {
		return err
	}
	return c.Params.Validate()
}

// AnalyzerConfig converts the analysis section into an analysis.Config.
func (c *Config) AnalyzerConfig() (analysis.Config, error) {
	conv, err := analysis.ParseStdDev(c.Analysis.StdDev)
	if err != nil {
		return analysis.Config{}, err
	}

	out := analysis.Config{
		Significance:   c.Analysis.Significance,
		StdDev:         conv,
		SkipDegenerate: c.Analysis.SkipDegenerate,
	}
	for _, name := range c.Analysis.Indices {
		idx, err := analysis.ParseIndex(name)
		if err != nil {
			return analysis.Config{}, err
		}
		out.Indices = append(out.Indices, idx)
	}
	if len(out.Indices) == 0 {
		out.Indices = analysis.Indices()
	}

	return out, out.Validate()
}
