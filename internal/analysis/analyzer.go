package analysis

import (
	"fmt"

	"github.com/san-kum/convlab/internal/panel"
)

const DefaultSignificance = 0.05

type Config struct {
	Significance   float64          `json:"significance"`
	StdDev         StdDevConvention `json:"stddev"`
	SkipDegenerate bool             `json:"skip_degenerate"`
	Indices        []Index          `json:"indices"`
}

func DefaultConfig() Config {
	return Config{
		Significance: DefaultSignificance,
		StdDev:       SampleStdDev,
		Indices:      Indices(),
	}
}

func (c Config) Validate() error {
	if c.Significance <= 0 || c.Significance >= 1 {
		return fmt.Errorf("analysis: significance must be in (0, 1), got %g", c.Significance)
	}
	if c.StdDev != SampleStdDev && c.StdDev != PopulationStdDev {
		return fmt.Errorf("analysis: unknown stddev convention: %d", c.StdDev)
	}
	for _, idx := range c.Indices {
		if _, err := ParseIndex(string(idx)); err != nil {
			return err
		}
	}
	return nil
}

// TrendResult is the trend of one index. Err is set when the trend could
// not be fitted; Regression is then zero.
type TrendResult struct {
	Index Index `json:"index"`
	Regression
	Err error `json:"-"`
}

type Report struct {
	Config  Config            `json:"config"`
	Growth  []GrowthPoint     `json:"growth"`
	Beta    Regression        `json:"beta"`
	BetaErr error             `json:"-"`
	Series  []DispersionPoint `json:"series"`
	Trends  []TrendResult     `json:"trends"`
}

func (r *Report) Trend(idx Index) (TrendResult, bool) {
	for _, tr := range r.Trends {
		if tr.Index == idx {
			return tr, true
		}
	}
	return TrendResult{}, false
}

// DegenerateYears lists the years whose cross-section left an index undefined.
func (r *Report) DegenerateYears() []int {
	var years []int
	for _, pt := range r.Series {
		if pt.Degenerate() {
			years = append(years, pt.Year)
		}
	}
	return years
}

// Analyzer runs the full convergence analysis. It holds only its
// configuration and is safe to share.
type Analyzer struct {
	cfg Config
}

func New(cfg Config) (*Analyzer, error) {
	if len(cfg.Indices) == 0 {
		cfg.Indices = Indices()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg}, nil
}

func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze derives baselines, fits the beta regression, computes the sigma
// series and fits a trend per configured index. Failures of individual
// computations are recorded on the report; only an empty panel is an error.
func (a *Analyzer) Analyze(p *panel.Panel) (*Report, error) {
	if p == nil || p.Len() == 0 {
		return nil, fmt.Errorf("%w: empty panel", ErrInsufficientData)
	}
	if !p.HasBaselines() {
		p = p.DeriveBaselines()
	}

	r := &Report{Config: a.cfg}

	r.Growth = GrowthPoints(p)
	r.Beta, r.BetaErr = Beta(r.Growth, a.cfg.Significance)

	r.Series = SigmaSeries(p, a.cfg.StdDev)
	for _, idx := range a.cfg.Indices {
		tr := TrendResult{Index: idx}
		tr.Regression, tr.Err = Trend(r.Series, idx, a.cfg.Significance, a.cfg.SkipDegenerate)
		r.Trends = append(r.Trends, tr)
	}

	return r, nil
}
