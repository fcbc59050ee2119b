package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/convlab/internal/panel"
)

// StdDevConvention selects the denominator used by the coefficient of variation.
type StdDevConvention int

const (
	SampleStdDev StdDevConvention = iota
	PopulationStdDev
)

func (c StdDevConvention) String() string {
	if c == PopulationStdDev {
		return "population"
	}
	return "sample"
}

func (c StdDevConvention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func ParseStdDev(s string) (StdDevConvention, error) {
	switch s {
	case "", "sample":
		return SampleStdDev, nil
	case "population":
		return PopulationStdDev, nil
	}
	return SampleStdDev, fmt.Errorf("analysis: unknown stddev convention: %s", s)
}

// Index names one of the four dispersion measures.
type Index string

const (
	IndexGini     Index = "gini"
	IndexRange    Index = "range"
	IndexCoV      Index = "cov"
	IndexVariance Index = "variance"
)

func Indices() []Index {
	return []Index{IndexGini, IndexRange, IndexCoV, IndexVariance}
}

func ParseIndex(s string) (Index, error) {
	for _, idx := range Indices() {
		if string(idx) == s {
			return idx, nil
		}
	}
	return "", fmt.Errorf("analysis: unknown index: %s", s)
}

func degenerate(n int) error {
	if n < 2 {
		return fmt.Errorf("%w: %d values, need 2", ErrDegenerateDistribution, n)
	}
	return nil
}

// Gini computes the rank-weighted Gini coefficient
// 2*sum(i*y(i)) / (n^2*mean) - (n+1)/n over values sorted ascending.
func Gini(values []float64) (float64, error) {
	n := len(values)
	if err := degenerate(n); err != nil {
		return math.NaN(), err
	}
	mean := stat.Mean(values, nil)
	if mean == 0 {
		return math.NaN(), fmt.Errorf("%w: zero mean", ErrDegenerateDistribution)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	weighted := 0.0
	for i, y := range sorted {
		weighted += float64(i+1) * y
	}
	fn := float64(n)
	return 2*weighted/(fn*fn*mean) - (fn+1)/fn, nil
}

func Range(values []float64) (float64, error) {
	if err := degenerate(len(values)); err != nil {
		return math.NaN(), err
	}
	return floats.Max(values) - floats.Min(values), nil
}

// Variance is the sample (n-1) variance.
func Variance(values []float64) (float64, error) {
	if err := degenerate(len(values)); err != nil {
		return math.NaN(), err
	}
	return stat.Variance(values, nil), nil
}

func CoefficientOfVariation(values []float64, conv StdDevConvention) (float64, error) {
	if err := degenerate(len(values)); err != nil {
		return math.NaN(), err
	}
	mean := stat.Mean(values, nil)
	if mean == 0 {
		return math.NaN(), fmt.Errorf("%w: zero mean", ErrDegenerateDistribution)
	}
	sd := stat.StdDev(values, nil)
	if conv == PopulationStdDev {
		sd = stat.PopStdDev(values, nil)
	}
	return sd / mean, nil
}

// DispersionPoint holds the four indices for one year. Undefined indices are
// NaN and Err explains why.
type DispersionPoint struct {
	Year       int     `json:"year"`
	EffectiveN int     `json:"effective_n"`
	Gini       float64 `json:"gini"`
	Range      float64 `json:"range"`
	CoV        float64 `json:"cov"`
	Variance   float64 `json:"variance"`
	Err        error   `json:"-"`
}

func (d DispersionPoint) Value(idx Index) float64 {
	switch idx {
	case IndexGini:
		return d.Gini
	case IndexRange:
		return d.Range
	case IndexCoV:
		return d.CoV
	case IndexVariance:
		return d.Variance
	}
	return math.NaN()
}

func (d DispersionPoint) Degenerate() bool {
	return d.Err != nil
}

// SigmaSeries computes the dispersion indices for every year of p, using only
// the areas observed that year.
func SigmaSeries(p *panel.Panel, conv StdDevConvention) []DispersionPoint {
	years := p.Years()
	out := make([]DispersionPoint, 0, len(years))

	for _, year := range years {
		values := p.CrossSection(year)
		pt := DispersionPoint{Year: year, EffectiveN: len(values)}

		var err error
		pt.Range, err = Range(values)
		if err != nil {
			pt.Gini, pt.CoV, pt.Variance = math.NaN(), math.NaN(), math.NaN()
			pt.Err = fmt.Errorf("year %d: %w", year, err)
			out = append(out, pt)
			continue
		}
		pt.Variance, _ = Variance(values)

		// Gini and CoV fail together on a zero mean
		pt.Gini, err = Gini(values)
		pt.CoV, _ = CoefficientOfVariation(values, conv)
		if err != nil {
			pt.Err = fmt.Errorf("year %d: %w", year, err)
		}

		out = append(out, pt)
	}

	return out
}
