package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Classification is the verdict of a slope test. For beta regressions it
// reads as beta-convergence/divergence, for trends as sigma-convergence/divergence.
type Classification int

const (
	None Classification = iota
	Convergence
	Divergence
)

func (c Classification) String() string {
	switch c {
	case Convergence:
		return "convergence"
	case Divergence:
		return "divergence"
	default:
		return "none"
	}
}

func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify applies the significance convention: a negative slope with
// p < alpha converges, a positive one diverges.
func Classify(slope, p, alpha float64) Classification {
	if math.IsNaN(p) || p >= alpha {
		return None
	}
	switch {
	case slope < 0:
		return Convergence
	case slope > 0:
		return Divergence
	}
	return None
}

type Regression struct {
	Intercept float64        `json:"intercept"`
	Slope     float64        `json:"slope"`
	StdErr    float64        `json:"stderr"`
	TStat     float64        `json:"t_stat"`
	PValue    float64        `json:"p_value"`
	N         int            `json:"n"`
	Class     Classification `json:"classification"`
}

// Fit runs ordinary least squares y ~ x and tests the slope against zero
// with a two-sided Student t test on n-2 degrees of freedom.
//
// A response with zero spread yields slope 0 and p 1. An exact fit with a
// non-zero slope yields stderr 0, an infinite t and p 0.
func Fit(x, y []float64, alpha float64) (Regression, error) {
	if len(x) != len(y) {
		return Regression{}, fmt.Errorf("analysis: fit: %d predictors, %d responses", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return Regression{}, fmt.Errorf("%w: %d points, need 3", ErrInsufficientData, n)
	}
	if floats.Min(x) == floats.Max(x) {
		return Regression{}, ErrDegeneratePredictor
	}

	if floats.Min(y) == floats.Max(y) {
		return Regression{Intercept: y[0], PValue: 1, N: n, Class: None}, nil
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	sse := 0.0
	for i := range x {
		r := y[i] - (intercept + slope*x[i])
		sse += r * r
	}
	df := float64(n - 2)
	sxx := stat.Variance(x, nil) * float64(n-1)
	se := math.Sqrt(sse / df / sxx)

	reg := Regression{
		Intercept: intercept,
		Slope:     slope,
		StdErr:    se,
		N:         n,
	}

	if se == 0 {
		reg.TStat = math.Copysign(math.Inf(1), slope)
		if slope == 0 {
			reg.TStat = 0
			reg.PValue = 1
		}
	} else {
		reg.TStat = slope / se
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		reg.PValue = 2 * t.CDF(-math.Abs(reg.TStat))
	}

	reg.Class = Classify(reg.Slope, reg.PValue, alpha)
	return reg, nil
}
