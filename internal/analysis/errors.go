package analysis

import "errors"

// Domain errors for convergence analysis.
var (
	// ErrInsufficientData indicates too few points for a regression: fewer
	// than 3 areas for beta, fewer than 3 years for a trend.
	ErrInsufficientData = errors.New("analysis: insufficient data")

	// ErrDegenerateDistribution indicates a cross-section whose index is
	// undefined (zero mean, or fewer than 2 areas observed).
	ErrDegenerateDistribution = errors.New("analysis: degenerate distribution")

	// ErrDegeneratePredictor indicates a regressor with zero variance, e.g.
	// every area sharing the same initial value.
	ErrDegeneratePredictor = errors.New("analysis: predictor has zero variance")
)
