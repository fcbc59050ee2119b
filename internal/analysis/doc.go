// Package analysis provides the beta/sigma convergence analysis of a panel.
//
// The analysis has four steps, all pure functions of the panel:
//
//   - baselines: each area's first observed value ([panel.Panel.DeriveBaselines])
//   - [Beta]: OLS of annualized growth on initial value, one point per area
//   - [SigmaSeries]: Gini, range, coefficient of variation and variance per year
//   - [Trend]: OLS of one dispersion index on year
//
// [Analyzer] runs all of them and collects the results in a [Report]:
//
//	a, _ := analysis.New(analysis.DefaultConfig())
//	rep, err := a.Analyze(p)
//	if rep.Beta.Class == analysis.Convergence {
//	    // poorer areas improved faster
//	}
//
// # Degenerate inputs
//
// A year with fewer than two observed areas, or a zero cross-sectional mean,
// leaves indices undefined (NaN) and marks the [DispersionPoint] with an error
// wrapping [ErrDegenerateDistribution]. Trends fail on such years unless
// [Config.SkipDegenerate] is set.
package analysis
