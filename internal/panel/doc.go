// Package panel holds the (area, year, value) panel datasets the convergence
// analysis runs on.
//
// A [Panel] is immutable once built with [New]. Missing values are NaN and are
// excluded from every aggregate. Per-area baselines are derived, never supplied:
//
//	p, err := panel.New(obs, panel.WithYearRange(1, 20))
//	if err != nil {
//	    return err
//	}
//	p = p.DeriveBaselines()
//
// [DeriveBaselines] must run after missingness is final; the baseline of an
// area is its first non-missing value in year order, which moves if earlier
// years are blanked afterwards.
package panel
