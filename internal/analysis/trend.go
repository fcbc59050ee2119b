package analysis

import (
	"fmt"
	"math"
)

// Trend fits idx ~ year over a sigma series. A significant negative slope is
// sigma-convergence. Years where idx is undefined fail the trend unless
// skipDegenerate is set, in which case they are left out.
func Trend(series []DispersionPoint, idx Index, alpha float64, skipDegenerate bool) (Regression, error) {
	x := make([]float64, 0, len(series))
	y := make([]float64, 0, len(series))

	for _, pt := range series {
		v := pt.Value(idx)
		if math.IsNaN(v) {
			if !skipDegenerate {
				err := pt.Err
				if err == nil {
					err = fmt.Errorf("year %d: %w", pt.Year, ErrDegenerateDistribution)
				}
				return Regression{}, fmt.Errorf("trend %s: %w", idx, err)
			}
			continue
		}
		x = append(x, float64(pt.Year))
		y = append(y, v)
	}

	if len(x) < 3 {
		return Regression{}, fmt.Errorf("trend %s: %w: %d years, need 3", idx, ErrInsufficientData, len(x))
	}

	reg, err := Fit(x, y, alpha)
	if err != nil {
		return Regression{}, fmt.Errorf("trend %s: %w", idx, err)
	}
	return reg, nil
}
