package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/convlab/internal/panel"
)

// GrowthPoint is one area's contribution to the beta regression.
type GrowthPoint struct {
	Area      string  `json:"area"`
	FirstYear int     `json:"first_year"`
	LastYear  int     `json:"last_year"`
	Initial   float64 `json:"initial"`
	Terminal  float64 `json:"terminal"`
	Growth    float64 `json:"growth"`
}

// GrowthPoints computes annualized growth (terminal/initial)/(last-first) per
// area, over the horizon since the area's first observation. Areas observed
// in a single year, or with a zero baseline, are skipped.
func GrowthPoints(p *panel.Panel) []GrowthPoint {
	if !p.HasBaselines() {
		p = p.DeriveBaselines()
	}

	var out []GrowthPoint
	for _, area := range p.Areas() {
		var first, last *panel.Observation
		series := p.Series(area)
		for i := range series {
			if series[i].Missing() {
				continue
			}
			if first == nil {
				first = &series[i]
			}
			last = &series[i]
		}
		if first == nil || last.Year == first.Year || first.Initial == 0 || math.IsNaN(first.Initial) {
			continue
		}

		out = append(out, GrowthPoint{
			Area:      area,
			FirstYear: first.Year,
			LastYear:  last.Year,
			Initial:   first.Initial,
			Terminal:  last.Value,
			Growth:    (last.Value / first.Initial) / float64(last.Year-first.Year),
		})
	}
	return out
}

// Beta regresses growth on initial value, one point per area. A significant
// negative slope is beta-convergence.
func Beta(points []GrowthPoint, alpha float64) (Regression, error) {
	if len(points) < 3 {
		return Regression{}, fmt.Errorf("beta: %w: %d areas, need 3", ErrInsufficientData, len(points))
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, pt := range points {
		x[i] = pt.Initial
		y[i] = pt.Growth
	}

	reg, err := Fit(x, y, alpha)
	if err != nil {
		return Regression{}, fmt.Errorf("beta: %w", err)
	}
	return reg, nil
}
