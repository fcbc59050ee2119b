package scenario

import (
	"math"
	"math/rand"
)

func top(p Params, i int) bool {
	return i >= p.Areas-p.Group
}

func bottom(p Params, i int) bool {
	return i < p.Group
}

func elapsed(year int) float64 {
	return float64(year - 1)
}

func stability(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, _ int) float64 {
		return base[i]
	}
}

func parallelGrowth(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, year int) float64 {
		return base[i] + p.Rate*elapsed(year)
	}
}

func proportionalGrowth(p Params, base []float64, _ *rand.Rand) valueFunc {
	g := p.Rate / p.BaseMean
	return func(i, year int) float64 {
		return base[i] * math.Pow(1+g, elapsed(year))
	}
}

func goodGetBetter(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, year int) float64 {
		rate := p.Rate
		if top(p, i) {
			rate *= 2
		}
		return base[i] + rate*elapsed(year)
	}
}

func laggardsCatchUp(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, year int) float64 {
		rate := p.Rate
		if bottom(p, i) {
			rate *= 4
		}
		return base[i] + rate*elapsed(year)
	}
}

func regressionToMean(p Params, base []float64, rng *rand.Rand) valueFunc {
	const decay = 0.6
	shocks := make([]float64, len(base))
	for i := range shocks {
		shocks[i] = rng.NormFloat64() * p.BaseSpread / 3
	}
	return func(i, year int) float64 {
		t := elapsed(year)
		return base[i] + p.Rate*t + shocks[i]*math.Pow(decay, t)
	}
}

func polarization(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, year int) float64 {
		rate := p.Rate
		switch {
		case top(p, i):
			rate *= 2
		case bottom(p, i):
			rate = 0
		}
		return base[i] + rate*elapsed(year)
	}
}

func rankReversal(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, year int) float64 {
		rate := p.Rate
		if bottom(p, i) {
			rate *= 10
		}
		return base[i] + rate*elapsed(year)
	}
}

// lateEntrants leaves the bottom group unobserved before EntryYear. Entrants
// join BaseSpread/2 below their drawn baseline.
func lateEntrants(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, year int) float64 {
		if !bottom(p, i) {
			return base[i] + p.Rate*elapsed(year)
		}
		if year < p.EntryYear {
			return math.NaN()
		}
		return base[i] - p.BaseSpread/2 + 2*p.Rate*float64(year-p.EntryYear)
	}
}

func singleDecliner(p Params, base []float64, _ *rand.Rand) valueFunc {
	return func(i, year int) float64 {
		if i == 0 {
			return base[i] - p.Rate*elapsed(year)
		}
		return base[i] + p.Rate*elapsed(year)
	}
}
