package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/convlab/internal/panel"
)

// valueFunc returns the noiseless value of area i (ranked by baseline) in a
// year; NaN marks a missing observation.
type valueFunc func(i, year int) float64

type generator func(p Params, base []float64, rng *rand.Rand) valueFunc

type Scenario struct {
	Name        string
	Description string
	gen         generator
}

// AreaID names the i-th area, ranked by baseline.
func AreaID(i int) string {
	return fmt.Sprintf("A%02d", i+1)
}

// Baselines draws one starting level per area, evenly spread around BaseMean
// with optional jitter, sorted ascending so the index is the rank.
func Baselines(p Params, rng *rand.Rand) []float64 {
	base := make([]float64, p.Areas)
	for i := range base {
		pos := float64(i)/float64(p.Areas-1) - 0.5
		base[i] = p.BaseMean + p.BaseSpread*pos + rng.NormFloat64()*p.BaseJitter
	}
	sort.Float64s(base)
	return base
}

// Generate builds the raw panel. Baselines are left for the analyzer to derive.
func (s Scenario) Generate(p Params, rng *rand.Rand) (*panel.Panel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	base := Baselines(p, rng)
	value := s.gen(p, base, rng)

	obs := make([]panel.Observation, 0, p.Areas*p.Years)
	for i := 0; i < p.Areas; i++ {
		for year := 1; year <= p.Years; year++ {
			v := value(i, year)
			if !math.IsNaN(v) {
				v += rng.NormFloat64() * p.Noise
			}
			obs = append(obs, panel.Observation{Area: AreaID(i), Year: year, Value: v})
		}
	}

	return panel.New(obs, panel.WithYearRange(1, p.Years))
}

type Registry struct {
	scenarios map[string]Scenario
	order     []string
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}

	r.register("stability", "flat values; no beta, no sigma movement", stability)
	r.register("parallel_growth", "every area gains the same amount each year", parallelGrowth)
	r.register("proportional_growth", "every area grows by the same percentage", proportionalGrowth)
	r.register("good_get_better", "top areas gain twice as fast (Matthew effect)", goodGetBetter)
	r.register("laggards_catch_up", "bottom areas gain four times as fast", laggardsCatchUp)
	r.register("regression_to_mean", "transient starting shocks fade around a common path", regressionToMean)
	r.register("polarization", "top areas accelerate while bottom areas stagnate", polarization)
	r.register("rank_reversal", "bottom areas grow fast enough to overtake the leaders", rankReversal)
	r.register("late_entrants", "low-baseline areas join the panel late and grow faster", lateEntrants)
	r.register("single_decliner", "the weakest area declines while the rest improve", singleDecliner)

	return r
}

func (r *Registry) register(name, desc string, gen generator) {
	r.scenarios[name] = Scenario{Name: name, Description: desc, gen: gen}
	r.order = append(r.order, name)
}

func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario: %s", name)
	}
	return s, nil
}

// List returns the scenarios in registration order.
func (r *Registry) List() []Scenario {
	out := make([]Scenario, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.scenarios[name])
	}
	return out
}

func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Generate looks up name and generates its panel with a source seeded by seed.
func (r *Registry) Generate(name string, p Params, seed int64) (*panel.Panel, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return s.Generate(p, rand.New(rand.NewSource(seed)))
}
