package panel

import (
	"fmt"
	"math"
	"sort"
)

type Observation struct {
	Area    string
	Year    int
	Value   float64
	Initial float64
}

// Missing reports whether the observation carries no value.
func (o Observation) Missing() bool {
	return math.IsNaN(o.Value)
}

type key struct {
	area string
	year int
}

type Panel struct {
	obs       []Observation
	areas     []string
	years     []int
	index     map[key]int
	baselines bool
}

type options struct {
	minYear int
	maxYear int
}

type Option func(*options)

// WithYearRange restricts accepted years to [lo, hi].
func WithYearRange(lo, hi int) Option {
	return func(o *options) {
		o.minYear = lo
		o.maxYear = hi
	}
}

// New validates and copies obs. Initial values in obs are ignored.
func New(obs []Observation, opts ...Option) (*Panel, error) {
	o := options{minYear: 1, maxYear: math.MaxInt}
	for _, opt := range opts {
		opt(&o)
	}

	cp := make([]Observation, len(obs))
	seen := make(map[key]struct{}, len(obs))
	for i, ob := range obs {
		switch {
		case ob.Area == "" && ob.Year == 0:
			return nil, &MalformedError{Index: i, Observation: ob, Reason: "missing area and year"}
		case ob.Area == "":
			return nil, &MalformedError{Index: i, Observation: ob, Reason: "missing area"}
		case ob.Year < o.minYear || ob.Year > o.maxYear:
			return nil, &MalformedError{Index: i, Observation: ob, Reason: fmt.Sprintf("year outside [%d, %d]", o.minYear, o.maxYear)}
		case math.IsInf(ob.Value, 0):
			return nil, &MalformedError{Index: i, Observation: ob, Reason: "infinite value"}
		}

		k := key{ob.Area, ob.Year}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: area %q year %d", ErrDuplicateObservation, ob.Area, ob.Year)
		}
		seen[k] = struct{}{}

		ob.Initial = math.NaN()
		cp[i] = ob
	}

	return build(cp, false), nil
}

func build(obs []Observation, baselines bool) *Panel {
	sort.Slice(obs, func(i, j int) bool {
		if obs[i].Year != obs[j].Year {
			return obs[i].Year < obs[j].Year
		}
		return obs[i].Area < obs[j].Area
	})

	p := &Panel{
		obs:       obs,
		index:     make(map[key]int, len(obs)),
		baselines: baselines,
	}

	areaSet := make(map[string]struct{})
	yearSet := make(map[int]struct{})
	for i, ob := range obs {
		p.index[key{ob.Area, ob.Year}] = i
		if _, ok := areaSet[ob.Area]; !ok {
			areaSet[ob.Area] = struct{}{}
			p.areas = append(p.areas, ob.Area)
		}
		if _, ok := yearSet[ob.Year]; !ok {
			yearSet[ob.Year] = struct{}{}
			p.years = append(p.years, ob.Year)
		}
	}
	sort.Strings(p.areas)
	sort.Ints(p.years)

	return p
}

// DeriveBaselines returns a new panel whose Initial fields hold each area's
// first non-missing value in year order. Areas with no value keep NaN.
func (p *Panel) DeriveBaselines() *Panel {
	first := make(map[string]float64, len(p.areas))
	// obs is year-ordered, so the first hit per area is its baseline
	for _, ob := range p.obs {
		if ob.Missing() {
			continue
		}
		if _, ok := first[ob.Area]; !ok {
			first[ob.Area] = ob.Value
		}
	}

	cp := make([]Observation, len(p.obs))
	for i, ob := range p.obs {
		if v, ok := first[ob.Area]; ok {
			ob.Initial = v
		} else {
			ob.Initial = math.NaN()
		}
		cp[i] = ob
	}

	return build(cp, true)
}

func (p *Panel) HasBaselines() bool {
	return p.baselines
}

func (p *Panel) Len() int {
	return len(p.obs)
}

func (p *Panel) Areas() []string {
	out := make([]string, len(p.areas))
	copy(out, p.areas)
	return out
}

func (p *Panel) Years() []int {
	out := make([]int, len(p.years))
	copy(out, p.years)
	return out
}

// Observations returns a copy ordered by (year, area).
func (p *Panel) Observations() []Observation {
	out := make([]Observation, len(p.obs))
	copy(out, p.obs)
	return out
}

// Lookup returns the record for (area, year).
func (p *Panel) Lookup(area string, year int) (Observation, bool) {
	i, ok := p.index[key{area, year}]
	if !ok {
		return Observation{}, false
	}
	return p.obs[i], true
}

// Series returns every record of area in year order, missing ones included.
func (p *Panel) Series(area string) []Observation {
	var out []Observation
	for _, year := range p.years {
		if ob, ok := p.Lookup(area, year); ok {
			out = append(out, ob)
		}
	}
	return out
}

// CrossSection returns the non-missing values observed in year, ordered by area.
func (p *Panel) CrossSection(year int) []float64 {
	var out []float64
	for _, area := range p.areas {
		ob, ok := p.Lookup(area, year)
		if !ok || ob.Missing() {
			continue
		}
		out = append(out, ob.Value)
	}
	return out
}
