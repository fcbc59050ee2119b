// Package sweep runs a scenario over a grid of params and many seeds and
// tallies how often each verdict comes out.
package sweep

import (
	"fmt"

	"github.com/san-kum/convlab/internal/scenario"
)

// Grid is the cartesian product of values for named scenario params.
type Grid struct {
	names  []string
	values [][]float64
}

func NewGrid(names []string, values [][]float64) (*Grid, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("sweep: %d names but %d value lists", len(names), len(values))
	}
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if _, err := apply(scenario.DefaultParams(), name, 0); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, fmt.Errorf("sweep: duplicate param %s", name)
		}
		seen[name] = true
		if len(values[i]) == 0 {
			return nil, fmt.Errorf("sweep: no values for %s", name)
		}
	}
	return &Grid{names: names, values: values}, nil
}

func (g *Grid) Names() []string {
	return g.names
}

// Points enumerates the grid with the last name varying fastest.
func (g *Grid) Points() []map[string]float64 {
	var out []map[string]float64
	g.points(0, make(map[string]float64), &out)
	return out
}

func (g *Grid) points(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.names) {
		*out = append(*out, current)
		return
	}

	name := g.names[depth]
	for _, val := range g.values[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		g.points(depth+1, next, out)
	}
}

// apply sets one named param. Integer params are truncated.
func apply(p scenario.Params, name string, v float64) (scenario.Params, error) {
	switch name {
	case "noise":
		p.Noise = v
	case "rate":
		p.Rate = v
	case "base_jitter":
		p.BaseJitter = v
	case "base_spread":
		p.BaseSpread = v
	case "base_mean":
		p.BaseMean = v
	case "areas":
		p.Areas = int(v)
	case "years":
		p.Years = int(v)
	case "group":
		p.Group = int(v)
	case "entry_year":
		p.EntryYear = int(v)
	default:
		return p, fmt.Errorf("sweep: unknown param %s", name)
	}
	return p, nil
}
