package config

import (
	"sort"

	"github.com/san-kum/convlab/internal/scenario"
)

// Presets override scenario params; analysis settings keep their defaults.
var Presets = map[string]scenario.Params{
	"noiseless": scenario.DefaultParams().Noiseless(),
	"noisy": {
		Areas: 10, Years: 20, BaseMean: 75, BaseSpread: 10, BaseJitter: 3,
		Rate: 0.1, Noise: 0.5, Group: 3, EntryYear: 6,
	},
	"long_horizon": {
		Areas: 10, Years: 50, BaseMean: 75, BaseSpread: 10, BaseJitter: 1.5,
		Rate: 0.1, Noise: 0.1, Group: 3, EntryYear: 11,
	},
	"wide_panel": {
		Areas: 40, Years: 20, BaseMean: 75, BaseSpread: 12, BaseJitter: 1.5,
		Rate: 0.1, Noise: 0.1, Group: 10, EntryYear: 6,
	},
}

// GetPreset returns the default config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	params, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Params = params
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
