// Package scenario synthesizes panels that encode growth hypotheses.
//
// Each [Scenario] maps a ranked set of baselines to a value per (area, year).
// All randomness flows through the *rand.Rand handed to [Scenario.Generate],
// so a seed fully determines the panel:
//
//	reg := scenario.NewRegistry()
//	p, err := reg.Generate("good_get_better", scenario.DefaultParams(), 42)
package scenario
