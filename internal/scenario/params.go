package scenario

import "fmt"

const (
	DefaultAreas      = 10
	DefaultYears      = 20
	DefaultBaseMean   = 75.0
	DefaultBaseSpread = 10.0
	DefaultBaseJitter = 1.5
	DefaultRate       = 0.1
	DefaultNoise      = 0.1
	DefaultGroup      = 3
	DefaultEntryYear  = 6
)

// Params shapes every generated panel. Rate is the baseline yearly gain;
// scenarios scale it per group.
type Params struct {
	Areas      int     `yaml:"areas" json:"areas"`
	Years      int     `yaml:"years" json:"years"`
	BaseMean   float64 `yaml:"base_mean" json:"base_mean"`
	BaseSpread float64 `yaml:"base_spread" json:"base_spread"`
	BaseJitter float64 `yaml:"base_jitter" json:"base_jitter"`
	Rate       float64 `yaml:"rate" json:"rate"`
	Noise      float64 `yaml:"noise" json:"noise"`
	Group      int     `yaml:"group" json:"group"`
	EntryYear  int     `yaml:"entry_year" json:"entry_year"`
}

func DefaultParams() Params {
	return Params{
		Areas:      DefaultAreas,
		Years:      DefaultYears,
		BaseMean:   DefaultBaseMean,
		BaseSpread: DefaultBaseSpread,
		BaseJitter: DefaultBaseJitter,
		Rate:       DefaultRate,
		Noise:      DefaultNoise,
		Group:      DefaultGroup,
		EntryYear:  DefaultEntryYear,
	}
}

// Noiseless returns p without baseline jitter or observation noise, which
// makes the generated panel independent of the seed.
func (p Params) Noiseless() Params {
	p.BaseJitter = 0
	p.Noise = 0
	return p
}

func (p Params) Validate() error {
	switch {
	case p.Areas < 3:
		return fmt.Errorf("scenario: need at least 3 areas, got %d", p.Areas)
	case p.Years < 3:
		return fmt.Errorf("scenario: need at least 3 years, got %d", p.Years)
	case p.Group < 1 || 2*p.Group > p.Areas:
		return fmt.Errorf("scenario: group %d must be in [1, %d]", p.Group, p.Areas/2)
	case p.EntryYear < 2 || p.EntryYear >= p.Years:
		return fmt.Errorf("scenario: entry year %d must be in [2, %d]", p.EntryYear, p.Years-1)
	case p.Noise < 0 || p.BaseJitter < 0 || p.BaseSpread < 0:
		return fmt.Errorf("scenario: noise, jitter and spread must be non-negative")
	case p.BaseMean <= 0:
		return fmt.Errorf("scenario: base mean must be positive, got %g", p.BaseMean)
	}
	return nil
}
