package domain

// Settings are the model-wide simulation options.
type Settings struct {
	CohortSize          float64   `json:"cohort_size" yaml:"cohort_size"`
	MaxCycles           int       `json:"max_cycles" yaml:"max_cycles"`
	HalfCycleCorrection bool      `json:"half_cycle_correction" yaml:"half_cycle_correction"`
	DiscountRewards     bool      `json:"discount_rewards" yaml:"discount_rewards"`
	DiscountRates       []float64 `json:"discount_rates,omitempty" yaml:"discount_rates,omitempty"` // annual, in percent, per dimension
	DiscountStartCycle  int       `json:"discount_start_cycle" yaml:"discount_start_cycle"`
	CyclesPerYear       float64   `json:"cycles_per_year" yaml:"cycles_per_year"`
}

// Variable is a model-wide variable with its defining formula.
type Variable struct {
	Name string `json:"name" yaml:"name"`
	Expr string `json:"expr" yaml:"expr"`
}

// DistSpec describes the sampling distribution of a parameter for sensitivity analysis.
// Params are interpreted by the distribution named in Type.
type DistSpec struct {
	Type   string             `json:"type" yaml:"type"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// Parameter is a model input. Expr gives its base value; Dist, if set, is
// sampled instead during probabilistic sensitivity analysis.
type Parameter struct {
	Name string    `json:"name" yaml:"name"`
	Expr string    `json:"expr" yaml:"expr"`
	Dist *DistSpec `json:"dist,omitempty" yaml:"dist,omitempty"`
}

// Model is a complete cohort model definition.
type Model struct {
	Name       string      `json:"name" yaml:"name"`
	Dimensions []string    `json:"dimensions" yaml:"dimensions"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Variables  []Variable  `json:"variables,omitempty" yaml:"variables,omitempty"`
	Settings   Settings    `json:"settings" yaml:"settings"`
	Chain      *Node       `json:"chain" yaml:"chain"`
}

// WithDefaults returns a copy of the settings with unset fields filled in.
func (s Settings) WithDefaults(numDimensions int) Settings {
	if s.CohortSize == 0 {
		s.CohortSize = DefaultCohortSize
	}
	if s.MaxCycles <= 0 {
		s.MaxCycles = DefaultMaxCycles
	}
	if s.CyclesPerYear <= 0 {
		s.CyclesPerYear = 1
	}
	if len(s.DiscountRates) < numDimensions {
		rates := make([]float64, numDimensions)
		copy(rates, s.DiscountRates)
		s.DiscountRates = rates
	}
	return s
}
