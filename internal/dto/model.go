package dto

// ModelDocument is the on-disk shape of a model (YAML or JSON).
// It uses "mapstructure" tags so documents are decoded from a generic map,
// letting scalars stand in for one-element lists and numbers for formulas.
type ModelDocument struct {
	Name       string         `json:"name" mapstructure:"name"`
	Dimensions []string       `json:"dimensions" mapstructure:"dimensions"`
	Settings   SettingsDoc    `json:"settings" mapstructure:"settings"`
	Parameters []ParameterDoc `json:"parameters" mapstructure:"parameters"`
	Variables  []VariableDoc  `json:"variables" mapstructure:"variables"`
	Chain      ChainDoc       `json:"chain" mapstructure:"chain"`
}

type SettingsDoc struct {
	CohortSize          float64      `json:"cohort_size" mapstructure:"cohort_size"`
	MaxCycles           int          `json:"max_cycles" mapstructure:"max_cycles"`
	HalfCycleCorrection bool         `json:"half_cycle_correction" mapstructure:"half_cycle_correction"`
	Discount            *DiscountDoc `json:"discount" mapstructure:"discount"`
}

type DiscountDoc struct {
	Rates         []float64 `json:"rates" mapstructure:"rates"` // percent per year, per dimension
	StartCycle    int       `json:"start_cycle" mapstructure:"start_cycle"`
	CyclesPerYear float64   `json:"cycles_per_year" mapstructure:"cycles_per_year"`
}

type ParameterDoc struct {
	Name  string   `json:"name" mapstructure:"name"`
	Value string   `json:"value" mapstructure:"value"`
	Dist  *DistDoc `json:"dist" mapstructure:"dist"`
}

// DistDoc names a distribution; every other key is a distribution parameter.
type DistDoc struct {
	Type   string         `json:"type" mapstructure:"type"`
	Params map[string]any `json:"-" mapstructure:",remain"`
}

type VariableDoc struct {
	Name  string `json:"name" mapstructure:"name"`
	Value string `json:"value" mapstructure:"value"`
}

type ChainDoc struct {
	Name         string    `json:"name" mapstructure:"name"`
	Termination  string    `json:"termination" mapstructure:"termination"`
	TerminalCost []string  `json:"terminal_cost" mapstructure:"terminal_cost"`
	UpdatesT0    []string  `json:"updates_t0" mapstructure:"updates_t0"` // "variable = formula"
	Updates      []string  `json:"updates" mapstructure:"updates"`
	States       []NodeDoc `json:"states" mapstructure:"states"`
}

// NodeDoc describes a state, chance, decision or transition node.
// A node with To set is a transition; without Type it defaults to chance.
type NodeDoc struct {
	Name     string    `json:"name" mapstructure:"name"`
	Type     string    `json:"type" mapstructure:"type"`
	Prob     string    `json:"prob" mapstructure:"prob"`
	Cost     []string  `json:"cost" mapstructure:"cost"`
	Reward   []string  `json:"reward" mapstructure:"reward"`
	Updates  []string  `json:"updates" mapstructure:"updates"`
	To       string    `json:"to" mapstructure:"to"`
	Children []NodeDoc `json:"children" mapstructure:"children"`
}
