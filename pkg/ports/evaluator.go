package ports

import "github.com/aretw0/cohort/pkg/domain"

// Env is the variable snapshot a formula is evaluated against.
// Values are float64, [][]float64 or functions exposed to formulas.
type Env map[string]any

// Formula is a compiled, immutable formula program.
// Eval must be safe to call concurrently with distinct Env values.
type Formula interface {
	// Eval evaluates the formula. allowMatrix=false rejects matrix results.
	Eval(env Env, allowMatrix bool) (domain.Numeric, error)

	// Symbols lists the identifiers the formula reads, without duplicates.
	Symbols() []string

	// String returns the source text.
	String() string
}

// Evaluator compiles formula source text.
type Evaluator interface {
	Compile(src string) (Formula, error)
}
