package runtime

import (
	"math"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
)

// variables is the per-context variable registry. A variable is locked once
// its value is current for this cycle; reading an unlocked variable is an
// ordering error, reported as *domain.VariableLockError.
type variables struct {
	names  []string
	values []domain.Numeric
	locked []bool
	env    ports.Env // mirror read by formulas
}

func newVariables(names []string, env ports.Env) variables {
	return variables{
		names:  names,
		values: make([]domain.Numeric, len(names)),
		locked: make([]bool, len(names)),
		env:    env,
	}
}

func (v *variables) get(i int) (domain.Numeric, error) {
	if !v.locked[i] {
		return domain.Numeric{}, &domain.VariableLockError{Variable: v.names[i]}
	}
	return v.values[i], nil
}

// set stores a value and locks the variable.
func (v *variables) set(i int, val domain.Numeric) {
	v.values[i] = val
	v.locked[i] = true
	if val.IsMatrix() {
		v.env[v.names[i]] = val.Rows()
	} else {
		f, _ := val.Float()
		v.env[v.names[i]] = f
	}
}

func (v *variables) unlock(i int) { v.locked[i] = false }

func (v *variables) unlockAll() {
	for i := range v.locked {
		v.locked[i] = false
	}
}

// float returns the scalar value for tracing; matrices are traced as NaN.
func (v *variables) float(i int) float64 {
	f, err := v.values[i].Float()
	if err != nil {
		return math.NaN()
	}
	return f
}
