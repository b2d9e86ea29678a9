package runtime

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
)

// threadContext is the unit of isolation: everything one run mutates.
// A context is owned by exactly one goroutine for the run's duration and
// never touches another context or the Program's state.
type threadContext struct {
	prog  *Program
	chain string

	env    ports.Env
	vars   variables
	params map[string]float64
	cycle  int // value of the cycle variable seen by formulas
	step   int // loop iteration; indexes the trace and counts against the cycle cap
	rng    *rand.Rand

	cur, next []float64

	cycleRewards, cycleRewardsDis []float64
	cumRewards, cumRewardsDis     []float64

	probs [][]float64 // per node id: resolved child probabilities for this cycle
	trace *domain.Trace
}

func newThreadContext(prog *Program, run RunOptions) (*threadContext, error) {
	numStates := len(prog.states)
	numDim := len(prog.model.Dimensions)

	var rng *rand.Rand
	if run.Seeded {
		rng = rand.New(rand.NewPCG(uint64(run.Seed), uint64(run.Seed)^0x9e3779b97f4a7c15))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	tc := &threadContext{
		prog:            prog,
		chain:           prog.chain.name,
		env:             make(ports.Env, len(prog.params)+len(prog.vars)+2),
		params:          make(map[string]float64, len(prog.params)),
		rng:             rng,
		cur:             make([]float64, numStates),
		next:            make([]float64, numStates),
		cycleRewards:    make([]float64, numDim),
		cycleRewardsDis: make([]float64, numDim),
		cumRewards:      make([]float64, numDim),
		cumRewardsDis:   make([]float64, numDim),
		probs:           make([][]float64, prog.numNodes),
		trace:           domain.NewTrace(prog.stateNames, prog.model.Dimensions, prog.Variables()),
	}
	tc.vars = newVariables(prog.Variables(), tc.env)
	tc.env["rand"] = tc.rng.Float64
	tc.setCycle(0)

	if err := tc.initParams(run.Parameters); err != nil {
		return nil, err
	}
	return tc, nil
}

func (tc *threadContext) setCycle(t int) {
	tc.cycle = t
	tc.env[domain.CycleVariable] = float64(t)
}

// initParams evaluates parameter base values in declaration order, unless the
// caller supplied an override (a sensitivity analysis draw).
func (tc *threadContext) initParams(overrides map[string]float64) error {
	known := make(map[string]struct{}, len(tc.prog.params))
	for _, p := range tc.prog.params {
		known[p.name] = struct{}{}
		if v, ok := overrides[p.name]; ok {
			tc.params[p.name] = v
			tc.env[p.name] = v
			continue
		}
		v, err := tc.evalFloat(p.name, p.formula)
		if err != nil {
			return err
		}
		tc.params[p.name] = v
		tc.env[p.name] = v
	}
	for name := range overrides {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("override: %w %q", domain.ErrUnknownParameter, name)
		}
	}
	return nil
}

func (tc *threadContext) evalError(node string, cf *cformula, err error) error {
	return &domain.EvaluationError{Chain: tc.chain, Node: node, Formula: cf.f.String(), Err: err}
}

// eval checks that every variable the formula reads is current, then evaluates it.
func (tc *threadContext) eval(node string, cf *cformula, allowMatrix bool) (domain.Numeric, error) {
	for _, i := range cf.reads {
		if _, err := tc.vars.get(i); err != nil {
			return domain.Numeric{}, tc.evalError(node, cf, err)
		}
	}
	v, err := cf.f.Eval(tc.env, allowMatrix)
	if err != nil {
		return domain.Numeric{}, tc.evalError(node, cf, err)
	}
	return v, nil
}

func (tc *threadContext) evalFloat(node string, cf *cformula) (float64, error) {
	v, err := tc.eval(node, cf, false)
	if err != nil {
		return 0, err
	}
	f, err := v.Float()
	if err != nil {
		return 0, tc.evalError(node, cf, err)
	}
	return f, nil
}

// initVariables evaluates every variable once, dependencies first, locking each.
func (tc *threadContext) initVariables() error {
	tc.vars.unlockAll()
	for _, i := range tc.prog.evalOrder {
		if err := tc.recompute(i); err != nil {
			return err
		}
	}
	return nil
}

func (tc *threadContext) recompute(i int) error {
	v := tc.prog.vars[i]
	val, err := tc.eval(v.name, v.formula, true)
	if err != nil {
		return err
	}
	tc.vars.set(i, val)
	return nil
}

// propagate recomputes every variable that depends on variable x.
func (tc *threadContext) propagate(x int) error {
	return tc.recomputeAll(tc.prog.dependents[x])
}

// refreshCycleDependents recomputes the variables that read the cycle counter.
func (tc *threadContext) refreshCycleDependents() error {
	return tc.recomputeAll(tc.prog.cycleDeps)
}

func (tc *threadContext) recomputeAll(order []int) error {
	for _, d := range order {
		tc.vars.unlock(d)
	}
	for _, d := range order {
		if err := tc.recompute(d); err != nil {
			return err
		}
	}
	return nil
}

// applyUpdates runs update rules in order, then refreshes their dependents.
func (tc *threadContext) applyUpdates(node string, updates []cupdate) error {
	for _, u := range updates {
		val, err := tc.eval(node, u.formula, true)
		if err != nil {
			return err
		}
		tc.vars.set(u.variable, val)
	}
	for _, u := range updates {
		if err := tc.propagate(u.variable); err != nil {
			return err
		}
	}
	return nil
}
