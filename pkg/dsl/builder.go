package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/cohort/pkg/domain"
)

// Builder manages the model construction.
type Builder struct {
	model domain.Model
	chain *NodeBuilder
	errs  []error
}

// New creates a new model builder.
func New(name string) *Builder {
	return &Builder{
		model: domain.Model{Name: name},
	}
}

// Dimensions sets the reward dimension names.
func (b *Builder) Dimensions(names ...string) *Builder {
	b.model.Dimensions = append(b.model.Dimensions, names...)
	return b
}

// Cohort sets the cohort size.
func (b *Builder) Cohort(size float64) *Builder {
	b.model.Settings.CohortSize = size
	return b
}

// MaxCycles sets the cycle cap.
func (b *Builder) MaxCycles(n int) *Builder {
	b.model.Settings.MaxCycles = n
	return b
}

// HalfCycle enables half-cycle correction.
func (b *Builder) HalfCycle() *Builder {
	b.model.Settings.HalfCycleCorrection = true
	return b
}

// Discount enables discounting with per-dimension annual rates in percent,
// starting at cycle start.
func (b *Builder) Discount(start int, ratesPercent ...float64) *Builder {
	b.model.Settings.DiscountRewards = true
	b.model.Settings.DiscountStartCycle = start
	b.model.Settings.DiscountRates = ratesPercent
	return b
}

// CyclesPerYear sets the cycle length used by discounting.
func (b *Builder) CyclesPerYear(n float64) *Builder {
	b.model.Settings.CyclesPerYear = n
	return b
}

// Param declares a parameter with its base formula.
func (b *Builder) Param(name, expr string) *ParamBuilder {
	b.model.Parameters = append(b.model.Parameters, domain.Parameter{Name: name, Expr: expr})
	return &ParamBuilder{index: len(b.model.Parameters) - 1, builder: b}
}

// Variable declares a model-wide variable.
func (b *Builder) Variable(name, expr string) *Builder {
	b.model.Variables = append(b.model.Variables, domain.Variable{Name: name, Expr: expr})
	return b
}

// Chain creates the chain root. A model has exactly one chain.
func (b *Builder) Chain(name string) *NodeBuilder {
	if b.chain != nil {
		b.errs = append(b.errs, fmt.Errorf("chain already defined as %q", b.chain.node.Name))
		return b.chain
	}
	b.chain = &NodeBuilder{
		node:    &domain.Node{Name: name, Type: domain.NodeTypeChain},
		builder: b,
	}
	return b.chain
}

// Build returns the model. Structural validation beyond builder misuse is
// left to compilation.
func (b *Builder) Build() (*domain.Model, error) {
	if b.chain == nil {
		b.errs = append(b.errs, errors.New("model has no chain"))
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	m := b.model
	m.Chain = b.chain.node
	return &m, nil
}

// ParamBuilder configures a parameter.
type ParamBuilder struct {
	index   int
	builder *Builder
}

// Dist attaches a sampling distribution used by sensitivity analysis.
func (p *ParamBuilder) Dist(kind string, params map[string]float64) *Builder {
	p.builder.model.Parameters[p.index].Dist = &domain.DistSpec{Type: kind, Params: params}
	return p.builder
}
