package runtime

import (
	"errors"
	"testing"

	"github.com/aretw0/cohort/pkg/adapters/expr"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_ResolvesStatesAndTransitions(t *testing.T) {
	prog := compile(t, healthyDead())

	assert.Equal(t, []string{"Healthy", "Dead"}, prog.States())
	assert.Equal(t, []Transition{
		{Node: "die", From: 0, To: 1},
		{Node: "stay", From: 0, To: 0},
		{Node: "remain", From: 1, To: 1},
	}, prog.Transitions())
	assert.Equal(t, 5, prog.Settings().MaxCycles)
}

func TestCompile_DoesNotMutateModel(t *testing.T) {
	m := healthyDead()
	before := *m.Chain.Children[0]
	_ = compile(t, m)
	assert.Equal(t, before.Prob, m.Chain.Children[0].Prob)
	assert.Len(t, m.Chain.Children[0].Children, 2)
}

func TestCompile_StructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *domain.Model)
		reason string
	}{
		{
			name: "unknown transition target",
			mutate: func(m *domain.Model) {
				m.Chain.Children[0].Children[0].Transition = "Sick"
			},
			reason: `transition target "Sick"`,
		},
		{
			name: "duplicate state",
			mutate: func(m *domain.Model) {
				m.Chain.Children[1].Name = "Healthy"
			},
			reason: "duplicate state name",
		},
		{
			name: "non-state chain child",
			mutate: func(m *domain.Model) {
				m.Chain.Children = append(m.Chain.Children, &domain.Node{Name: "x", Type: domain.NodeTypeChance, Prob: "0"})
			},
			reason: "direct children of a chain must be states",
		},
		{
			name: "two complementary siblings",
			mutate: func(m *domain.Model) {
				m.Chain.Children[0].Children[0].Prob = "c"
			},
			reason: "complementary children",
		},
		{
			name: "transition with children",
			mutate: func(m *domain.Model) {
				tr := m.Chain.Children[1].Children[0]
				tr.Children = []*domain.Node{{Name: "y", Type: domain.NodeTypeTransition, Prob: "1", Transition: "Dead"}}
			},
			reason: "cannot have children",
		},
		{
			name: "reward count mismatch",
			mutate: func(m *domain.Model) {
				m.Chain.Children[0].Rewards = []string{"1", "2"}
			},
			reason: "2 reward formulas for 1 reward dimensions",
		},
		{
			name: "unknown update variable",
			mutate: func(m *domain.Model) {
				m.Chain.Updates = []domain.Update{{Variable: "ghost", Expr: "1"}}
			},
			reason: `unknown variable "ghost"`,
		},
		{
			name: "cyclic variables",
			mutate: func(m *domain.Model) {
				m.Variables = []domain.Variable{{Name: "a", Expr: "b + 1"}, {Name: "b", Expr: "a * 2"}}
			},
			reason: "cyclic variable definitions: a, b",
		},
		{
			name: "variable shadows cycle",
			mutate: func(m *domain.Model) {
				m.Variables = []domain.Variable{{Name: "t", Expr: "1"}}
			},
			reason: "collides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := healthyDead()
			tt.mutate(m)
			_, err := Compile(m, expr.New())
			require.Error(t, err)
			var se *domain.StructuralError
			require.True(t, errors.As(err, &se), "got %T: %v", err, err)
			assert.Contains(t, se.Reason, tt.reason)
		})
	}
}

func TestCompile_VariableOrder(t *testing.T) {
	m := healthyDead()
	m.Variables = []domain.Variable{
		{Name: "c", Expr: "b * 2"},
		{Name: "b", Expr: "a + t"},
		{Name: "a", Expr: "1"},
		{Name: "d", Expr: "5"},
	}
	prog := compile(t, m)

	// a=2, b=1, c=0, d=3
	assert.Equal(t, []int{2, 1, 0, 3}, prog.evalOrder)
	assert.Equal(t, []int{1, 0}, prog.dependents[2])
	assert.Equal(t, []int{0}, prog.dependents[1])
	assert.Empty(t, prog.dependents[3])
	assert.Equal(t, []int{1, 0}, prog.cycleDeps)
}
