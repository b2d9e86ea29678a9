package runtime

import (
	"context"
	"testing"

	"github.com/aretw0/cohort/pkg/adapters/expr"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/stretchr/testify/require"
)

// healthyDead is a two-state model: 10% of Healthy die each cycle, Healthy
// earns one unit per cycle and the run stops at t >= 5.
func healthyDead() *domain.Model {
	return &domain.Model{
		Name:       "healthy-dead",
		Dimensions: []string{"LY"},
		Settings: domain.Settings{
			CohortSize: 1000,
			MaxCycles:  5,
		},
		Chain: &domain.Node{
			Name:        "Markov",
			Type:        domain.NodeTypeChain,
			Termination: "t >= 5",
			Children: []*domain.Node{
				{
					Name:    "Healthy",
					Type:    domain.NodeTypeState,
					Prob:    "1",
					Rewards: []string{"1"},
					Children: []*domain.Node{
						{Name: "die", Type: domain.NodeTypeTransition, Prob: "0.1", Transition: "Dead"},
						{Name: "stay", Type: domain.NodeTypeTransition, Prob: "C", Transition: "Healthy"},
					},
				},
				{
					Name:    "Dead",
					Type:    domain.NodeTypeState,
					Prob:    "0",
					Rewards: []string{"0"},
					Children: []*domain.Node{
						{Name: "remain", Type: domain.NodeTypeTransition, Prob: "1", Transition: "Dead"},
					},
				},
			},
		},
	}
}

func compile(t *testing.T, m *domain.Model) *Program {
	t.Helper()
	prog, err := Compile(m, expr.New())
	require.NoError(t, err)
	return prog
}

func simulate(t *testing.T, m *domain.Model, opts ...Option) *domain.RunResult {
	t.Helper()
	res, err := NewSimulator(opts...).Simulate(context.Background(), compile(t, m), RunOptions{RunID: "test"})
	require.NoError(t, err)
	return res
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}
