package dsl_test

import (
	"testing"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_HealthyDead(t *testing.T) {
	b := dsl.New("healthy-dead").
		Dimensions("LY", "Cost").
		Cohort(1000).
		MaxCycles(5).
		Discount(1, 3, 3.5)
	b.Param("pDie", "0.1").Dist("normal", map[string]float64{"mu": 0.1, "sigma": 0.01})
	b.Variable("age", "40 + t")

	chain := b.Chain("Markov").Terminate("t >= 5").Cost("0", "100")
	healthy := chain.State("Healthy").Prob("1").Reward("1", "50")
	healthy.Transition("die", "Dead").Prob("pDie").Cost("0", "1000")
	healthy.Transition("stay", "Healthy").Complement()
	chain.State("Dead").Prob("0").Reward("0", "0").
		Transition("remain", "Dead").Prob("1")

	m, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "healthy-dead", m.Name)
	assert.Equal(t, []string{"LY", "Cost"}, m.Dimensions)
	assert.Equal(t, 1000.0, m.Settings.CohortSize)
	assert.True(t, m.Settings.DiscountRewards)
	assert.Equal(t, []float64{3, 3.5}, m.Settings.DiscountRates)
	require.Len(t, m.Parameters, 1)
	assert.Equal(t, "normal", m.Parameters[0].Dist.Type)

	require.Len(t, m.Chain.Children, 2)
	h := m.Chain.Children[0]
	assert.Equal(t, domain.NodeTypeState, h.Type)
	assert.Equal(t, "Dead", h.Children[0].Transition)
	assert.True(t, domain.IsComplementary(h.Children[1].Prob))
	assert.Equal(t, []string{"0", "100"}, m.Chain.Costs)
}

func TestBuilder_Misuse(t *testing.T) {
	_, err := dsl.New("empty").Build()
	assert.ErrorContains(t, err, "no chain")

	b := dsl.New("bad").Dimensions("LY")
	chain := b.Chain("Markov")
	s := chain.State("A").Prob("1")
	s.State("B")
	s.Transition("t", "A").Prob("1").Reward("1")
	b.Chain("Other")

	_, err = b.Build()
	require.Error(t, err)
	assert.ErrorContains(t, err, "states can only be added to the chain")
	assert.ErrorContains(t, err, "rewards can only be set on states")
	assert.ErrorContains(t, err, `chain already defined as "Markov"`)
}
