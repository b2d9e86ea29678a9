package loader_test

import (
	"testing"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_YAML(t *testing.T) {
	m, err := loader.LoadFile("testdata/healthy_dead.yaml")
	require.NoError(t, err)

	assert.Equal(t, "healthy-dead", m.Name)
	assert.Equal(t, []string{"LY"}, m.Dimensions)
	assert.Equal(t, 1000.0, m.Settings.CohortSize)
	assert.Equal(t, 5, m.Settings.MaxCycles)
	assert.False(t, m.Settings.DiscountRewards)

	require.Len(t, m.Parameters, 1)
	assert.Equal(t, "0.1", m.Parameters[0].Expr)
	require.NotNil(t, m.Parameters[0].Dist)
	assert.Equal(t, "normal", m.Parameters[0].Dist.Type)
	assert.Equal(t, map[string]float64{"mu": 0.1, "sigma": 0.02}, m.Parameters[0].Dist.Params)

	require.Equal(t, domain.NodeTypeChain, m.Chain.Type)
	assert.Equal(t, "t >= 5", m.Chain.Termination)
	require.Len(t, m.Chain.Children, 2)

	healthy := m.Chain.Children[0]
	assert.Equal(t, domain.NodeTypeState, healthy.Type)
	assert.Equal(t, "1", healthy.Prob)
	assert.Equal(t, []string{"1"}, healthy.Rewards)
	require.Len(t, healthy.Children, 2)
	assert.Equal(t, domain.NodeTypeTransition, healthy.Children[0].Type)
	assert.Equal(t, "Dead", healthy.Children[0].Transition)
	assert.Equal(t, "pDie", healthy.Children[0].Prob)
	assert.True(t, domain.IsComplementary(healthy.Children[1].Prob))
}

func TestParse_JSONWithNestedNodes(t *testing.T) {
	doc := `{
		"name": "sick",
		"dimensions": ["Cost", "QALY"],
		"settings": {"discount": {"rates": [3, 1.5], "start_cycle": 1, "cycles_per_year": 12}},
		"variables": [{"name": "visits", "value": 0}],
		"chain": {
			"updates_t0": ["visits = 1"],
			"updates": ["visits = visits + 1"],
			"terminal_cost": [250, 0],
			"states": [{
				"name": "Well",
				"prob": 1,
				"reward": [10, 1],
				"children": [{
					"name": "event",
					"prob": 0.2,
					"cost": [100, 0],
					"updates": ["visits = visits + 2"],
					"children": [
						{"to": "Well", "prob": 0.5},
						{"to": "Well", "prob": "c"}
					]
				}, {"name": "none", "prob": "C", "to": "Well"}]
			}]
		}
	}`
	m, err := loader.Parse([]byte(doc), loader.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "Markov", m.Chain.Name, "chain name defaults")
	assert.True(t, m.Settings.DiscountRewards)
	assert.Equal(t, []float64{3, 1.5}, m.Settings.DiscountRates)
	assert.Equal(t, 12.0, m.Settings.CyclesPerYear)
	assert.Equal(t, []domain.Update{{Variable: "visits", Expr: "1"}}, m.Chain.UpdatesT0)
	assert.Equal(t, []domain.Update{{Variable: "visits", Expr: "visits + 1"}}, m.Chain.Updates)
	assert.Equal(t, []string{"250", "0"}, m.Chain.Costs)

	event := m.Chain.Children[0].Children[0]
	assert.Equal(t, domain.NodeTypeChance, event.Type)
	assert.Equal(t, []string{"100", "0"}, event.Costs)
	assert.Equal(t, "to Well", event.Children[0].Name)
	assert.Equal(t, domain.NodeTypeTransition, m.Chain.Children[0].Children[1].Type)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "name: [", "parse model yaml"},
		{"empty", "", "empty model document"},
		{"unknown key", "name: x\nbogus: 1\n", "bogus"},
		{"bad update", "chain:\n  updates: ['x == 1']\n", "invalid update rule"},
		{"target on state", "chain:\n  states:\n    - {name: A, to: B}\n", "cannot have a target"},
		{"bad dist param", "parameters:\n  - {name: p, dist: {type: normal, mu: abc}}\n", `distribution parameter "mu"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tt.doc), loader.FormatYAML)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, loader.FormatJSON, loader.FormatFor("model.JSON"))
	assert.Equal(t, loader.FormatYAML, loader.FormatFor("model.yml"))
}
