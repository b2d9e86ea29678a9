package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cohort/internal/presentation/graph"
	"github.com/aretw0/cohort/pkg/domain"
)

func model() *domain.Model {
	return &domain.Model{
		Name:       "m",
		Dimensions: []string{"LY"},
		Chain: &domain.Node{
			Name: "Markov",
			Type: domain.NodeTypeChain,
			Children: []*domain.Node{
				{Name: "Healthy", Type: domain.NodeTypeState, Prob: "1", Children: []*domain.Node{
					{Name: "event", Type: domain.NodeTypeChance, Prob: "p \"x\"", Children: []*domain.Node{
						{Name: "die", Type: domain.NodeTypeTransition, Prob: "1", Transition: "Dead"},
					}},
					{Name: "stay", Type: domain.NodeTypeTransition, Prob: "C", Transition: "Healthy"},
				}},
				{Name: "Dead", Type: domain.NodeTypeState, Prob: "0", Children: []*domain.Node{
					{Name: "remain", Type: domain.NodeTypeTransition, Prob: "1", Transition: "Dead"},
				}},
			},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(model(), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{"Header", []string{"graph TD\n"}},
		{"Shapes", []string{
			`n0(("Markov"))`,
			`n1(["Healthy"])`,
			`n2("event")`,
			`n3>"die"]`,
			`n5(["Dead"])`,
		}},
		{"Chain edges carry no probability", []string{"n0 --> n1", "n0 --> n5"}},
		{"Branch probabilities", []string{
			`n1 -- "p 'x'" --> n2`,
			`n1 -- "#" --> n4`,
			`n2 -- "1" --> n3`,
		}},
		{"Transition targets", []string{"n3 -.-> n5", "n4 -.-> n1", "n6 -.-> n5"}},
		{"State class", []string{"class n1 state;", "class n5 state;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(model(), &graph.Overlay{Prevalence: []float64{590.49, 409.51}})
	assert.Contains(t, out, `n1(["Healthy <br/> 590.5"])`)
	assert.Contains(t, out, `n5(["Dead <br/> 409.5"])`)
}

func TestGenerateMermaid_Empty(t *testing.T) {
	assert.Equal(t, "graph TD\n", graph.GenerateMermaid(nil, nil))
	assert.True(t, strings.HasPrefix(graph.GenerateMermaid(&domain.Model{}, nil), "graph TD"))
}
