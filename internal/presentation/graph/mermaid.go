package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cohort/pkg/domain"
)

// Overlay contains run data to visualize on the graph.
type Overlay struct {
	// Prevalence is the final cohort per state, in chain order.
	Prevalence []float64
}

// GenerateMermaid produces a Mermaid flowchart of a model tree.
// It applies semantic styling:
// - Chain: ((Circle))
// - State: ([Stadium])
// - Decision: {Rhombus}
// - Chance: (Rounded)
// - Transition: >Flag]
// Tree edges carry the branch probability; a dotted edge joins each transition
// to its target state. Overlay prevalence, if given, is appended to state labels.
func GenerateMermaid(model *domain.Model, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if model == nil || model.Chain == nil {
		return sb.String()
	}

	ids := make(map[*domain.Node]string)
	stateIDs := make(map[string]string)
	seq := 0
	model.Chain.Walk(func(n *domain.Node, depth int) bool {
		ids[n] = fmt.Sprintf("n%d", seq)
		seq++
		if depth == 1 && n.Type == domain.NodeTypeState {
			stateIDs[n.Name] = ids[n]
		}
		return true
	})

	stateIndex := 0
	var jumps []string
	model.Chain.Walk(func(n *domain.Node, depth int) bool {
		id := ids[n]
		label := escape(n.Name)
		if n.Type == domain.NodeTypeState && depth == 1 {
			if overlay != nil && stateIndex < len(overlay.Prevalence) {
				label = fmt.Sprintf("%s <br/> %.4g", label, overlay.Prevalence[stateIndex])
			}
			stateIndex++
		}

		opener, closer := "[", "]"
		switch n.Type {
		case domain.NodeTypeChain:
			opener, closer = "((", "))"
		case domain.NodeTypeState:
			opener, closer = "([", "])"
		case domain.NodeTypeDecision:
			opener, closer = "{", "}"
		case domain.NodeTypeChance:
			opener, closer = "(", ")"
		case domain.NodeTypeTransition:
			opener, closer = ">", "]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)

		for _, c := range n.Children {
			if prob := probLabel(c); prob != "" && n.Type != domain.NodeTypeChain {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, prob, ids[c])
			} else {
				fmt.Fprintf(&sb, "    %s --> %s\n", id, ids[c])
			}
		}

		if n.Type == domain.NodeTypeTransition {
			if target, ok := stateIDs[n.Transition]; ok {
				jumps = append(jumps, fmt.Sprintf("    %s -.-> %s\n", id, target))
			}
		}
		return true
	})

	for _, j := range jumps {
		sb.WriteString(j)
	}

	sb.WriteString("\n    %% Node Styles\n")
	sb.WriteString("    classDef state fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	for _, name := range stateNames(model.Chain) {
		fmt.Fprintf(&sb, "    class %s state;\n", stateIDs[name])
	}
	return sb.String()
}

func probLabel(n *domain.Node) string {
	if domain.IsComplementary(n.Prob) {
		return "#"
	}
	return escape(n.Prob)
}

// stateNames returns state names in chain order.
func stateNames(chain *domain.Node) []string {
	var names []string
	for _, c := range chain.Children {
		if c.Type == domain.NodeTypeState {
			names = append(names, c.Name)
		}
	}
	return names
}

// escape keeps labels from breaking Mermaid quoting.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
