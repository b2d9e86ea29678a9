package domain

// NodeType tags the variant of a model tree node.
type NodeType string

const (
	// NodeTypeChain is the root of one Markov chain. Its direct children are the states.
	NodeTypeChain NodeType = "chain"
	// NodeTypeDecision is an internal node whose children are resolved like chance branches.
	NodeTypeDecision NodeType = "decision"
	// NodeTypeChance is an internal probabilistic branch.
	NodeTypeChance NodeType = "chance"
	// NodeTypeState is a Markov state; cohort mass resides here between cycles.
	NodeTypeState NodeType = "state"
	// NodeTypeTransition is a leaf that moves mass to the state named in Transition.
	NodeTypeTransition NodeType = "transition"
)

// Update is a variable-update rule: Variable is assigned the value of Expr.
type Update struct {
	Variable string `json:"variable" yaml:"variable"`
	Expr     string `json:"expr" yaml:"expr"`
}

// Node represents one element of the model tree.
// A parent exclusively owns its children; the tree is acyclic.
type Node struct {
	Name string   `json:"name" yaml:"name"`
	Type NodeType `json:"type" yaml:"type"`

	// Prob is a formula, or the complementary marker "C".
	// For states it is the initial probability; the chain root ignores it.
	Prob string `json:"prob,omitempty" yaml:"prob,omitempty"`

	// Costs holds one formula per reward dimension, accrued scaled by the node prevalence.
	// On the chain root they form the terminal lump cost.
	Costs []string `json:"costs,omitempty" yaml:"costs,omitempty"`

	// Rewards holds one formula per reward dimension, accrued every cycle scaled by the
	// state's current prevalence. Only meaningful on states.
	Rewards []string `json:"rewards,omitempty" yaml:"rewards,omitempty"`

	// Updates are applied in order whenever the node is traversed.
	// On the chain root they run at the start of every cycle after the first.
	Updates []Update `json:"updates,omitempty" yaml:"updates,omitempty"`

	// Transition names the target state (transition nodes only).
	Transition string `json:"transition,omitempty" yaml:"transition,omitempty"`

	// Termination is the chain's stop condition, evaluated after every cycle.
	Termination string `json:"termination,omitempty" yaml:"termination,omitempty"`

	// UpdatesT0 are the chain's variable updates for cycle 0.
	UpdatesT0 []Update `json:"updates_t0,omitempty" yaml:"updates_t0,omitempty"`

	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasCost reports whether the node declares at least one non-empty cost formula.
func (n *Node) HasCost() bool {
	for _, c := range n.Costs {
		if c != "" {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}
