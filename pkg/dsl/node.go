package dsl

import (
	"fmt"

	"github.com/aretw0/cohort/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    *domain.Node
	builder *Builder
}

func (n *NodeBuilder) fail(format string, args ...any) *NodeBuilder {
	n.builder.errs = append(n.builder.errs, fmt.Errorf("%s: %s", n.node.Name, fmt.Sprintf(format, args...)))
	return n
}

func (n *NodeBuilder) child(name string, kind domain.NodeType) *NodeBuilder {
	c := &domain.Node{Name: name, Type: kind}
	n.node.Children = append(n.node.Children, c)
	return &NodeBuilder{node: c, builder: n.builder}
}

// State adds a Markov state. Only valid on the chain.
func (n *NodeBuilder) State(name string) *NodeBuilder {
	if n.node.Type != domain.NodeTypeChain {
		n.fail("states can only be added to the chain")
	}
	return n.child(name, domain.NodeTypeState)
}

// Chance adds a chance node.
func (n *NodeBuilder) Chance(name string) *NodeBuilder {
	return n.child(name, domain.NodeTypeChance)
}

// Decision adds a decision node.
func (n *NodeBuilder) Decision(name string) *NodeBuilder {
	return n.child(name, domain.NodeTypeDecision)
}

// Transition adds a transition leaf moving prevalence to target.
func (n *NodeBuilder) Transition(name, target string) *NodeBuilder {
	c := n.child(name, domain.NodeTypeTransition)
	c.node.Transition = target
	return c
}

// Prob sets the node's probability formula.
func (n *NodeBuilder) Prob(expr string) *NodeBuilder {
	n.node.Prob = expr
	return n
}

// Complement marks the node as taking the probability left by its siblings.
func (n *NodeBuilder) Complement() *NodeBuilder {
	n.node.Prob = "C"
	return n
}

// Cost sets per-dimension cost formulas. On the chain it is the terminal lump cost.
func (n *NodeBuilder) Cost(exprs ...string) *NodeBuilder {
	n.node.Costs = exprs
	return n
}

// Reward sets per-dimension state rewards.
func (n *NodeBuilder) Reward(exprs ...string) *NodeBuilder {
	if n.node.Type != domain.NodeTypeState {
		return n.fail("rewards can only be set on states")
	}
	n.node.Rewards = exprs
	return n
}

// Update appends a variable-update rule. On the chain it runs at every cycle after the first.
func (n *NodeBuilder) Update(variable, expr string) *NodeBuilder {
	n.node.Updates = append(n.node.Updates, domain.Update{Variable: variable, Expr: expr})
	return n
}

// UpdateAtStart appends a cycle-0 update rule. Only valid on the chain.
func (n *NodeBuilder) UpdateAtStart(variable, expr string) *NodeBuilder {
	if n.node.Type != domain.NodeTypeChain {
		return n.fail("start updates can only be set on the chain")
	}
	n.node.UpdatesT0 = append(n.node.UpdatesT0, domain.Update{Variable: variable, Expr: expr})
	return n
}

// Terminate sets the termination condition. Only valid on the chain.
func (n *NodeBuilder) Terminate(expr string) *NodeBuilder {
	if n.node.Type != domain.NodeTypeChain {
		return n.fail("termination can only be set on the chain")
	}
	n.node.Termination = expr
	return n
}
