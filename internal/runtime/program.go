package runtime

import (
	"fmt"

	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
)

// Program is a model compiled for simulation: states indexed, transitions
// resolved, formulas compiled and the variable dependency graph ordered.
// It is immutable after Compile and shared by every concurrent run.
type Program struct {
	model    *domain.Model
	settings domain.Settings

	chain      *cnode
	states     []*cnode
	stateNames []string
	numNodes   int

	termination   *cformula
	terminalCosts []*cformula
	updatesT0     []cupdate
	updates       []cupdate

	params     []cparam
	vars       []cvar
	varIndex   map[string]int
	evalOrder  []int   // all variables, dependencies first
	dependents [][]int // per variable: transitive dependents in evalOrder
	cycleDeps  []int   // transitive dependents of the cycle variable in evalOrder
}

type cformula struct {
	f     ports.Formula
	reads []int // model variables read by the formula
}

type cupdate struct {
	variable int
	formula  *cformula
}

type cvar struct {
	name    string
	formula *cformula
	readsT  bool
}

type cparam struct {
	name    string
	formula *cformula
	dist    *domain.DistSpec
}

type cnode struct {
	id       int
	name     string
	kind     domain.NodeType
	prob     *cformula // nil for complementary nodes and the chain root
	costs    []*cformula
	rewards  []*cformula
	updates  []cupdate
	children []*cnode
	state    int // state index, -1 for non-states
	from, to int // resolved transition indices, -1 when not applicable
}

// Model returns the source model.
func (p *Program) Model() *domain.Model { return p.model }

// Settings returns the effective settings, defaults applied.
func (p *Program) Settings() domain.Settings { return p.settings }

// States returns the state names in index order.
func (p *Program) States() []string { return append([]string(nil), p.stateNames...) }

// Variables returns the model variable names in declaration order.
func (p *Program) Variables() []string {
	names := make([]string, len(p.vars))
	for i, v := range p.vars {
		names[i] = v.name
	}
	return names
}

// Transition describes one resolved transition node.
type Transition struct {
	Node string
	From int
	To   int
}

// Transitions lists every resolved transition in tree order.
func (p *Program) Transitions() []Transition {
	var out []Transition
	var walk func(n *cnode)
	walk = func(n *cnode) {
		if n.kind == domain.NodeTypeTransition {
			out = append(out, Transition{Node: n.name, From: n.from, To: n.to})
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(p.chain)
	return out
}

// Compile validates the model tree, resolves states and transitions and
// compiles every formula with ev. Any problem is reported as a
// *domain.StructuralError (or a compile error wrapped with the node name).
func Compile(model *domain.Model, ev ports.Evaluator) (*Program, error) {
	if model == nil || model.Chain == nil {
		return nil, &domain.StructuralError{Reason: "model has no chain"}
	}
	c := &compiler{
		ev:    ev,
		chain: model.Chain.Name,
		prog: &Program{
			model:    model,
			settings: model.Settings.WithDefaults(len(model.Dimensions)),
			varIndex: make(map[string]int),
		},
		stateIndex: make(map[string]int),
		symbols:    make(map[string]string),
	}
	if err := c.compile(model); err != nil {
		return nil, err
	}
	return c.prog, nil
}

type compiler struct {
	ev         ports.Evaluator
	chain      string
	prog       *Program
	stateIndex map[string]int
	symbols    map[string]string // name -> kind, for duplicate detection
}

func (c *compiler) structural(node, format string, args ...any) error {
	return &domain.StructuralError{Chain: c.chain, Node: node, Reason: fmt.Sprintf(format, args...)}
}

func (c *compiler) compile(model *domain.Model) error {
	root := model.Chain
	if root.Type != domain.NodeTypeChain {
		return c.structural(root.Name, "root must be a chain node, got %q", root.Type)
	}
	if len(model.Dimensions) == 0 {
		return c.structural("", "model declares no reward dimensions")
	}
	if c.prog.settings.CohortSize < 0 {
		return c.structural("", "cohort size must not be negative")
	}

	if err := c.declare(domain.CycleVariable, "innate variable"); err != nil {
		return err
	}
	for _, p := range model.Parameters {
		if err := c.declare(p.Name, "parameter"); err != nil {
			return err
		}
	}
	for i, v := range model.Variables {
		if err := c.declare(v.Name, "variable"); err != nil {
			return err
		}
		c.prog.varIndex[v.Name] = i
	}

	// States first, so transitions anywhere in the tree can resolve their targets.
	for _, child := range root.Children {
		if child.Type != domain.NodeTypeState {
			return c.structural(child.Name, "direct children of a chain must be states, got %q", child.Type)
		}
		if _, dup := c.stateIndex[child.Name]; dup {
			return c.structural(child.Name, "duplicate state name")
		}
		c.stateIndex[child.Name] = len(c.prog.stateNames)
		c.prog.stateNames = append(c.prog.stateNames, child.Name)
	}
	if len(c.prog.stateNames) == 0 {
		return c.structural(root.Name, "chain has no states")
	}

	if err := c.compileParams(model.Parameters); err != nil {
		return err
	}
	if err := c.compileVariables(model.Variables); err != nil {
		return err
	}

	chain, err := c.compileNode(root, -1)
	if err != nil {
		return err
	}
	c.prog.chain = chain
	c.prog.states = chain.children

	if root.Termination != "" {
		if c.prog.termination, err = c.formula(root.Name, root.Termination); err != nil {
			return err
		}
	}
	if c.prog.terminalCosts, err = c.perDimension(root.Name, "cost", root.Costs); err != nil {
		return err
	}
	if c.prog.updatesT0, err = c.compileUpdates(root.Name, root.UpdatesT0); err != nil {
		return err
	}
	c.prog.updates = chain.updates
	chain.updates = nil
	chain.costs = nil
	return nil
}

func (c *compiler) declare(name, kind string) error {
	if name == "" {
		return c.structural("", "%s with an empty name", kind)
	}
	if prev, dup := c.symbols[name]; dup {
		return c.structural("", "%s %q collides with %s of the same name", kind, name, prev)
	}
	c.symbols[name] = kind
	return nil
}

func (c *compiler) formula(node, src string) (*cformula, error) {
	f, err := c.ev.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", c.chain, node, err)
	}
	cf := &cformula{f: f}
	for _, sym := range f.Symbols() {
		if i, ok := c.prog.varIndex[sym]; ok {
			cf.reads = append(cf.reads, i)
		}
	}
	return cf, nil
}

func (c *compiler) perDimension(node, what string, srcs []string) ([]*cformula, error) {
	if len(srcs) == 0 {
		return nil, nil
	}
	if len(srcs) != len(c.prog.model.Dimensions) {
		return nil, c.structural(node, "%d %s formulas for %d reward dimensions", len(srcs), what, len(c.prog.model.Dimensions))
	}
	out := make([]*cformula, len(srcs))
	for d, src := range srcs {
		if src == "" {
			continue
		}
		f, err := c.formula(node, src)
		if err != nil {
			return nil, err
		}
		out[d] = f
	}
	return out, nil
}

func (c *compiler) compileUpdates(node string, updates []domain.Update) ([]cupdate, error) {
	out := make([]cupdate, 0, len(updates))
	for _, u := range updates {
		idx, ok := c.prog.varIndex[u.Variable]
		if !ok {
			return nil, c.structural(node, "update of unknown variable %q", u.Variable)
		}
		f, err := c.formula(node, u.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, cupdate{variable: idx, formula: f})
	}
	return out, nil
}

func (c *compiler) compileParams(params []domain.Parameter) error {
	for _, p := range params {
		f, err := c.formula(p.Name, p.Expr)
		if err != nil {
			return err
		}
		c.prog.params = append(c.prog.params, cparam{name: p.Name, formula: f, dist: p.Dist})
	}
	return nil
}

func (c *compiler) compileNode(n *domain.Node, from int) (*cnode, error) {
	cn := &cnode{
		id:    c.prog.numNodes,
		name:  n.Name,
		kind:  n.Type,
		state: -1,
		from:  from,
		to:    -1,
	}
	c.prog.numNodes++

	switch n.Type {
	case domain.NodeTypeChain:
		cn.from = -1
	case domain.NodeTypeState:
		cn.state = c.stateIndex[n.Name]
		cn.from = cn.state
	case domain.NodeTypeChance, domain.NodeTypeDecision:
		if from < 0 {
			return nil, c.structural(n.Name, "%s node outside of a state", n.Type)
		}
	case domain.NodeTypeTransition:
		if from < 0 {
			return nil, c.structural(n.Name, "transition outside of a state")
		}
		if len(n.Children) > 0 {
			return nil, c.structural(n.Name, "transition nodes cannot have children")
		}
		to, ok := c.stateIndex[n.Transition]
		if !ok {
			return nil, c.structural(n.Name, "transition target %q is not a state of this chain", n.Transition)
		}
		cn.to = to
	default:
		return nil, c.structural(n.Name, "unknown node type %q", n.Type)
	}

	if n.Type != domain.NodeTypeChain && !domain.IsComplementary(n.Prob) {
		if n.Prob == "" {
			return nil, c.structural(n.Name, "missing probability")
		}
		f, err := c.formula(n.Name, n.Prob)
		if err != nil {
			return nil, err
		}
		cn.prob = f
	}

	var err error
	if cn.costs, err = c.perDimension(n.Name, "cost", n.Costs); err != nil {
		return nil, err
	}
	if n.Type == domain.NodeTypeState {
		if cn.rewards, err = c.perDimension(n.Name, "reward", n.Rewards); err != nil {
			return nil, err
		}
	}
	if cn.updates, err = c.compileUpdates(n.Name, n.Updates); err != nil {
		return nil, err
	}

	complementary := 0
	for _, child := range n.Children {
		if n.Type != domain.NodeTypeChain && child.Type == domain.NodeTypeState {
			return nil, c.structural(child.Name, "states must be direct children of the chain")
		}
		if domain.IsComplementary(child.Prob) {
			complementary++
		}
		cc, err := c.compileNode(child, cn.from)
		if err != nil {
			return nil, err
		}
		cn.children = append(cn.children, cc)
	}
	if complementary > 1 {
		return nil, c.structural(n.Name, "%d complementary children, at most one allowed", complementary)
	}
	return cn, nil
}
