package runtime

import (
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/cohort/pkg/domain"
)

// compileVariables compiles variable definitions and orders them so that every
// variable is evaluated after the variables its formula reads.
func (c *compiler) compileVariables(vars []domain.Variable) error {
	n := len(vars)
	c.prog.vars = make([]cvar, n)
	for i, v := range vars {
		f, err := c.formula(v.Name, v.Expr)
		if err != nil {
			return err
		}
		c.prog.vars[i] = cvar{
			name:    v.Name,
			formula: f,
			readsT:  slices.Contains(f.f.Symbols(), domain.CycleVariable),
		}
	}

	users := make([][]int, n) // users[j]: variables whose formula reads j
	indeg := make([]int, n)
	for i, v := range c.prog.vars {
		for _, j := range v.formula.reads {
			if j == i {
				return c.structural(v.name, "variable %q is defined in terms of itself", v.name)
			}
			users[j] = append(users[j], i)
			indeg[i]++
		}
	}

	// Kahn's algorithm, breaking ties by declaration order.
	done := make([]bool, n)
	order := make([]int, 0, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && indeg[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var cyclic []string
			for i := 0; i < n; i++ {
				if !done[i] {
					cyclic = append(cyclic, c.prog.vars[i].name)
				}
			}
			return c.structural("", "cyclic variable definitions: %s", strings.Join(cyclic, ", "))
		}
		done[next] = true
		order = append(order, next)
		for _, u := range users[next] {
			indeg[u]--
		}
	}
	c.prog.evalOrder = order

	position := make([]int, n)
	for p, i := range order {
		position[i] = p
	}
	byPosition := func(set map[int]struct{}) []int {
		out := make([]int, 0, len(set))
		for i := range set {
			out = append(out, i)
		}
		sort.Slice(out, func(a, b int) bool { return position[out[a]] < position[out[b]] })
		return out
	}

	c.prog.dependents = make([][]int, n)
	for x := 0; x < n; x++ {
		c.prog.dependents[x] = byPosition(reachable(users, users[x]))
	}

	cycle := make(map[int]struct{})
	for i, v := range c.prog.vars {
		if !v.readsT {
			continue
		}
		cycle[i] = struct{}{}
		for _, d := range c.prog.dependents[i] {
			cycle[d] = struct{}{}
		}
	}
	c.prog.cycleDeps = byPosition(cycle)
	return nil
}

// reachable returns every node reachable from start through edges.
func reachable(edges [][]int, start []int) map[int]struct{} {
	seen := make(map[int]struct{})
	stack := append([]int(nil), start...)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		stack = append(stack, edges[i]...)
	}
	return seen
}
