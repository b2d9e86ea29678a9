package runtime

import (
	"math"

	"github.com/aretw0/cohort/pkg/domain"
)

// accrueRewards adds a state's per-dimension reward, scaled by the state's
// current prevalence, to the cycle accumulator.
func (tc *threadContext) accrueRewards(st *cnode) error {
	prev := tc.cur[st.state]
	for d, cf := range st.rewards {
		if cf == nil {
			continue
		}
		r, err := tc.evalFloat(st.name, cf)
		if err != nil {
			return err
		}
		tc.cycleRewards[d] += r * prev
	}
	return nil
}

// traverse propagates prevalence mass from n down to its transition leaves.
// State nodes keep the mass they receive; every other node scales it by its
// probability, resolved by the parent for this cycle.
func (tc *threadContext) traverse(n *cnode, nodePrev float64) error {
	for d, cf := range n.costs {
		if cf == nil {
			continue
		}
		c, err := tc.evalFloat(n.name, cf)
		if err != nil {
			return err
		}
		tc.cycleRewards[d] += c * nodePrev
	}
	if err := tc.applyUpdates(n.name, n.updates); err != nil {
		return err
	}

	if n.kind == domain.NodeTypeTransition {
		tc.next[n.from] -= nodePrev
		tc.next[n.to] += nodePrev
		return nil
	}
	if len(n.children) == 0 {
		return nil
	}

	probs, err := tc.resolveProbabilities(n)
	if err != nil {
		return err
	}
	for i, child := range n.children {
		if err := tc.traverse(child, nodePrev*probs[i]); err != nil {
			return err
		}
	}
	return nil
}

// resolveProbabilities evaluates the probabilities of n's children into the
// context's scratch slot for n. A complementary child receives 1 minus the sum
// of its siblings. Without one the explicit sum must be 1 within tolerance;
// with one it must lie in [0, 1].
func (tc *threadContext) resolveProbabilities(n *cnode) ([]float64, error) {
	probs := tc.probs[n.id]
	if probs == nil {
		probs = make([]float64, len(n.children))
		tc.probs[n.id] = probs
	}

	sum := 0.0
	comp := -1
	for i, child := range n.children {
		if child.prob == nil {
			comp = i
			continue
		}
		p, err := tc.evalFloat(child.name, child.prob)
		if err != nil {
			return nil, err
		}
		probs[i] = p
		sum += p
	}

	if comp >= 0 {
		if sum < 0 || sum > 1 {
			return nil, &domain.ProbabilityError{Chain: tc.chain, Node: n.name, Sum: sum}
		}
		probs[comp] = 1 - sum
	} else if math.Abs(sum-1) > domain.ProbabilityTolerance {
		return nil, &domain.ProbabilityError{Chain: tc.chain, Node: n.name, Sum: sum}
	}
	return probs, nil
}
