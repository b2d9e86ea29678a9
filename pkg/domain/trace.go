package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// CycleRecord is the snapshot of one cycle appended to a Trace.
// Prevalence is the state prevalence at the beginning of the cycle.
type CycleRecord struct {
	Cycle           int       `json:"cycle"`
	Prevalence      []float64 `json:"prevalence"`
	CycleRewards    []float64 `json:"cycle_rewards"`
	CumRewards      []float64 `json:"cum_rewards"`
	CycleRewardsDis []float64 `json:"cycle_rewards_dis"`
	CumRewardsDis   []float64 `json:"cum_rewards_dis"`
	Variables       Series    `json:"variables,omitempty"`
}

// HalfCycleAdjustment holds the cumulative totals at the terminal cycle after
// the half-cycle correction has been applied to it.
type HalfCycleAdjustment struct {
	Cycle         int       `json:"cycle"`
	CumRewards    []float64 `json:"cum_rewards"`
	CumRewardsDis []float64 `json:"cum_rewards_dis"`
}

// Trace is an append-only, cycle-indexed log of one run.
// Series are indexed [state|dimension|variable][cycle].
type Trace struct {
	States     []string `json:"states"`
	Dimensions []string `json:"dimensions"`
	Variables  []string `json:"variables,omitempty"`

	Cycles          []int       `json:"cycles"`
	Prevalence      [][]float64 `json:"prevalence"`
	CycleRewards    [][]float64 `json:"cycle_rewards"`
	CumRewards      [][]float64 `json:"cum_rewards"`
	CycleRewardsDis [][]float64 `json:"cycle_rewards_dis"`
	CumRewardsDis   [][]float64 `json:"cum_rewards_dis"`
	Values          []Series    `json:"values,omitempty"`

	HalfCycle *HalfCycleAdjustment `json:"half_cycle,omitempty"`
}

// NewTrace creates an empty trace for the given series names.
func NewTrace(states, dimensions, variables []string) *Trace {
	nd := len(dimensions)
	return &Trace{
		States:          append([]string(nil), states...),
		Dimensions:      append([]string(nil), dimensions...),
		Variables:       append([]string(nil), variables...),
		Prevalence:      make([][]float64, len(states)),
		CycleRewards:    make([][]float64, nd),
		CumRewards:      make([][]float64, nd),
		CycleRewardsDis: make([][]float64, nd),
		CumRewardsDis:   make([][]float64, nd),
		Values:          make([]Series, len(variables)),
	}
}

// Len returns the number of recorded cycles.
func (t *Trace) Len() int { return len(t.Cycles) }

// Append adds one cycle. Records must arrive in strictly increasing cycle order
// and match the trace's series shape.
func (t *Trace) Append(rec CycleRecord) error {
	if n := len(t.Cycles); n > 0 && rec.Cycle <= t.Cycles[n-1] {
		return fmt.Errorf("trace: cycle %d appended after cycle %d", rec.Cycle, t.Cycles[n-1])
	}
	if len(rec.Prevalence) != len(t.States) ||
		len(rec.CycleRewards) != len(t.Dimensions) ||
		len(rec.Variables) != len(t.Variables) {
		return fmt.Errorf("trace: record shape does not match trace at cycle %d", rec.Cycle)
	}
	t.Cycles = append(t.Cycles, rec.Cycle)
	for s, v := range rec.Prevalence {
		t.Prevalence[s] = append(t.Prevalence[s], v)
	}
	for d := range t.Dimensions {
		t.CycleRewards[d] = append(t.CycleRewards[d], rec.CycleRewards[d])
		t.CumRewards[d] = append(t.CumRewards[d], rec.CumRewards[d])
		t.CycleRewardsDis[d] = append(t.CycleRewardsDis[d], rec.CycleRewardsDis[d])
		t.CumRewardsDis[d] = append(t.CumRewardsDis[d], rec.CumRewardsDis[d])
	}
	for v, val := range rec.Variables {
		t.Values[v] = append(t.Values[v], val)
	}
	return nil
}

// Record rebuilds the snapshot stored at position i.
func (t *Trace) Record(i int) CycleRecord {
	rec := CycleRecord{
		Cycle:           t.Cycles[i],
		Prevalence:      make([]float64, len(t.States)),
		CycleRewards:    make([]float64, len(t.Dimensions)),
		CumRewards:      make([]float64, len(t.Dimensions)),
		CycleRewardsDis: make([]float64, len(t.Dimensions)),
		CumRewardsDis:   make([]float64, len(t.Dimensions)),
		Variables:       make([]float64, len(t.Variables)),
	}
	for s := range t.States {
		rec.Prevalence[s] = t.Prevalence[s][i]
	}
	for d := range t.Dimensions {
		rec.CycleRewards[d] = t.CycleRewards[d][i]
		rec.CumRewards[d] = t.CumRewards[d][i]
		rec.CycleRewardsDis[d] = t.CycleRewardsDis[d][i]
		rec.CumRewardsDis[d] = t.CumRewardsDis[d][i]
	}
	for v := range t.Variables {
		rec.Variables[v] = t.Values[v][i]
	}
	return rec
}

// ApplyHalfCycle computes the half-cycle corrected cumulative totals at the last
// recorded cycle: half of that cycle's reward is removed from the running totals.
// Recorded entries are left untouched; the adjustment is attached once and returned.
func (t *Trace) ApplyHalfCycle() (*HalfCycleAdjustment, error) {
	n := t.Len()
	if n == 0 {
		return nil, fmt.Errorf("trace: half-cycle correction on an empty trace")
	}
	if t.HalfCycle != nil {
		return nil, fmt.Errorf("trace: half-cycle correction already applied at cycle %d", t.HalfCycle.Cycle)
	}
	last := n - 1
	adj := &HalfCycleAdjustment{
		Cycle:         t.Cycles[last],
		CumRewards:    make([]float64, len(t.Dimensions)),
		CumRewardsDis: make([]float64, len(t.Dimensions)),
	}
	for d := range t.Dimensions {
		adj.CumRewards[d] = t.CumRewards[d][last] - 0.5*t.CycleRewards[d][last]
		adj.CumRewardsDis[d] = t.CumRewardsDis[d][last] - 0.5*t.CycleRewardsDis[d][last]
	}
	t.HalfCycle = adj
	return adj, nil
}

// Series is a numeric series whose non-finite entries (matrix-valued
// variables are traced as NaN) encode as JSON null.
type Series []float64

// MarshalJSON implements json.Marshaler.
func (s Series) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(s))
	for i := range s {
		if !math.IsNaN(s[i]) && !math.IsInf(s[i], 0) {
			out[i] = &s[i]
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Series) UnmarshalJSON(data []byte) error {
	var in []*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Series, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*s = out
	return nil
}
