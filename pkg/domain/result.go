package domain

import "time"

// StopReason explains why a run left the cycle loop.
type StopReason string

const (
	StopCondition StopReason = "condition"  // termination formula evaluated true
	StopMaxCycles StopReason = "max_cycles" // cycle cap reached (not an error)
)

// RunResult is everything one simulation run hands back to its caller.
// It is owned by the caller; nothing derived from a run is kept on the model.
type RunResult struct {
	RunID      string   `json:"run_id"`
	Chain      string   `json:"chain"`
	Dimensions []string `json:"dimensions"`

	// ExpectedValues are the final cumulative rewards per dimension, including the
	// chain's terminal cost. ExpectedValuesDis are the discounted counterparts.
	ExpectedValues    []float64 `json:"expected_values"`
	ExpectedValuesDis []float64 `json:"expected_values_dis"`

	Cycles          int        `json:"cycles"`
	StopReason      StopReason `json:"stop_reason"`
	FinalPrevalence []float64  `json:"final_prevalence"`

	// TerminationErrors lists failed evaluations of the termination condition.
	// They do not abort the run; the condition counts as false for that cycle.
	TerminationErrors []string `json:"termination_errors,omitempty"`

	Parameters map[string]float64 `json:"parameters,omitempty"`
	Seed       int64              `json:"seed,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Trace *Trace `json:"trace,omitempty"`
}

// Summary returns a copy of the result without its trace.
func (r *RunResult) Summary() *RunResult {
	c := *r
	c.Trace = nil
	return &c
}
