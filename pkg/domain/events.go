package domain

import (
	"context"
	"time"
)

// RunEvent describes the start or end of a run.
type RunEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id"`
	Chain     string        `json:"chain"`
	Cycles    int           `json:"cycles,omitempty"`
	Reason    StopReason    `json:"reason,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// CycleEvent is emitted after a cycle has been committed to the trace.
type CycleEvent struct {
	RunID  string       `json:"run_id"`
	Chain  string       `json:"chain"`
	Record *CycleRecord `json:"record"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run on the goroutine that owns the run and must not retain Record slices.
type LifecycleHooks struct {
	OnRunStart func(context.Context, *RunEvent)
	OnCycle    func(context.Context, *CycleEvent)
	OnRunEnd   func(context.Context, *RunEvent)
	OnRunError func(context.Context, *RunEvent)
}
