package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/cohort/internal/logging"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/ports"
)

// Simulator runs compiled programs. It holds only configuration and is safe
// for concurrent use: each call to Simulate owns a private thread context.
type Simulator struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	sink     ports.TraceSink
	errorLog ports.ErrorLog
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulator) {
		s.hooks = hooks
	}
}

// WithTraceSink forwards every recorded cycle to sink.
func WithTraceSink(sink ports.TraceSink) Option {
	return func(s *Simulator) {
		s.sink = sink
	}
}

// WithErrorLog sets where non-fatal termination failures are reported.
// Defaults to a logger-backed implementation.
func WithErrorLog(log ports.ErrorLog) Option {
	return func(s *Simulator) {
		s.errorLog = log
	}
}

// NewSimulator creates a simulator.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorLog == nil {
		s.errorLog = logging.NewErrorLog(s.logger)
	}
	return s
}

// RunOptions are the per-run inputs.
type RunOptions struct {
	RunID string
	// Parameters overrides parameter base values by name.
	Parameters map[string]float64
	// Seed seeds the run's private RNG when Seeded is set.
	Seed   int64
	Seeded bool
}

// Simulate runs one cohort simulation of prog. Cancellation of ctx is observed
// between cycles; a cycle that has started always completes.
func (s *Simulator) Simulate(ctx context.Context, prog *Program, run RunOptions) (*domain.RunResult, error) {
	start := time.Now()
	s.emitStart(ctx, run.RunID, prog.chain.name, start)

	tc, err := newThreadContext(prog, run)
	if err != nil {
		s.fail(ctx, run.RunID, prog.chain.name, 0, start, err)
		return nil, err
	}

	res, err := s.simulate(ctx, tc, run)
	if err != nil {
		s.fail(ctx, run.RunID, tc.chain, tc.trace.Len(), start, err)
		return nil, err
	}

	res.StartedAt = start
	res.Duration = time.Since(start)
	if s.hooks.OnRunEnd != nil {
		s.hooks.OnRunEnd(ctx, &domain.RunEvent{
			Timestamp: time.Now(),
			RunID:     run.RunID,
			Chain:     tc.chain,
			Cycles:    res.Cycles,
			Reason:    res.StopReason,
			Duration:  res.Duration,
		})
	}
	s.logger.Debug("simulation finished", "run_id", run.RunID, "chain", tc.chain, "cycles", res.Cycles, "reason", res.StopReason)
	return res, nil
}

func (s *Simulator) emitStart(ctx context.Context, runID, chain string, at time.Time) {
	s.logger.Debug("simulation started", "run_id", runID, "chain", chain)
	if s.hooks.OnRunStart != nil {
		s.hooks.OnRunStart(ctx, &domain.RunEvent{Timestamp: at, RunID: runID, Chain: chain})
	}
}

// fail reports a fatal run error to the logger, the error log and the
// OnRunError hook.
func (s *Simulator) fail(ctx context.Context, runID, chain string, cycles int, start time.Time, err error) {
	s.logger.Debug("simulation failed", "run_id", runID, "chain", chain, "cycles", cycles, "err", err)
	s.errorLog.Record(ctx, runID, err)
	if s.hooks.OnRunError != nil {
		s.hooks.OnRunError(ctx, &domain.RunEvent{
			Timestamp: time.Now(),
			RunID:     runID,
			Chain:     chain,
			Cycles:    cycles,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
}

func (s *Simulator) simulate(ctx context.Context, tc *threadContext, run RunOptions) (*domain.RunResult, error) {
	prog := tc.prog
	settings := prog.settings

	if err := tc.initVariables(); err != nil {
		return nil, err
	}
	if err := tc.applyUpdates(tc.chain, prog.updatesT0); err != nil {
		return nil, err
	}

	initial, err := tc.resolveProbabilities(prog.chain)
	if err != nil {
		return nil, err
	}
	for i, p := range initial {
		tc.cur[i] = settings.CohortSize * p
		tc.next[i] = tc.cur[i]
	}

	res := &domain.RunResult{
		RunID:      run.RunID,
		Chain:      tc.chain,
		Dimensions: append([]string(nil), prog.model.Dimensions...),
		Parameters: tc.params,
		StopReason: domain.StopMaxCycles,
	}
	if run.Seeded {
		res.Seed = run.Seed
	}

	terminate := false
	for tc.step = 0; !terminate && tc.step < settings.MaxCycles; tc.step++ {
		if tc.step > 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("cycle %d: %w", tc.step, err)
			}
			if err := tc.refreshCycleDependents(); err != nil {
				return nil, err
			}
			if err := tc.applyUpdates(tc.chain, prog.updates); err != nil {
				return nil, err
			}
		}

		for _, st := range prog.states {
			if err := tc.accrueRewards(st); err != nil {
				return nil, err
			}
			if err := tc.traverse(st, tc.cur[st.state]); err != nil {
				return nil, err
			}
		}

		rec, err := tc.recordCycle()
		if err != nil {
			return nil, err
		}
		if s.sink != nil {
			if err := s.sink.Append(ctx, run.RunID, rec); err != nil {
				return nil, fmt.Errorf("trace sink: %w", err)
			}
		}
		if s.hooks.OnCycle != nil {
			s.hooks.OnCycle(ctx, &domain.CycleEvent{RunID: run.RunID, Chain: tc.chain, Record: &rec})
		}

		terminate = s.checkTermination(ctx, tc, res)
		if terminate {
			res.StopReason = domain.StopCondition
			if settings.HalfCycleCorrection {
				adj, err := tc.trace.ApplyHalfCycle()
				if err != nil {
					return nil, err
				}
				copy(tc.cumRewards, adj.CumRewards)
				copy(tc.cumRewardsDis, adj.CumRewardsDis)
			}
		}
		tc.setCycle(tc.step + 1)
	}

	res.Cycles = tc.trace.Len()
	res.ExpectedValues = append([]float64(nil), tc.cumRewards...)
	res.ExpectedValuesDis = append([]float64(nil), tc.cumRewardsDis...)
	for d, cf := range prog.terminalCosts {
		if cf == nil {
			continue
		}
		cost, err := tc.evalFloat(tc.chain, cf)
		if err != nil {
			return nil, err
		}
		res.ExpectedValues[d] += cost * settings.CohortSize
		res.ExpectedValuesDis[d] += cost * settings.CohortSize
	}
	res.FinalPrevalence = append([]float64(nil), tc.cur...)
	res.Trace = tc.trace
	tc.setCycle(0)
	return res, nil
}

// checkTermination evaluates the chain's termination condition. A failing
// evaluation is reported, resets the cycle variable to zero and counts as false.
// The loop advances the cycle variable from its own step counter, so the reset
// never outlives the failing cycle.
func (s *Simulator) checkTermination(ctx context.Context, tc *threadContext, res *domain.RunResult) bool {
	cf := tc.prog.termination
	if cf == nil {
		return false
	}
	v, err := tc.eval(tc.chain, cf, false)
	if err == nil {
		var done bool
		if done, err = v.Bool(); err == nil {
			return done
		}
		err = tc.evalError(tc.chain, cf, err)
	}
	s.errorLog.Record(ctx, res.RunID, err)
	res.TerminationErrors = append(res.TerminationErrors, err.Error())
	tc.setCycle(0)
	return false
}
