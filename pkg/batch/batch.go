package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/cohort/internal/logging"
	"github.com/aretw0/cohort/pkg/dist"
	"github.com/aretw0/cohort/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Run identifies one simulation of a batch.
type Run struct {
	ID         string             `json:"id"`
	Iteration  int                `json:"iteration"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Seed       int64              `json:"seed,omitempty"`
	Seeded     bool               `json:"seeded"`
}

// SimulateFunc performs one run.
type SimulateFunc func(ctx context.Context, run Run) (*domain.RunResult, error)

// Outcome is the result of one run: exactly one of Result and Err is set.
type Outcome struct {
	Run    Run               `json:"run"`
	Result *domain.RunResult `json:"result,omitempty"`
	Err    error             `json:"-"`
}

// Orchestrator executes batches for one set of model parameters.
type Orchestrator struct {
	cfg    Config
	params []domain.Parameter
	dists  []dist.Distribution // nil entries keep the parameter's base value
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New validates cfg and prepares the parameter distributions.
func New(cfg Config, params []domain.Parameter, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		cfg:    cfg,
		params: params,
		dists:  make([]dist.Distribution, len(params)),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if cfg.Operation == OperationPSA {
		for i, p := range params {
			if p.Dist == nil {
				continue
			}
			d, err := dist.FromSpec(p.Dist)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
			}
			o.dists[i] = d
		}
	}
	return o, nil
}

// Config returns the validated configuration.
func (o *Orchestrator) Config() Config { return o.cfg }

// Execute performs every run of the batch with at most cfg.Workers in flight.
// Run IDs are prefix-<iteration>. Failed runs are reported in their Outcome;
// the returned error is non-nil only if ctx ends before all runs complete.
func (o *Orchestrator) Execute(ctx context.Context, prefix string, simulate SimulateFunc) (*Report, error) {
	start := time.Now()
	n := o.cfg.Iterations
	outcomes := make([]Outcome, n)

	paramRNG := newRNG(o.cfg.SeedParamRNG, o.cfg.ParamSeed)
	var presampled []map[string]float64
	if o.cfg.SampleParamSets {
		presampled = make([]map[string]float64, n)
		for i := range presampled {
			presampled[i] = o.sample(paramRNG)
		}
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)

	for i := 0; i < n; i++ {
		run := Run{ID: fmt.Sprintf("%s-%d", prefix, i), Iteration: i}
		if presampled != nil {
			run.Parameters = presampled[i]
		} else {
			run.Parameters = o.sample(paramRNG)
		}
		if o.cfg.SeedIterationRNG {
			run.Seed, run.Seeded = o.cfg.IterationSeed+int64(i), true
		}
		outcomes[i].Run = run

		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[run.Iteration].Err = err
				return nil
			}
			res, err := simulate(ctx, run)
			if err != nil {
				o.logger.Warn("batch run failed", "run_id", run.ID, "err", err)
				outcomes[run.Iteration].Err = err
				return nil
			}
			outcomes[run.Iteration].Result = res
			return nil
		})
	}
	_ = g.Wait()

	report := newReport(o.cfg, outcomes, presampled)
	report.Duration = time.Since(start)
	o.logger.Info("batch finished",
		"operation", o.cfg.Operation,
		"runs", n,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// sample draws one parameter set. Parameters without a distribution are
// omitted so their base formula applies. Outside PSA nothing is drawn.
func (o *Orchestrator) sample(r *rand.Rand) map[string]float64 {
	if o.cfg.Operation != OperationPSA {
		return nil
	}
	set := make(map[string]float64)
	for i, d := range o.dists {
		if d != nil {
			set[o.params[i].Name] = d.Sample(r)
		}
	}
	return set
}

func newRNG(seeded bool, seed int64) *rand.Rand {
	if seeded {
		return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
