package cohort

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/cohort/internal/logging"
	"github.com/aretw0/cohort/internal/runtime"
	"github.com/aretw0/cohort/pkg/adapters/expr"
	"github.com/aretw0/cohort/pkg/batch"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/loader"
	"github.com/aretw0/cohort/pkg/ports"
	"github.com/aretw0/cohort/pkg/runs"
)

// Engine is the high-level entry point for the cohort library.
// It holds one compiled model and runs any number of simulations against it,
// concurrently if needed.
type Engine struct {
	program   *runtime.Program
	simulator *runtime.Simulator
	evaluator ports.Evaluator
	hooks     domain.LifecycleHooks
	sink      ports.TraceSink
	errorLog  ports.ErrorLog
	runs      *runs.Manager
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEvaluator replaces the default expr-based formula evaluator.
func WithEvaluator(ev ports.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = ev
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTraceSink forwards every committed cycle record to sink.
func WithTraceSink(sink ports.TraceSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithErrorLog overrides where non-fatal run errors are reported.
func WithErrorLog(log ports.ErrorLog) Option {
	return func(e *Engine) {
		e.errorLog = log
	}
}

// WithRunManager persists every result through m and rejects concurrent
// simulations that share a run ID.
func WithRunManager(m *runs.Manager) Option {
	return func(e *Engine) {
		e.runs = m
	}
}

// New compiles model and returns an Engine ready to simulate it.
// Structural problems in the model are reported here, never during a run.
func New(model *domain.Model, opts ...Option) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	eng := &Engine{Name: model.Name}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("model", eng.Name)
	}
	if eng.evaluator == nil {
		eng.evaluator = expr.New()
	}

	prog, err := runtime.Compile(model, eng.evaluator)
	if err != nil {
		return nil, err
	}
	eng.program = prog

	simOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithHooks(eng.hooks),
	}
	if eng.sink != nil {
		simOpts = append(simOpts, runtime.WithTraceSink(eng.sink))
	}
	if eng.errorLog != nil {
		simOpts = append(simOpts, runtime.WithErrorLog(eng.errorLog))
	}
	eng.simulator = runtime.NewSimulator(simOpts...)
	return eng, nil
}

// Load reads a model document (YAML or JSON) from path and compiles it.
func Load(path string, opts ...Option) (*Engine, error) {
	model, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(model, opts...)
}

// RunOption configures a single simulation.
type RunOption func(*runtime.RunOptions)

// WithRunID names the run. Without it a random ID is generated.
func WithRunID(id string) RunOption {
	return func(o *runtime.RunOptions) {
		o.RunID = id
	}
}

// WithParameters overrides parameter base values by name.
func WithParameters(params map[string]float64) RunOption {
	return func(o *runtime.RunOptions) {
		o.Parameters = params
	}
}

// WithSeed makes formula calls to rand() reproducible.
func WithSeed(seed int64) RunOption {
	return func(o *runtime.RunOptions) {
		o.Seed, o.Seeded = seed, true
	}
}

// Simulate runs the model once and returns the result.
// When a run manager is configured the result is also persisted.
func (e *Engine) Simulate(ctx context.Context, opts ...RunOption) (*domain.RunResult, error) {
	var run runtime.RunOptions
	for _, opt := range opts {
		opt(&run)
	}
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	return e.simulate(ctx, run)
}

func (e *Engine) simulate(ctx context.Context, run runtime.RunOptions) (*domain.RunResult, error) {
	if e.runs == nil {
		return e.simulator.Simulate(ctx, e.program, run)
	}
	return e.runs.Execute(ctx, run.RunID, func(ctx context.Context) (*domain.RunResult, error) {
		return e.simulator.Simulate(ctx, e.program, run)
	})
}

// Batch executes cfg against the model: one run for OperationRun, or
// cfg.Iterations parameter draws for OperationPSA. Run IDs are prefix-<i>.
func (e *Engine) Batch(ctx context.Context, cfg batch.Config, prefix string) (*batch.Report, error) {
	if prefix == "" {
		prefix = uuid.NewString()
	}
	orch, err := batch.New(cfg, e.program.Model().Parameters, batch.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	return orch.Execute(ctx, prefix, func(ctx context.Context, r batch.Run) (*domain.RunResult, error) {
		return e.simulate(ctx, runtime.RunOptions{
			RunID:      r.ID,
			Parameters: r.Parameters,
			Seed:       r.Seed,
			Seeded:     r.Seeded,
		})
	})
}

// Model returns the model the engine was compiled from. It must not be modified.
func (e *Engine) Model() *domain.Model {
	return e.program.Model()
}

// States returns the chain's state names in registry order, which is also the
// order of every prevalence vector in results.
func (e *Engine) States() []string {
	return e.program.States()
}

// Variables returns the model's variable names in declaration order.
func (e *Engine) Variables() []string {
	return e.program.Variables()
}

// Transition is a resolved transition leaf.
type Transition = runtime.Transition

// Transitions returns every transition with its resolved source and target.
func (e *Engine) Transitions() []Transition {
	return e.program.Transitions()
}

// Runs returns the configured run manager, or nil.
func (e *Engine) Runs() *runs.Manager {
	return e.runs
}
