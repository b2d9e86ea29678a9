package batch

import (
	"fmt"
	"os"
	"runtime"

	"github.com/aretw0/cohort/pkg/loader"
	"gopkg.in/yaml.v3"
)

// Operation selects what a batch does.
type Operation string

const (
	OperationRun Operation = "run"
	OperationPSA Operation = "psa"
)

// Config are the batch inputs.
type Config struct {
	Operation  Operation `json:"operation" yaml:"operation" mapstructure:"operation"`
	Iterations int       `json:"iterations" yaml:"iterations" mapstructure:"iterations"`
	Workers    int       `json:"workers" yaml:"workers" mapstructure:"workers"`

	// SeedIterationRNG seeds iteration i's formula RNG with IterationSeed+i.
	SeedIterationRNG bool  `json:"seed_iteration_rng" yaml:"seed_iteration_rng" mapstructure:"seed_iteration_rng"`
	IterationSeed    int64 `json:"iteration_seed" yaml:"iteration_seed" mapstructure:"iteration_seed"`

	// SeedParamRNG makes parameter draws reproducible.
	SeedParamRNG bool  `json:"seed_param_rng" yaml:"seed_param_rng" mapstructure:"seed_param_rng"`
	ParamSeed    int64 `json:"param_seed" yaml:"param_seed" mapstructure:"param_seed"`

	// SampleParamSets draws every parameter set before the first run starts
	// and reports them; otherwise sets are drawn as runs are dispatched.
	SampleParamSets bool `json:"sample_param_sets" yaml:"sample_param_sets" mapstructure:"sample_param_sets"`
}

// DefaultConfig returns a single-run configuration.
func DefaultConfig() Config {
	return Config{Operation: OperationRun, Iterations: 1}
}

// LoadConfig reads a YAML (or JSON) batch configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read batch config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse batch config: %w", err)
	}
	cfg := DefaultConfig()
	if err := loader.Decode(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode batch config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	switch c.Operation {
	case "":
		c.Operation = OperationRun
	case OperationRun, OperationPSA:
	default:
		return fmt.Errorf("unknown operation %q (want %q or %q)", c.Operation, OperationRun, OperationPSA)
	}
	if c.Operation == OperationRun {
		c.Iterations = 1
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return nil
}
