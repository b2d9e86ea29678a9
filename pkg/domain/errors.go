package domain

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID cannot be found in a result store.
var ErrRunNotFound = errors.New("run not found")

// ErrModelNotFound is returned when a model name is not registered.
var ErrModelNotFound = errors.New("model not found")

// ErrRunInProgress is returned when a run ID is already being simulated.
var ErrRunInProgress = errors.New("run already in progress")

// ErrUnknownParameter is returned when a run overrides a parameter the model does not declare.
var ErrUnknownParameter = errors.New("unknown parameter")

// StructuralError reports a malformed or unresolvable model tree.
// It is detected before any simulation starts.
type StructuralError struct {
	Chain  string
	Node   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("structural error (%s): %s", e.Chain, e.Reason)
	}
	return fmt.Sprintf("structural error (%s: %s): %s", e.Chain, e.Node, e.Reason)
}

// ProbabilityError reports sibling probabilities that do not form a distribution.
type ProbabilityError struct {
	Chain string
	Node  string
	Sum   float64
}

func (e *ProbabilityError) Error() string {
	if e.Node == "" || e.Node == e.Chain {
		return fmt.Sprintf("probabilities sum to %v (%s)", e.Sum, e.Chain)
	}
	return fmt.Sprintf("probabilities sum to %v (%s: %s)", e.Sum, e.Chain, e.Node)
}

// EvaluationError wraps a formula evaluation failure with its origin.
type EvaluationError struct {
	Chain   string
	Node    string
	Formula string
	Err     error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %q (%s: %s): %v", e.Formula, e.Chain, e.Node, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// VariableLockError signals a read of a variable whose defining update has not
// executed yet in the current cycle. It indicates an ordering bug in the model
// or the engine, not contention.
type VariableLockError struct {
	Variable string
}

func (e *VariableLockError) Error() string {
	return fmt.Sprintf("variable %q read before it was updated in this cycle", e.Variable)
}
