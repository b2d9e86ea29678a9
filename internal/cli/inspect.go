package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/cohort"
	"github.com/aretw0/cohort/internal/presentation/graph"
)

// Validate loads and compiles the model, printing what was resolved.
func Validate(path string, out io.Writer) error {
	eng, err := cohort.Load(path)
	if err != nil {
		return err
	}
	m := eng.Model()
	fmt.Fprintf(out, "Model %q is valid.\n", m.Name)
	fmt.Fprintf(out, "  states:      %v\n", eng.States())
	fmt.Fprintf(out, "  transitions: %d\n", len(eng.Transitions()))
	fmt.Fprintf(out, "  variables:   %d\n", len(eng.Variables()))
	fmt.Fprintf(out, "  parameters:  %d\n", len(m.Parameters))
	fmt.Fprintf(out, "  dimensions:  %v\n", m.Dimensions)
	return nil
}

// Graph prints the model tree as a Mermaid diagram. With overlay set the model
// is simulated once and the final prevalence is shown on each state.
func Graph(ctx context.Context, path string, overlay bool, out io.Writer) error {
	eng, err := cohort.Load(path)
	if err != nil {
		return err
	}
	var ov *graph.Overlay
	if overlay {
		res, err := eng.Simulate(ctx)
		if err != nil {
			return err
		}
		ov = &graph.Overlay{Prevalence: res.FinalPrevalence}
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(eng.Model(), ov))
	return err
}
