package cohort_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/cohort"
	"github.com/aretw0/cohort/pkg/dsl"
)

// ExampleNew builds a two-state model in Go and simulates it once.
func ExampleNew() {
	b := dsl.New("healthy-dead").
		Dimensions("LY").
		Cohort(1000).
		MaxCycles(5)

	chain := b.Chain("Markov").Terminate("t >= 5")

	healthy := chain.State("Healthy").Prob("1").Reward("1")
	healthy.Transition("die", "Dead").Prob("0.1")
	healthy.Transition("stay", "Healthy").Complement()

	chain.State("Dead").Prob("0").Reward("0").
		Transition("remain", "Dead").Prob("1")

	model, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	eng, err := cohort.New(model)
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Simulate(context.Background(), cohort.WithRunID("example"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("States: %v\n", eng.States())
	fmt.Printf("Cycles: %d\n", res.Cycles)
	fmt.Printf("LY: %.1f\n", res.ExpectedValues[0])
	fmt.Printf("Final: %.2f %.2f\n", res.FinalPrevalence[0], res.FinalPrevalence[1])
	// Output:
	// States: [Healthy Dead]
	// Cycles: 5
	// LY: 4095.1
	// Final: 590.49 409.51
}
