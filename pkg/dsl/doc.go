/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing cohort models.

It allows developers to define Markov models using a type-safe, fluent builder pattern
instead of relying on external YAML or JSON files. This is particularly useful for
generated models, unit testing, and leveraging IDE autocompletion/type-checking.

Example usage:

	b := dsl.New("healthy-dead").
		Dimensions("LY").
		Cohort(1000).
		MaxCycles(50)

	b.Param("pDie", "0.1")

	chain := b.Chain("Markov").Terminate("t >= 50")

	healthy := chain.State("Healthy").Prob("1").Reward("1")
	healthy.Transition("die", "Dead").Prob("pDie")
	healthy.Transition("stay", "Healthy").Complement()

	chain.State("Dead").Prob("0").Reward("0").
		Transition("remain", "Dead").Prob("1")

	model, err := b.Build()
	// ... pass model to cohort.New(...)
*/
package dsl
