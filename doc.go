/*
Package cohort is a Markov cohort simulation engine for health-economic models.

A model is a tree rooted at a Markov chain: the chain's direct children are
health states, below them sit chance and decision nodes, and transition leaves
move a share of the cohort to a target state. Every cycle the engine accrues
per-dimension rewards and costs, moves prevalence along the transitions and
records the result in a trace, until the chain's termination condition holds or
the cycle cap is reached.

# Concept

Models are plain data (pkg/domain). They are loaded from YAML or JSON documents
(pkg/loader) or assembled in Go (pkg/dsl), and compiled once into an immutable
program. Each run owns its own context (prevalence vectors, accumulators,
variable values, RNG), so one Engine can serve many concurrent simulations.
Formulas are delegated to an evaluator port, by default backed by expr.

# Key Features

  - Half-cycle correction and per-dimension discounting.
  - Model variables with dependency-ordered recomputation and update rules.
  - Probabilistic sensitivity analysis over parameter distributions (pkg/batch).
  - Pluggable result stores (memory, file, SQLite, Redis) and trace sinks.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/cohort"
	)

	func main() {
		eng, err := cohort.Load("./models/healthy_dead.yaml")
		if err != nil {
			log.Fatal(err)
		}

		res, err := eng.Simulate(context.Background(), cohort.WithSeed(42))
		if err != nil {
			log.Fatal(err)
		}
		for i, dim := range res.Dimensions {
			fmt.Printf("%s: %.2f (discounted %.2f)\n", dim, res.ExpectedValues[i], res.ExpectedValuesDis[i])
		}
	}
*/
package cohort
