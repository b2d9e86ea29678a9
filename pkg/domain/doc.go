/*
Package domain contains the core domain models of the cohort engine.

It defines the static model tree (chain, states, chance/decision nodes and transitions),
the model-wide settings, the per-cycle trace and the result of one simulation run.
This package is kept pure and free of external dependencies like I/O, formula
parsing or persistence.

# Key Entities

  - Node: A point in the model tree (Chain, State, Chance, Decision or Transition).
  - Model: The chain plus its variables, parameters, reward dimensions and Settings.
  - Trace: The append-only, cycle-indexed log produced by one run.
  - RunResult: Expected values and bookkeeping returned by one run.
*/
package domain
