/*
Package batch orchestrates many independent simulation runs of one model.

A batch is either a single deterministic run ("run") or a probabilistic
sensitivity analysis ("psa") in which every iteration re-samples the model's
parameters from their distributions and performs one full cohort simulation.
Runs are spread over a bounded pool of workers; a failing run is reported
in its Outcome and never aborts its siblings.
*/
package batch
