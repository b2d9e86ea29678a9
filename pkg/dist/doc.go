/*
Package dist provides the probability distributions used to sample model parameters
during probabilistic sensitivity analysis.

Every distribution validates its parameters at construction and offers the same
evaluate/sample contract: PDF (PMF for discrete distributions), CDF, Quantile, Mean and
Sample. Sampling only draws from the *rand.Rand it is given, so a seeded generator
produces reproducible parameter sets.
*/
package dist
