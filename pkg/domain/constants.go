package domain

const (
	// CycleVariable is the innate variable holding the elapsed cycle count.
	CycleVariable = "t"

	// ProbabilityTolerance bounds the distance of sibling probability sums from 1.
	ProbabilityTolerance = 1e-6

	// DefaultCohortSize is used when a model does not declare one.
	DefaultCohortSize = 1000.0

	// DefaultMaxCycles is used when a model does not declare a cycle cap.
	DefaultMaxCycles = 10000
)

// IsComplementary reports whether a probability specification is the
// complementary marker ("C" or "c"), meaning 1 minus the sum of its siblings.
func IsComplementary(prob string) bool {
	return prob == "C" || prob == "c"
}
