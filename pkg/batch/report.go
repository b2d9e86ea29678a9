package batch

import (
	"math"
	"slices"
	"time"
)

// Stats summarizes one reward dimension over the successful runs.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P025   float64 `json:"p2_5"`
	P975   float64 `json:"p97_5"`
}

// Report aggregates the outcomes of a batch.
type Report struct {
	Operation  Operation `json:"operation"`
	Dimensions []string  `json:"dimensions"`
	Runs       int       `json:"runs"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`

	// Per dimension, over successful runs.
	ExpectedValues    []Stats `json:"expected_values"`
	ExpectedValuesDis []Stats `json:"expected_values_dis"`

	ParamSets []map[string]float64 `json:"param_sets,omitempty"`
	Outcomes  []Outcome            `json:"-"`
	Duration  time.Duration        `json:"duration"`
}

// Errors returns the failed outcomes.
func (r *Report) Errors() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

func newReport(cfg Config, outcomes []Outcome, paramSets []map[string]float64) *Report {
	r := &Report{
		Operation: cfg.Operation,
		Runs:      len(outcomes),
		ParamSets: paramSets,
		Outcomes:  outcomes,
	}
	var ev, evDis [][]float64 // [dimension][run]
	for _, o := range outcomes {
		if o.Result == nil {
			r.Failed++
			continue
		}
		r.Succeeded++
		if r.Dimensions == nil {
			r.Dimensions = o.Result.Dimensions
			ev = make([][]float64, len(r.Dimensions))
			evDis = make([][]float64, len(r.Dimensions))
		}
		for d := range r.Dimensions {
			ev[d] = append(ev[d], o.Result.ExpectedValues[d])
			evDis[d] = append(evDis[d], o.Result.ExpectedValuesDis[d])
		}
	}
	for d := range r.Dimensions {
		r.ExpectedValues = append(r.ExpectedValues, summarize(ev[d]))
		r.ExpectedValuesDis = append(r.ExpectedValuesDis, summarize(evDis[d]))
	}
	return r
}

func summarize(xs []float64) Stats {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	n := float64(len(sorted))

	mean := 0.0
	for _, x := range sorted {
		mean += x
	}
	mean /= n

	variance := 0.0
	if len(sorted) > 1 {
		for _, x := range sorted {
			variance += (x - mean) * (x - mean)
		}
		variance /= n - 1
	}
	return Stats{
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P025:   percentile(sorted, 0.025),
		P975:   percentile(sorted, 0.975),
	}
}

// percentile interpolates linearly between closest ranks of sorted data.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
