package tui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cohort/internal/presentation/tui"
	"github.com/aretw0/cohort/pkg/batch"
	"github.com/aretw0/cohort/pkg/domain"
)

func TestRunSummary(t *testing.T) {
	res := &domain.RunResult{
		RunID:             "r1",
		Chain:             "Markov",
		Dimensions:        []string{"LY"},
		ExpectedValues:    []float64{4095.1},
		ExpectedValuesDis: []float64{3900},
		Cycles:            5,
		StopReason:        domain.StopMaxCycles,
		FinalPrevalence:   []float64{590.49, 409.51},
		TerminationErrors: []string{"bad formula"},
	}
	md := tui.RunSummary(res, []string{"Healthy", "Dead"})

	assert.Contains(t, md, "# Run `r1`")
	assert.Contains(t, md, "**5** cycles (max_cycles)")
	assert.Contains(t, md, "| LY | 4095.1000 | 3900.0000 |")
	assert.Contains(t, md, "| Healthy | 590.4900 |")
	assert.Contains(t, md, "Termination errors (1)")
}

func TestRunSummary_SkipsPrevalenceWithoutStates(t *testing.T) {
	res := &domain.RunResult{RunID: "r", FinalPrevalence: []float64{1}}
	assert.NotContains(t, tui.RunSummary(res, nil), "Final prevalence")
}

func TestBatchSummary(t *testing.T) {
	r := &batch.Report{
		Operation:         batch.OperationPSA,
		Dimensions:        []string{"LY"},
		Runs:              2,
		Succeeded:         1,
		Failed:            1,
		ExpectedValues:    []batch.Stats{{Mean: 10, StdDev: 1, P025: 8, P975: 12}},
		ExpectedValuesDis: []batch.Stats{{Mean: 9}},
		Outcomes: []batch.Outcome{
			{Run: batch.Run{ID: "b-0"}, Result: &domain.RunResult{}},
			{Run: batch.Run{ID: "b-1"}, Err: errors.New("boom")},
		},
	}
	md := tui.BatchSummary(r)
	assert.Contains(t, md, "# PSA batch")
	assert.Contains(t, md, "2 runs, 1 succeeded, 1 failed")
	assert.Contains(t, md, "| LY | 10.0000 | 1.0000 | 8.0000 | 12.0000 | 9.0000 |")
	assert.Contains(t, md, "- `b-1`: boom")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
}
