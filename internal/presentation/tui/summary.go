package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/cohort/pkg/batch"
	"github.com/aretw0/cohort/pkg/domain"
)

// RunSummary formats a run result as markdown.
func RunSummary(res *domain.RunResult, states []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run `%s`\n\n", res.RunID)
	fmt.Fprintf(&sb, "Chain **%s** stopped after **%d** cycles (%s) in %s.\n\n",
		res.Chain, res.Cycles, res.StopReason, res.Duration.Round(time.Microsecond))

	sb.WriteString("## Expected values\n\n")
	sb.WriteString("| Dimension | Total | Discounted |\n|---|---:|---:|\n")
	for i, dim := range res.Dimensions {
		fmt.Fprintf(&sb, "| %s | %.4f | %.4f |\n", dim, res.ExpectedValues[i], res.ExpectedValuesDis[i])
	}

	if len(states) == len(res.FinalPrevalence) {
		sb.WriteString("\n## Final prevalence\n\n")
		sb.WriteString("| State | Cohort |\n|---|---:|\n")
		for i, s := range states {
			fmt.Fprintf(&sb, "| %s | %.4f |\n", s, res.FinalPrevalence[i])
		}
	}

	if len(res.TerminationErrors) > 0 {
		fmt.Fprintf(&sb, "\n## Termination errors (%d)\n\n", len(res.TerminationErrors))
		for _, e := range res.TerminationErrors {
			fmt.Fprintf(&sb, "- `%s`\n", e)
		}
	}
	return sb.String()
}

// BatchSummary formats a batch report as markdown.
func BatchSummary(r *batch.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s batch\n\n", strings.ToUpper(string(r.Operation)))
	fmt.Fprintf(&sb, "%d runs, %d succeeded, %d failed in %s.\n\n",
		r.Runs, r.Succeeded, r.Failed, r.Duration.Round(time.Microsecond))

	if r.Succeeded > 0 {
		sb.WriteString("| Dimension | Mean | SD | 2.5% | 97.5% | Mean (disc.) |\n")
		sb.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for i, dim := range r.Dimensions {
			s, d := r.ExpectedValues[i], r.ExpectedValuesDis[i]
			fmt.Fprintf(&sb, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f |\n", dim, s.Mean, s.StdDev, s.P025, s.P975, d.Mean)
		}
	}

	if errs := r.Errors(); len(errs) > 0 {
		sb.WriteString("\n## Failed runs\n\n")
		for _, o := range errs {
			fmt.Fprintf(&sb, "- `%s`: %v\n", o.Run.ID, o.Err)
		}
	}
	return sb.String()
}
