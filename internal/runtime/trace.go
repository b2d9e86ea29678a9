package runtime

import (
	"math"

	"github.com/aretw0/cohort/pkg/domain"
)

// DiscountFactor returns the factor applied to rewards of cycle t for an annual
// rate given in percent. Cycles before start are not discounted.
func DiscountFactor(ratePercent float64, start int, cyclesPerYear float64, t int) float64 {
	if t < start {
		return 1
	}
	years := float64(t-start+1) / cyclesPerYear
	return 1 / math.Pow(1+ratePercent/100, years)
}

// recordCycle commits the current cycle: it snapshots prevalence, rolls next
// into cur, folds rewards into the running totals with discounting, resets the
// cycle accumulators and appends the record to the trace.
func (tc *threadContext) recordCycle() (domain.CycleRecord, error) {
	settings := tc.prog.settings
	nd := len(tc.cycleRewards)
	rec := domain.CycleRecord{
		Cycle:           tc.step,
		Prevalence:      append([]float64(nil), tc.cur...),
		CycleRewards:    make([]float64, nd),
		CumRewards:      make([]float64, nd),
		CycleRewardsDis: make([]float64, nd),
		CumRewardsDis:   make([]float64, nd),
		Variables:       make([]float64, len(tc.prog.vars)),
	}
	copy(tc.cur, tc.next)

	if tc.step == 0 && settings.HalfCycleCorrection {
		for d := range tc.cycleRewards {
			tc.cycleRewards[d] *= 0.5
		}
	}

	for d := 0; d < nd; d++ {
		tc.cumRewards[d] += tc.cycleRewards[d]
		rec.CycleRewards[d] = tc.cycleRewards[d]
		rec.CumRewards[d] = tc.cumRewards[d]

		factor := 1.0
		if settings.DiscountRewards {
			factor = DiscountFactor(settings.DiscountRates[d], settings.DiscountStartCycle, settings.CyclesPerYear, tc.step)
		}
		tc.cycleRewardsDis[d] = tc.cycleRewards[d] * factor
		tc.cumRewardsDis[d] += tc.cycleRewardsDis[d]
		rec.CycleRewardsDis[d] = tc.cycleRewardsDis[d]
		rec.CumRewardsDis[d] = tc.cumRewardsDis[d]

		tc.cycleRewards[d] = 0
		tc.cycleRewardsDis[d] = 0
	}

	for i := range tc.prog.vars {
		rec.Variables[i] = tc.vars.float(i)
	}
	if err := tc.trace.Append(rec); err != nil {
		return domain.CycleRecord{}, err
	}
	return rec, nil
}
