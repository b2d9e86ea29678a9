package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/aretw0/cohort/pkg/domain"
)

// WriteTraceCSV writes one row per cycle: the cycle index, the prevalence of
// every state, the cycle and cumulative rewards per dimension (undiscounted then
// discounted) and every variable. Non-finite values are written as empty cells.
func WriteTraceCSV(w io.Writer, tr *domain.Trace) error {
	cw := csv.NewWriter(w)

	header := []string{"cycle"}
	header = append(header, tr.States...)
	for _, d := range tr.Dimensions {
		header = append(header, d, "cum_"+d, d+"_dis", "cum_"+d+"_dis")
	}
	header = append(header, tr.Variables...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for i := 0; i < tr.Len(); i++ {
		rec := tr.Record(i)
		row = append(row[:0], strconv.Itoa(rec.Cycle))
		for _, v := range rec.Prevalence {
			row = append(row, formatFloat(v))
		}
		for d := range tr.Dimensions {
			row = append(row,
				formatFloat(rec.CycleRewards[d]),
				formatFloat(rec.CumRewards[d]),
				formatFloat(rec.CycleRewardsDis[d]),
				formatFloat(rec.CumRewardsDis[d]),
			)
		}
		for _, v := range rec.Variables {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeTraceFile writes the trace to path as CSV.
func writeTraceFile(path string, tr *domain.Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteTraceCSV(f, tr)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
