package analytics

import (
	"fmt"

	"orflow/internal/orcase"
)

// NonOperativeTime averages the time a patient occupies the room without
// active surgical work. Pre-op is patient_in to incision. Post-op is
// closing_complete to patient_out and deliberately never falls back to
// the closing milestone: the closing-to-closing_complete interval is
// active surgical work. A case with pre-op but no closing_complete
// contributes its pre-op minutes alone.
func NonOperativeTime(cases, previous []orcase.Case) KPIResult {
	values := nonOperativeMinutes(cases)
	if len(values) == 0 {
		return noData("No qualifying cases in period")
	}

	avg := *Average(values)
	result := KPIResult{
		Value:        roundTo(avg, 1),
		DisplayValue: formatMinutes(avg),
		Subtitle:     fmt.Sprintf("Avg across %d cases", len(values)),
	}

	if prev := nonOperativeMinutes(previous); len(prev) > 0 {
		result.Delta = deltaVs(avg, Average(prev), true)
	}

	return result
}

func nonOperativeMinutes(cases []orcase.Case) []*float64 {
	var values []*float64
	for _, c := range performedCases(cases) {
		m := BuildMilestoneMap(c)
		preOp := DiffMinutes(m.At(orcase.MilestonePatientIn), m.At(orcase.MilestoneIncision))
		if preOp == nil {
			continue
		}

		total := *preOp
		if postOp := DiffMinutes(m.At(orcase.MilestoneClosingComplete), m.At(orcase.MilestonePatientOut)); postOp != nil {
			total += *postOp
		}
		values = append(values, Float(total))
	}
	return values
}
