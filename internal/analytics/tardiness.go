package analytics

import (
	"fmt"

	"orflow/internal/orcase"
)

// CumulativeTardiness sums positive start delays (scheduled vs. actual
// patient-in) per day and reports the average across days. Early starts
// never offset late ones.
func CumulativeTardiness(cases, previous []orcase.Case) KPIResult {
	perDay := dailyTardinessMinutes(cases)
	if len(perDay) == 0 {
		return noData("No start delays in period")
	}

	avg := *Average(perDay)
	result := KPIResult{
		Value:        roundTo(avg, 1),
		DisplayValue: formatMinutes(avg),
		Subtitle:     fmt.Sprintf("Avg cumulative delay across %d days", len(perDay)),
	}

	if prev := dailyTardinessMinutes(previous); len(prev) > 0 {
		result.Delta = deltaVs(avg, Average(prev), true)
	}

	return result
}

func dailyTardinessMinutes(cases []orcase.Case) []*float64 {
	days := groupBy(performedCases(cases), byDay)

	var totals []*float64
	for _, day := range sortedKeys(days) {
		var total float64
		counted := 0
		for _, c := range days[day] {
			sched := c.ScheduledStart
			delay := DiffMinutes(&sched, BuildMilestoneMap(c).At(orcase.MilestonePatientIn))
			if delay == nil {
				continue
			}
			counted++
			if *delay > 0 {
				total += *delay
			}
		}
		if counted > 0 {
			totals = append(totals, Float(total))
		}
	}
	return totals
}
