package analytics

import (
	"fmt"

	"orflow/internal/orcase"
)

// CancellationRate measures same-day cancellations against total case
// volume. Same-day means the cancellation's local calendar date equals
// the scheduled date, compared via local year/month/day components so a
// late-evening cancellation never shifts across a timezone boundary.
func CancellationRate(cases, previous []orcase.Case) KPIResult {
	counted := countedCases(cases)
	if len(counted) == 0 {
		return noData("No cases in period")
	}

	sameDay := sameDayCancellations(counted)
	rate := float64(sameDay) / float64(len(counted)) * 100

	result := KPIResult{
		Value:        roundTo(rate, 1),
		DisplayValue: formatPercent(rate),
		Subtitle:     fmt.Sprintf("%d same-day cancellations of %d cases", sameDay, len(counted)),
	}

	if prev := countedCases(previous); len(prev) > 0 {
		prevRate := float64(sameDayCancellations(prev)) / float64(len(prev)) * 100
		result.Delta = deltaVs(rate, Float(prevRate), true)
	}

	return result
}

func sameDayCancellations(cases []orcase.Case) int {
	n := 0
	for _, c := range cases {
		if c.CancelledAt == nil {
			continue
		}
		cy, cm, cd := c.CancelledAt.Date()
		sy, sm, sd := c.ScheduledStart.Date()
		if cy == sy && cm == sm && cd == sd {
			n++
		}
	}
	return n
}
