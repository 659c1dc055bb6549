package analytics

import (
	"fmt"

	"orflow/internal/orcase"
)

// SameRoomTurnovers measures patient-out to next patient-in gaps between
// consecutive cases in the same room on the same day. Gaps <= 0 or at or
// above the artifact ceiling are discarded as data-entry artifacts, not
// surfaced as errors.
func SameRoomTurnovers(cases, previous []orcase.Case, s orcase.Settings) KPIResult {
	turnovers := sameRoomTurnoverMinutes(cases, s)
	if len(turnovers) == 0 {
		return noData("No turnovers in period")
	}

	avg := *Average(turnovers)
	compliance := turnoverCompliance(turnovers, s.TurnoverThresholdMinutes)

	result := KPIResult{
		Value:        roundTo(avg, 1),
		DisplayValue: formatMinutes(avg),
		Subtitle: fmt.Sprintf("%s within %.0f min (%d turnovers)",
			formatPercent(compliance), s.TurnoverThresholdMinutes, len(turnovers)),
		Target:    Float(s.TurnoverTargetPercent),
		TargetMet: boolPtr(compliance >= s.TurnoverTargetPercent),
	}

	if prev := sameRoomTurnoverMinutes(previous, s); len(prev) > 0 {
		result.Delta = deltaVs(avg, Average(prev), true)
	}

	return result
}

// sameRoomTurnoverMinutes walks each (day, room) group in scheduled
// order and yields the qualifying consecutive-pair gaps.
func sameRoomTurnoverMinutes(cases []orcase.Case, s orcase.Settings) []*float64 {
	var turnovers []*float64
	groups := groupBy(performedCases(cases), byDayRoom)
	for _, key := range sortedKeys(groups) {
		ordered := sortByScheduled(groups[key])
		for i := 1; i < len(ordered); i++ {
			prevOut := BuildMilestoneMap(ordered[i-1]).At(orcase.MilestonePatientOut)
			nextIn := BuildMilestoneMap(ordered[i]).At(orcase.MilestonePatientIn)
			gap := DiffMinutes(prevOut, nextIn)
			if gap == nil || *gap <= 0 || *gap >= s.TurnoverArtifactCeilingMinutes {
				continue
			}
			turnovers = append(turnovers, gap)
		}
	}
	return turnovers
}

func turnoverCompliance(turnovers []*float64, threshold float64) float64 {
	if len(turnovers) == 0 {
		return 0
	}
	within := 0
	for _, t := range turnovers {
		if *t <= threshold {
			within++
		}
	}
	return float64(within) / float64(len(turnovers)) * 100
}
