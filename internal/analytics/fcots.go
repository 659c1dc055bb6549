package analytics

import (
	"fmt"
	"time"

	"orflow/internal/orcase"
)

// fcotsOutcome is one first-case measurement.
type fcotsOutcome struct {
	day    string
	onTime bool
}

// FirstCaseOnTimeStarts computes the FCOTS rate: for each (day, room)
// the earliest-scheduled case is compared against its scheduled start
// plus the configured grace period. The measured milestone is patient_in
// by default, incision when the facility opts in.
func FirstCaseOnTimeStarts(cases, previous []orcase.Case, s orcase.Settings) KPIResult {
	outcomes := firstCaseOutcomes(cases, s)
	if len(outcomes) == 0 {
		return noData("No first cases in period")
	}

	rate := fcotsRate(outcomes)
	result := KPIResult{
		Value:        roundTo(rate, 1),
		DisplayValue: formatPercent(rate),
		Subtitle:     fmt.Sprintf("%d of %d first cases on time", onTimeCount(outcomes), len(outcomes)),
		Target:       Float(s.FCOTSTargetPercent),
		TargetMet:    boolPtr(rate >= s.FCOTSTargetPercent),
		Days:         fcotsDays(outcomes, s),
	}

	if prev := firstCaseOutcomes(previous, s); len(prev) > 0 {
		result.Delta = deltaVs(rate, Float(fcotsRate(prev)), false)
	}

	return result
}

// firstCaseOutcomes resolves the first case per (day, room) and whether
// it started on time. Cases without the measured milestone are skipped
// rather than counted late.
func firstCaseOutcomes(cases []orcase.Case, s orcase.Settings) []fcotsOutcome {
	milestone := orcase.MilestonePatientIn
	if s.FCOTSUseIncision {
		milestone = orcase.MilestoneIncision
	}

	var outcomes []fcotsOutcome
	groups := groupBy(performedCases(cases), byDayRoom)
	for _, key := range sortedKeys(groups) {
		first := sortByScheduled(groups[key])[0]

		actual := BuildMilestoneMap(first).At(milestone)
		if actual == nil {
			continue
		}

		deadline := first.ScheduledStart.Add(time.Duration(s.FCOTSGraceMinutes) * time.Minute)
		outcomes = append(outcomes, fcotsOutcome{
			day:    first.Day(),
			onTime: !actual.After(deadline),
		})
	}
	return outcomes
}

func onTimeCount(outcomes []fcotsOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.onTime {
			n++
		}
	}
	return n
}

func fcotsRate(outcomes []fcotsOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	return float64(onTimeCount(outcomes)) / float64(len(outcomes)) * 100
}

// fcotsDays builds the per-day tracker strip. Colors come from the
// facility thresholds so retargeting recolors cells without touching
// the on-time determination.
func fcotsDays(outcomes []fcotsOutcome, s orcase.Settings) []DayPoint {
	perDay := make(map[string][]fcotsOutcome)
	for _, o := range outcomes {
		perDay[o.day] = append(perDay[o.day], o)
	}

	var days []DayPoint
	for _, day := range sortedKeys(perDay) {
		dayRate := fcotsRate(perDay[day])
		color := ColorRed
		switch {
		case dayRate >= s.FCOTSTargetPercent:
			color = ColorGreen
		case dayRate >= s.FCOTSYellowPercent:
			color = ColorYellow
		}
		days = append(days, DayPoint{
			Date:    day,
			Color:   color,
			Tooltip: fmt.Sprintf("%d of %d on time", onTimeCount(perDay[day]), len(perDay[day])),
		})
	}
	return days
}
