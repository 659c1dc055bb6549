package analytics

import (
	"orflow/internal/orcase"
)

// CaseTurnovers is the cross-case context the evaluator and baseline
// builder need: each case's preceding same-room turnover and whether
// the case opened its room for the day. Built once per batch from an
// immutable case slice.
type CaseTurnovers struct {
	Minutes     map[string]float64
	FirstInRoom map[string]bool
}

// Turnover returns the case's preceding turnover, nil when the case has
// none (first in room, or missing milestones on either side).
func (ct CaseTurnovers) Turnover(caseID string) *float64 {
	if v, ok := ct.Minutes[caseID]; ok {
		return Float(v)
	}
	return nil
}

// ComputeCaseTurnovers orders each (day, room) group by patient_in
// (temporal adjacency, not insertion or scheduled order) and records the
// gap from the prior occupant's patient_out to each case's patient_in.
// Non-positive gaps and gaps at or above the artifact ceiling are data
// artifacts and produce no value, matching the KPI aggregates.
func ComputeCaseTurnovers(cases []orcase.Case, s orcase.Settings) CaseTurnovers {
	ct := CaseTurnovers{
		Minutes:     make(map[string]float64),
		FirstInRoom: make(map[string]bool),
	}

	groups := groupBy(performedCases(cases), byDayRoom)
	for _, key := range sortedKeys(groups) {
		ordered := sortChronological(groups[key])
		for i, c := range ordered {
			if i == 0 {
				ct.FirstInRoom[c.ID] = true
				continue
			}
			gap := DiffMinutes(
				BuildMilestoneMap(ordered[i-1]).At(orcase.MilestonePatientOut),
				BuildMilestoneMap(c).At(orcase.MilestonePatientIn),
			)
			if gap == nil || *gap <= 0 || *gap >= s.TurnoverArtifactCeilingMinutes {
				continue
			}
			ct.Minutes[c.ID] = *gap
		}
	}

	return ct
}

// fcotsDelayMinutes is the first-in-room start delay, nil for cases
// that did not open their room or have no patient_in.
func fcotsDelayMinutes(c orcase.Case, m MilestoneMap, ct CaseTurnovers) *float64 {
	if !ct.FirstInRoom[c.ID] {
		return nil
	}
	sched := c.ScheduledStart
	return DiffMinutes(&sched, m.At(orcase.MilestonePatientIn))
}
