package analytics

import (
	"fmt"

	"github.com/google/uuid"

	"orflow/internal/orcase"
)

// Heuristic flag severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// DetectCaseAnomalies runs the same-day heuristic detector for one case
// against its day's chronological case list and the per-procedure
// median table. It needs no rule records; thresholds come from the
// facility settings. Detectors whose baseline is absent stay silent.
func DetectCaseAnomalies(c orcase.Case, dayCases []orcase.Case, medians ProcedureMedians, defs []orcase.PhaseDefinition, s orcase.Settings) []CaseFlag {
	m := BuildMilestoneMap(c)
	ordered := sortChronological(performedCases(dayCases))

	var flags []CaseFlag
	if flag := detectLateStart(c, m, ordered, s); flag != nil {
		flags = append(flags, *flag)
	}
	if flag := detectLongTurnover(c, m, ordered, s); flag != nil {
		flags = append(flags, *flag)
	}
	flags = append(flags, detectExtendedPhases(c, m, medians, defs, s)...)
	if flag := detectFastCase(c, m, medians, s); flag != nil {
		flags = append(flags, *flag)
	}
	return flags
}

// detectLateStart fires only for the day's first case: a delay above
// the configured threshold is a warning, one to threshold minutes is
// informational, a minute or less is no flag.
func detectLateStart(c orcase.Case, m MilestoneMap, ordered []orcase.Case, s orcase.Settings) *CaseFlag {
	if len(ordered) == 0 || ordered[0].ID != c.ID {
		return nil
	}

	sched := c.ScheduledStart
	delay := DiffMinutes(&sched, m.At(orcase.MilestonePatientIn))
	if delay == nil || *delay <= 1 {
		return nil
	}

	severity := SeverityInfo
	if *delay > s.LateStartThresholdMinutes {
		severity = SeverityWarning
	}

	return heuristicFlag(c, "Late Start",
		fmt.Sprintf("Started %.0f min after scheduled time", *delay),
		"clock", severity, *delay, s.LateStartThresholdMinutes)
}

// detectLongTurnover measures against the most recent prior case in the
// same room by patient_in ordering, not insertion order.
func detectLongTurnover(c orcase.Case, m MilestoneMap, ordered []orcase.Case, s orcase.Settings) *CaseFlag {
	thisIn := m.At(orcase.MilestonePatientIn)
	if thisIn == nil {
		return nil
	}

	var prior *orcase.Case
	for i := range ordered {
		cand := ordered[i]
		if cand.ID == c.ID || cand.RoomID != c.RoomID {
			continue
		}
		candIn := BuildMilestoneMap(cand).At(orcase.MilestonePatientIn)
		if candIn == nil || !candIn.Before(*thisIn) {
			continue
		}
		if prior == nil || actualStart(cand).After(actualStart(*prior)) {
			prior = &ordered[i]
		}
	}
	if prior == nil {
		return nil
	}

	gap := DiffMinutes(BuildMilestoneMap(*prior).At(orcase.MilestonePatientOut), thisIn)
	if gap == nil || *gap <= s.TurnoverThresholdMinutes {
		return nil
	}

	return heuristicFlag(c, "Long Turnover",
		fmt.Sprintf("%.0f min turnover in %s", *gap, c.RoomName),
		"rotate", SeverityWarning, *gap, s.TurnoverThresholdMinutes)
}

// detectExtendedPhases flags every phase whose actual duration exceeds
// the procedure median by the configured percentage (parents and
// sub-phases carry different tolerances).
func detectExtendedPhases(c orcase.Case, m MilestoneMap, medians ProcedureMedians, defs []orcase.PhaseDefinition, s orcase.Settings) []CaseFlag {
	if c.ProcedureID == "" {
		return nil
	}

	defsByID := make(map[string]orcase.PhaseDefinition, len(defs))
	for _, def := range defs {
		defsByID[def.ID] = def
	}

	var flags []CaseFlag
	for phaseID, actual := range PhaseDurations(defs, m) {
		median := medians.PhaseSeconds(c.ProcedureID, phaseID)
		if median == nil || *median <= 0 {
			continue
		}

		def := defsByID[phaseID]
		limit := s.ExtendedPhasePercent
		if def.ParentPhaseID != nil {
			limit = s.ExtendedSubphasePercent
		}

		overrun := (actual - *median) / *median * 100
		if overrun <= limit {
			continue
		}

		flags = append(flags, *heuristicFlag(c, "Extended "+def.Name,
			fmt.Sprintf("%s ran %.0f%% over the procedure median", def.Name, overrun),
			"trending-up", SeverityWarning, actual, *median))
	}
	return flags
}

// detectFastCase flags total OR time more than the configured
// percentage below the procedure's median total.
func detectFastCase(c orcase.Case, m MilestoneMap, medians ProcedureMedians, s orcase.Settings) *CaseFlag {
	if c.ProcedureID == "" {
		return nil
	}
	median := medians.TotalSeconds(c.ProcedureID)
	if median == nil || *median <= 0 {
		return nil
	}

	actual := DiffSeconds(m.At(orcase.MilestonePatientIn), m.At(orcase.MilestonePatientOut))
	if actual == nil || *actual <= 0 {
		return nil
	}

	floor := *median * (1 - s.FastCasePercent/100)
	if *actual >= floor {
		return nil
	}

	return heuristicFlag(c, "Fast Case",
		fmt.Sprintf("Finished %.0f%% under the procedure median", (*median-*actual)/ *median*100),
		"zap", SeverityInfo, *actual, *median)
}

func heuristicFlag(c orcase.Case, label, detail, icon, severity string, value, threshold float64) *CaseFlag {
	return &CaseFlag{
		ID:         uuid.NewString(),
		CaseID:     c.ID,
		FacilityID: c.FacilityID,
		Value:      roundTo(value, 1),
		Threshold:  roundTo(threshold, 1),
		Severity:   severity,
		Label:      label,
		Detail:     detail,
		Icon:       icon,
	}
}
