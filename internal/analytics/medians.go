package analytics

import (
	"orflow/internal/orcase"
)

// ProcedureMedians maps "procedureID:total" and "procedureID:<phaseID>"
// to a median duration in seconds. Rebuilt per batch from the current
// historical set; entries require at least minBaselineSamples
// observations.
type ProcedureMedians map[string]float64

const procedureTotalKey = "total"

// TotalSeconds returns the procedure's median total OR time.
func (pm ProcedureMedians) TotalSeconds(procedureID string) *float64 {
	if v, ok := pm[procedureID+":"+procedureTotalKey]; ok {
		return Float(v)
	}
	return nil
}

// PhaseSeconds returns the procedure's median duration for one phase.
func (pm ProcedureMedians) PhaseSeconds(procedureID, phaseID string) *float64 {
	if v, ok := pm[procedureID+":"+phaseID]; ok {
		return Float(v)
	}
	return nil
}

// BuildProcedureMedians aggregates historical cases into per-procedure
// median total times and phase durations, via the phase engine.
func BuildProcedureMedians(historical []orcase.Case, defs []orcase.PhaseDefinition) ProcedureMedians {
	buckets := make(map[string][]*float64)

	for _, c := range performedCases(historical) {
		if c.ProcedureID == "" {
			continue
		}
		m := BuildMilestoneMap(c)

		if total := DiffSeconds(m.At(orcase.MilestonePatientIn), m.At(orcase.MilestonePatientOut)); total != nil && *total > 0 {
			key := c.ProcedureID + ":" + procedureTotalKey
			buckets[key] = append(buckets[key], total)
		}

		for phaseID, seconds := range PhaseDurations(defs, m) {
			if seconds <= 0 {
				continue
			}
			key := c.ProcedureID + ":" + phaseID
			buckets[key] = append(buckets[key], Float(seconds))
		}
	}

	medians := make(ProcedureMedians)
	for key, values := range buckets {
		if len(valid(values)) < minBaselineSamples {
			continue
		}
		medians[key] = *Median(values)
	}
	return medians
}
