package analytics

import (
	"time"

	"orflow/internal/orcase"
)

// All fixtures live on a fixed week: Monday 2026-03-02 and onward, UTC.
func at(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC)
}

func ms(name string, t time.Time) orcase.MilestoneEvent {
	return orcase.MilestoneEvent{Name: name, RecordedAt: t}
}

type caseSpec struct {
	id        string
	room      string
	surgeon   string
	procedure string
	scheduled time.Time
	events    []orcase.MilestoneEvent
}

func buildCase(spec caseSpec) orcase.Case {
	return orcase.Case{
		ID:             spec.id,
		FacilityID:     "fac-1",
		CaseNumber:     spec.id,
		ScheduledStart: spec.scheduled,
		RoomID:         spec.room,
		RoomName:       spec.room,
		SurgeonID:      spec.surgeon,
		ProcedureID:    spec.procedure,
		Status:         orcase.StatusCompleted,
		Milestones:     spec.events,
	}
}

// simpleCase is a completed case with patient_in/patient_out bracketing
// the given span.
func simpleCase(id, room, surgeon string, in, out time.Time) orcase.Case {
	return buildCase(caseSpec{
		id:        id,
		room:      room,
		surgeon:   surgeon,
		scheduled: in,
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, in),
			ms(orcase.MilestonePatientOut, out),
		},
	})
}

func floats(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}
