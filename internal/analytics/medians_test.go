package analytics

import (
	"testing"
	"time"

	"orflow/internal/orcase"
)

// surgicalHistory builds a completed proc-1 case on the given day whose
// surgical phase (incision to closing_complete) lasts surgicalSeconds
// inside a fixed two-and-a-half-hour room stay.
func surgicalHistory(id string, day, surgicalSeconds int) orcase.Case {
	incision := at(day, 8, 30)
	return buildCase(caseSpec{
		id: id, room: "room-a", surgeon: "s1", procedure: "proc-1", scheduled: at(day, 8, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(day, 8, 0)),
			ms(orcase.MilestoneIncision, incision),
			ms(orcase.MilestoneClosingComplete, incision.Add(time.Duration(surgicalSeconds)*time.Second)),
			ms(orcase.MilestonePatientOut, at(day, 10, 30)),
		},
	})
}

func TestBuildProcedureMedians(t *testing.T) {
	historical := []orcase.Case{
		surgicalHistory("h1", 2, 3000),
		surgicalHistory("h2", 3, 3600),
		surgicalHistory("h3", 4, 4200),
	}

	medians := BuildProcedureMedians(historical, phaseDefs())

	if got := medians.PhaseSeconds("proc-1", "ph-surgical"); got == nil || *got != 3600 {
		t.Errorf("surgical phase median = %v, want 3600", got)
	}
	// 150 min room stay on every case.
	if got := medians.TotalSeconds("proc-1"); got == nil || *got != 9000 {
		t.Errorf("total median = %v, want 9000", got)
	}
	// No anesthesia milestones recorded, so no ph-anes bucket.
	if got := medians.PhaseSeconds("proc-1", "ph-anes"); got != nil {
		t.Errorf("anesthesia median = %v, want nil", got)
	}
}

func TestProcedureMediansRequireThreeSamples(t *testing.T) {
	historical := []orcase.Case{
		surgicalHistory("h1", 2, 3000),
		surgicalHistory("h2", 3, 3600),
	}
	medians := BuildProcedureMedians(historical, phaseDefs())
	if got := medians.TotalSeconds("proc-1"); got != nil {
		t.Errorf("two samples yielded %v, want nil", got)
	}
}

func TestProcedureMediansSkipUnattributedCases(t *testing.T) {
	historical := []orcase.Case{
		surgicalHistory("h1", 2, 3000),
		surgicalHistory("h2", 3, 3600),
		surgicalHistory("h3", 4, 4200),
	}
	historical[2].ProcedureID = ""

	medians := BuildProcedureMedians(historical, phaseDefs())
	if got := medians.TotalSeconds("proc-1"); got != nil {
		t.Errorf("median = %v, want nil once one case loses its procedure", got)
	}
	if got := medians.TotalSeconds(""); got != nil {
		t.Errorf("empty procedure key yielded %v, want nil", got)
	}
}
