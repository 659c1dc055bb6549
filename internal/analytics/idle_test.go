package analytics

import (
	"testing"

	"orflow/internal/orcase"
)

func selfCloser(id string) map[string]orcase.Surgeon {
	return map[string]orcase.Surgeon{
		id: {ID: id, CloseWorkflow: orcase.CloseWorkflowSelf},
	}
}

func TestSurgeonIdleFlipGap(t *testing.T) {
	// s1 leaves room-a at 9:00 (explicit departure) and the next case's
	// patient arrives in room-b at 9:50: a 50-minute flip gap.
	left := at(2, 9, 0)
	c1 := simpleCase("c1", "room-a", "s1", at(2, 8, 0), at(2, 9, 20))
	c1.SurgeonLeftOR = &left
	c2 := simpleCase("c2", "room-b", "s1", at(2, 9, 50), at(2, 11, 0))

	result := SurgeonIdleTime([]orcase.Case{c1, c2}, nil, selfCloser("s1"), orcase.DefaultSettings())
	if len(result.Gaps) != 1 {
		t.Fatalf("got %d gaps, want 1", len(result.Gaps))
	}

	gap := result.Gaps[0]
	if gap.Type != GapFlip || gap.Minutes != 50 {
		t.Errorf("gap = %+v, want 50-minute flip", gap)
	}
	// Call-ahead: idle minus the 10-minute flip buffer.
	if gap.OptimalCallMinutes != 40 {
		t.Errorf("optimal call = %v, want 40", gap.OptimalCallMinutes)
	}
	if result.Flip.Value != 50 || result.SameRoom.DisplayValue != NoDataDisplay {
		t.Errorf("flip KPI = %+v, sameRoom = %+v", result.Flip, result.SameRoom)
	}
}

func TestSurgeonIdleSameRoomUsesIncision(t *testing.T) {
	// Self-close workflow: done at closing_complete 9:10; next case in
	// the same room incises at 9:55 (patient_in 9:40 must be ignored).
	c1 := buildCase(caseSpec{
		id: "c1", room: "room-a", surgeon: "s1", scheduled: at(2, 8, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(2, 8, 0)),
			ms(orcase.MilestoneClosingComplete, at(2, 9, 10)),
			ms(orcase.MilestonePatientOut, at(2, 9, 20)),
		},
	})
	c2 := buildCase(caseSpec{
		id: "c2", room: "room-a", surgeon: "s1", scheduled: at(2, 9, 40),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(2, 9, 40)),
			ms(orcase.MilestoneIncision, at(2, 9, 55)),
			ms(orcase.MilestonePatientOut, at(2, 11, 0)),
		},
	})

	result := SurgeonIdleTime([]orcase.Case{c1, c2}, nil, selfCloser("s1"), orcase.DefaultSettings())
	if len(result.Gaps) != 1 {
		t.Fatalf("got %d gaps, want 1", len(result.Gaps))
	}
	gap := result.Gaps[0]
	if gap.Type != GapSameRoom || gap.Minutes != 45 {
		t.Errorf("gap = %+v, want 45-minute same_room", gap)
	}
	// Same-room buffer is smaller: 45 - 5.
	if gap.OptimalCallMinutes != 40 {
		t.Errorf("optimal call = %v, want 40", gap.OptimalCallMinutes)
	}
}

func TestSurgeonIdleAssistantClose(t *testing.T) {
	// Assistant workflow: done = closing start + the profile handoff.
	handoff := 12.0
	surgeons := map[string]orcase.Surgeon{
		"s1": {ID: "s1", CloseWorkflow: orcase.CloseWorkflowAssistant, HandoffMinutes: &handoff},
	}

	c1 := buildCase(caseSpec{
		id: "c1", room: "room-a", surgeon: "s1", scheduled: at(2, 8, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(2, 8, 0)),
			ms(orcase.MilestoneClosing, at(2, 9, 0)),
			ms(orcase.MilestoneClosingComplete, at(2, 9, 30)),
			ms(orcase.MilestonePatientOut, at(2, 9, 40)),
		},
	})
	c2 := simpleCase("c2", "room-b", "s1", at(2, 10, 0), at(2, 11, 0))

	result := SurgeonIdleTime([]orcase.Case{c1, c2}, nil, surgeons, orcase.DefaultSettings())
	if len(result.Gaps) != 1 {
		t.Fatalf("got %d gaps, want 1", len(result.Gaps))
	}
	// 9:00 + 12 min handoff = 9:12 done; patient_in 10:00 = 48 min.
	if result.Gaps[0].Minutes != 48 {
		t.Errorf("gap = %v, want 48", result.Gaps[0].Minutes)
	}
}

func TestSurgeonIdleSingleCaseDay(t *testing.T) {
	c := simpleCase("c1", "room-a", "s1", at(2, 8, 0), at(2, 9, 0))
	result := SurgeonIdleTime([]orcase.Case{c}, nil, selfCloser("s1"), orcase.DefaultSettings())
	if result.Combined.DisplayValue != NoDataDisplay || len(result.Gaps) != 0 {
		t.Errorf("result = %+v, want no data for a single-case day", result.Combined)
	}
}

func TestSurgeonIdleDelta(t *testing.T) {
	// Current period: one 50-minute flip gap. Previous: one 30-minute
	// flip gap. Idle is lower-is-better, so the move is a regression.
	left := at(2, 9, 0)
	c1 := simpleCase("c1", "room-a", "s1", at(2, 8, 0), at(2, 9, 20))
	c1.SurgeonLeftOR = &left
	c2 := simpleCase("c2", "room-b", "s1", at(2, 9, 50), at(2, 11, 0))

	prevLeft := at(9, 9, 0)
	p1 := simpleCase("p1", "room-a", "s1", at(9, 8, 0), at(9, 9, 20))
	p1.SurgeonLeftOR = &prevLeft
	p2 := simpleCase("p2", "room-b", "s1", at(9, 9, 30), at(9, 11, 0))

	result := SurgeonIdleTime([]orcase.Case{c1, c2}, []orcase.Case{p1, p2}, selfCloser("s1"), orcase.DefaultSettings())
	for name, kpi := range map[string]KPIResult{"combined": result.Combined, "flip": result.Flip} {
		if kpi.Delta == nil {
			t.Fatalf("%s delta missing with a previous period", name)
		}
		if kpi.Delta.Value != 20 || kpi.Delta.Direction != DirectionUp || kpi.Delta.Improving {
			t.Errorf("%s delta = %+v, want up 20 not improving", name, kpi.Delta)
		}
	}
	// No same-room gaps in either period.
	if result.SameRoom.DisplayValue != NoDataDisplay {
		t.Errorf("sameRoom = %+v, want no data", result.SameRoom)
	}
}
