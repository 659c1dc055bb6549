package analytics

import (
	"testing"

	"orflow/internal/orcase"
)

func phaseDefs() []orcase.PhaseDefinition {
	parentID := "ph-case"
	return []orcase.PhaseDefinition{
		{ID: "ph-case", Name: "In Room", DisplayOrder: 1, ColorKey: "slate",
			StartMilestone: orcase.MilestonePatientIn, EndMilestone: orcase.MilestonePatientOut},
		{ID: "ph-surgical", Name: "Surgical", DisplayOrder: 2, ColorKey: "red", ParentPhaseID: &parentID,
			StartMilestone: orcase.MilestoneIncision, EndMilestone: orcase.MilestoneClosingComplete},
		{ID: "ph-anes", Name: "Anesthesia", DisplayOrder: 1, ColorKey: "blue", ParentPhaseID: &parentID,
			StartMilestone: orcase.MilestoneAnesStart, EndMilestone: orcase.MilestoneAnesEnd},
	}
}

func TestComputePhaseSpans(t *testing.T) {
	c := buildCase(caseSpec{
		id:        "c1",
		scheduled: at(2, 8, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(2, 8, 0)),
			ms(orcase.MilestoneAnesStart, at(2, 8, 5)),
			ms(orcase.MilestoneIncision, at(2, 8, 30)),
			ms(orcase.MilestoneClosingComplete, at(2, 9, 30)),
			ms(orcase.MilestoneAnesEnd, at(2, 9, 45)),
			ms(orcase.MilestonePatientOut, at(2, 10, 0)),
		},
	})

	spans := ComputePhaseSpans(phaseDefs(), BuildMilestoneMap(c), nil)
	if len(spans) != 1 {
		t.Fatalf("got %d parent spans, want 1", len(spans))
	}

	parent := spans[0]
	if parent.Seconds != 7200 {
		t.Errorf("parent duration = %v, want 7200", parent.Seconds)
	}
	if len(parent.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(parent.Children))
	}

	// Sub-phases come back in display order: Anesthesia before Surgical.
	if parent.Children[0].PhaseID != "ph-anes" || parent.Children[1].PhaseID != "ph-surgical" {
		t.Errorf("child order = %s, %s", parent.Children[0].PhaseID, parent.Children[1].PhaseID)
	}
	if got := parent.Children[1]; got.Seconds != 3600 || got.OffsetSeconds != 1800 {
		t.Errorf("surgical = %v sec at offset %v, want 3600 at 1800", got.Seconds, got.OffsetSeconds)
	}
}

func TestSubphaseClampedToParentWindow(t *testing.T) {
	c := buildCase(caseSpec{
		id:        "c1",
		scheduled: at(2, 8, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(2, 8, 0)),
			ms(orcase.MilestoneAnesStart, at(2, 8, 10)),
			ms(orcase.MilestoneAnesEnd, at(2, 10, 30)), // runs past patient_out
			ms(orcase.MilestonePatientOut, at(2, 10, 0)),
		},
	})

	spans := ComputePhaseSpans(phaseDefs(), BuildMilestoneMap(c), nil)
	if len(spans) != 1 || len(spans[0].Children) != 1 {
		t.Fatalf("unexpected span shape: %+v", spans)
	}

	anes := spans[0].Children[0]
	if anes.OffsetSeconds != 600 {
		t.Errorf("offset = %v, want 600 (offset is never clamped)", anes.OffsetSeconds)
	}
	// 7200 parent - 600 offset: duration clamps to the remaining window.
	if anes.Seconds != 6600 {
		t.Errorf("clamped duration = %v, want 6600", anes.Seconds)
	}
}

func TestSubphaseOmittedWithoutParent(t *testing.T) {
	// No patient_out: parent has no duration, so the sub-phase vanishes
	// even though its own milestones are present.
	c := buildCase(caseSpec{
		id:        "c1",
		scheduled: at(2, 8, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(2, 8, 0)),
			ms(orcase.MilestoneIncision, at(2, 8, 30)),
			ms(orcase.MilestoneClosingComplete, at(2, 9, 30)),
		},
	})

	spans := ComputePhaseSpans(phaseDefs(), BuildMilestoneMap(c), nil)
	if len(spans) != 0 {
		t.Errorf("got %d spans, want 0", len(spans))
	}
}

func TestColorLookupInjection(t *testing.T) {
	c := buildCase(caseSpec{
		id:        "c1",
		scheduled: at(2, 8, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(2, 8, 0)),
			ms(orcase.MilestonePatientOut, at(2, 10, 0)),
		},
	})

	spans := ComputePhaseSpans(phaseDefs(), BuildMilestoneMap(c), func(key string) string {
		return "display-" + key
	})
	if spans[0].Color != "display-slate" {
		t.Errorf("color = %q, want %q", spans[0].Color, "display-slate")
	}
}
