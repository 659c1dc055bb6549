package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orflow/internal/orcase"
)

// pipelineBatch is a small but complete facility day: two rooms, two
// surgeons, a rule, a phase schema, and enough history to baseline.
func pipelineBatch() orcase.Batch {
	historical := []orcase.Case{
		surgicalHistory("h1", 2, 3000),
		surgicalHistory("h2", 3, 3600),
		surgicalHistory("h3", 4, 4200),
	}

	// Monday 2026-03-09: two back-to-back room-a cases with a 50 min
	// turnover, one room-b case, one cancelled same day.
	first := surgicalHistory("c1", 9, 3600)
	second := buildCase(caseSpec{
		id: "c2", room: "room-a", surgeon: "s1", procedure: "proc-1", scheduled: at(9, 11, 0),
		events: []orcase.MilestoneEvent{
			ms(orcase.MilestonePatientIn, at(9, 11, 20)),
			ms(orcase.MilestonePatientOut, at(9, 13, 20)),
		},
	})
	other := simpleCase("c3", "room-b", "s2", at(9, 8, 0), at(9, 12, 0))
	cancelled := orcase.Case{
		ID: "c4", FacilityID: "fac-1", ScheduledStart: at(9, 14, 0),
		RoomID: "room-b", SurgeonID: "s2",
		Status: orcase.StatusCancelled, CancelledAt: timePtr(at(9, 9, 0)),
	}

	rule := orcase.FlagRule{
		ID: "rule-long", FacilityID: "fac-1",
		Metric:        MetricTotalCaseTime,
		Operator:      orcase.OpGT,
		ThresholdType: orcase.ThresholdAbsolute, ThresholdValue: 100,
		Scope: orcase.ScopeFacility, Severity: "warning",
		Enabled: true, Active: true,
	}

	return orcase.Batch{
		Cases:           []orcase.Case{first, second, other, cancelled},
		HistoricalCases: historical,
		Rules:           []orcase.FlagRule{rule},
		Phases:          phaseDefs(),
		RoomHours:       orcase.RoomHours{"room-a": 10, "room-b": 8},
		Settings:        orcase.DefaultSettings(),
	}
}

func TestEvaluateBatch(t *testing.T) {
	result, err := EvaluateBatch(context.Background(), pipelineBatch(), 2)
	require.NoError(t, err)
	require.NotNil(t, result)

	// c1 runs 150 min, c2 120 min, c3 240 min: all past the 100 min rule.
	var ruleFlags, turnoverFlags int
	flaggedCases := map[string]bool{}
	for _, f := range result.Flags {
		if f.RuleID != nil {
			ruleFlags++
			flaggedCases[f.CaseID] = true
		}
		if f.Label == "Long Turnover" {
			turnoverFlags++
			assert.Equal(t, "c2", f.CaseID)
			assert.InDelta(t, 50, f.Value, 0.01)
		}
	}
	assert.Equal(t, 3, ruleFlags)
	assert.Equal(t, 1, turnoverFlags)
	assert.NotContains(t, flaggedCases, "c4", "cancelled cases are never evaluated")

	// KPI side: four scheduled cases, one cancelled same day.
	assert.Equal(t, "4", result.KPIs.Volume.DisplayValue)
	assert.InDelta(t, 25, result.KPIs.Cancellations.Value, 0.01)

	// The single measured same-room turnover is the c1 -> c2 gap.
	assert.InDelta(t, 50, result.KPIs.Turnover.Value, 0.01)
}

func TestEvaluateBatchContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EvaluateBatch(ctx, pipelineBatch(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateBatchEmpty(t *testing.T) {
	result, err := EvaluateBatch(context.Background(), orcase.Batch{Settings: orcase.DefaultSettings()}, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Flags)
	assert.Equal(t, NoDataDisplay, result.KPIs.Turnover.DisplayValue)
	assert.Equal(t, NoDataDisplay, result.KPIs.FirstCaseOnTime.DisplayValue)
}

func timePtr(t time.Time) *time.Time { return &t }
