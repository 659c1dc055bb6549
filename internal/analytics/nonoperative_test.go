package analytics

import (
	"testing"

	"orflow/internal/orcase"
)

func TestNonOperativeTime(t *testing.T) {
	tests := []struct {
		name     string
		events   []orcase.MilestoneEvent
		expected *float64
	}{
		{
			// 20 min pre-op, no closing_complete: exactly 20, never nil.
			name: "PreOpOnly",
			events: []orcase.MilestoneEvent{
				ms(orcase.MilestonePatientIn, at(2, 8, 0)),
				ms(orcase.MilestoneIncision, at(2, 8, 20)),
				ms(orcase.MilestonePatientOut, at(2, 10, 0)),
			},
			expected: Float(20),
		},
		{
			// 20 pre-op + 15 post-op.
			name: "PreAndPostOp",
			events: []orcase.MilestoneEvent{
				ms(orcase.MilestonePatientIn, at(2, 8, 0)),
				ms(orcase.MilestoneIncision, at(2, 8, 20)),
				ms(orcase.MilestoneClosingComplete, at(2, 9, 45)),
				ms(orcase.MilestonePatientOut, at(2, 10, 0)),
			},
			expected: Float(35),
		},
		{
			// The closing milestone never substitutes for
			// closing_complete: that interval is active work.
			name: "ClosingIsNotAFallback",
			events: []orcase.MilestoneEvent{
				ms(orcase.MilestonePatientIn, at(2, 8, 0)),
				ms(orcase.MilestoneIncision, at(2, 8, 20)),
				ms(orcase.MilestoneClosing, at(2, 9, 30)),
				ms(orcase.MilestonePatientOut, at(2, 10, 0)),
			},
			expected: Float(20),
		},
		{
			name: "MissingIncision",
			events: []orcase.MilestoneEvent{
				ms(orcase.MilestonePatientIn, at(2, 8, 0)),
				ms(orcase.MilestonePatientOut, at(2, 10, 0)),
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildCase(caseSpec{id: "c1", room: "room-a", surgeon: "s1", scheduled: at(2, 8, 0), events: tt.events})
			result := NonOperativeTime([]orcase.Case{c}, nil)

			if tt.expected == nil {
				if result.DisplayValue != NoDataDisplay {
					t.Errorf("display = %q, want %q", result.DisplayValue, NoDataDisplay)
				}
				return
			}
			if result.Value != *tt.expected {
				t.Errorf("non-operative = %v, want %v", result.Value, *tt.expected)
			}
		})
	}
}
