package analytics

import (
	"time"

	"orflow/internal/orcase"
)

// knownMilestones is the closed set of event names the engine understands.
// Anything else in a raw milestone list is ignored.
var knownMilestones = map[string]bool{
	orcase.MilestonePatientIn:         true,
	orcase.MilestoneAnesStart:         true,
	orcase.MilestoneAnesEnd:           true,
	orcase.MilestonePrepDrapeComplete: true,
	orcase.MilestoneIncision:          true,
	orcase.MilestoneClosing:           true,
	orcase.MilestoneClosingComplete:   true,
	orcase.MilestoneSurgeonLeft:       true,
	orcase.MilestonePatientOut:        true,
	orcase.MilestoneRoomCleaned:       true,
}

// MilestoneMap is a name -> timestamp lookup built fresh per case per
// calculation call. Never persisted.
type MilestoneMap map[string]time.Time

// At returns the timestamp for a milestone name, or nil when absent.
func (m MilestoneMap) At(name string) *time.Time {
	if t, ok := m[name]; ok {
		return &t
	}
	return nil
}

// BuildMilestoneMap converts a case's raw milestone list into a typed
// lookup. A recorded surgeon_left event wins over the case-level
// SurgeonLeftOR column; the column is only a fallback.
func BuildMilestoneMap(c orcase.Case) MilestoneMap {
	m := make(MilestoneMap, len(c.Milestones))
	for _, ev := range c.Milestones {
		if !knownMilestones[ev.Name] {
			continue
		}
		m[ev.Name] = ev.RecordedAt
	}

	if _, ok := m[orcase.MilestoneSurgeonLeft]; !ok && c.SurgeonLeftOR != nil {
		m[orcase.MilestoneSurgeonLeft] = *c.SurgeonLeftOR
	}

	return m
}
