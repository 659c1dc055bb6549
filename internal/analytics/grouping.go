package analytics

import (
	"slices"
	"time"

	"orflow/internal/orcase"
)

// performedCases filters to cases that can contribute milestone-based
// metrics: not excluded from metrics and not cancelled.
func performedCases(cases []orcase.Case) []orcase.Case {
	out := make([]orcase.Case, 0, len(cases))
	for _, c := range cases {
		if c.ExcludeFromMetrics || c.Status == orcase.StatusCancelled {
			continue
		}
		out = append(out, c)
	}
	return out
}

// countedCases filters only the excluded-from-metrics flag; cancelled
// cases still count for volume and cancellation rate.
func countedCases(cases []orcase.Case) []orcase.Case {
	out := make([]orcase.Case, 0, len(cases))
	for _, c := range cases {
		if c.ExcludeFromMetrics {
			continue
		}
		out = append(out, c)
	}
	return out
}

// groupBy partitions cases by an arbitrary key without mutating input.
func groupBy(cases []orcase.Case, key func(orcase.Case) string) map[string][]orcase.Case {
	groups := make(map[string][]orcase.Case)
	for _, c := range cases {
		groups[key(c)] = append(groups[key(c)], c)
	}
	return groups
}

func byDay(c orcase.Case) string     { return c.Day() }
func byDayRoom(c orcase.Case) string { return c.Day() + "|" + c.RoomID }

func byDaySurgeon(c orcase.Case) string {
	return c.Day() + "|" + c.SurgeonID
}

// actualStart is the case's observed start for chronological ordering:
// patient_in when recorded, scheduled start otherwise.
func actualStart(c orcase.Case) time.Time {
	m := BuildMilestoneMap(c)
	if t := m.At(orcase.MilestonePatientIn); t != nil {
		return *t
	}
	return c.ScheduledStart
}

// sortChronological orders a copy of the group by observed start time.
func sortChronological(cases []orcase.Case) []orcase.Case {
	sorted := make([]orcase.Case, len(cases))
	copy(sorted, cases)
	slices.SortFunc(sorted, func(a, b orcase.Case) int {
		return actualStart(a).Compare(actualStart(b))
	})
	return sorted
}

// sortByScheduled orders a copy of the group by scheduled start time.
func sortByScheduled(cases []orcase.Case) []orcase.Case {
	sorted := make([]orcase.Case, len(cases))
	copy(sorted, cases)
	slices.SortFunc(sorted, func(a, b orcase.Case) int {
		return a.ScheduledStart.Compare(b.ScheduledStart)
	})
	return sorted
}

// sortedKeys returns group keys in ascending order for deterministic output.
func sortedKeys[V any](groups map[string]V) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
