package analytics

import (
	"cmp"
	"slices"

	"orflow/internal/orcase"
)

// ColorLookup resolves a phase definition's color key to a display
// color. Injected so the engine stays free of presentation concerns.
type ColorLookup func(colorKey string) string

// PhaseSpan is one computed phase interval for a case. Parents carry
// their sub-phases in Children; OffsetSeconds is the sub-phase's start
// relative to its parent's start (0 for parents).
type PhaseSpan struct {
	PhaseID       string      `json:"phaseId"`
	Name          string      `json:"name"`
	Color         string      `json:"color"`
	Seconds       float64     `json:"seconds"`
	OffsetSeconds float64     `json:"offsetSeconds"`
	Children      []PhaseSpan `json:"children,omitempty"`
}

// ComputePhaseSpans evaluates every phase definition against one case's
// milestones. Phases missing either boundary milestone are omitted. A
// sub-phase is omitted whenever its parent has no duration; a sub-phase
// overrunning its parent keeps its offset and has its duration clamped
// to the parent's remaining window.
func ComputePhaseSpans(defs []orcase.PhaseDefinition, m MilestoneMap, colors ColorLookup) []PhaseSpan {
	if colors == nil {
		colors = func(key string) string { return key }
	}

	// Reconstruct parent -> children via a grouping pass over the flat
	// definition records.
	var parents []orcase.PhaseDefinition
	children := make(map[string][]orcase.PhaseDefinition)
	for _, def := range defs {
		if def.ParentPhaseID == nil {
			parents = append(parents, def)
			continue
		}
		children[*def.ParentPhaseID] = append(children[*def.ParentPhaseID], def)
	}

	slices.SortFunc(parents, func(a, b orcase.PhaseDefinition) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})

	var spans []PhaseSpan
	for _, parent := range parents {
		parentStart := m.At(parent.StartMilestone)
		parentDur := DiffSeconds(parentStart, m.At(parent.EndMilestone))
		if parentDur == nil {
			continue
		}

		span := PhaseSpan{
			PhaseID: parent.ID,
			Name:    parent.Name,
			Color:   colors(parent.ColorKey),
			Seconds: *parentDur,
		}

		subs := children[parent.ID]
		slices.SortFunc(subs, func(a, b orcase.PhaseDefinition) int {
			return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
		})

		for _, sub := range subs {
			subStart := m.At(sub.StartMilestone)
			subDur := DiffSeconds(subStart, m.At(sub.EndMilestone))
			if subDur == nil {
				continue
			}
			offset := DiffSeconds(parentStart, subStart)
			if offset == nil {
				continue
			}

			dur := *subDur
			// Clamp the duration, not the offset, when the sub-phase
			// overruns the parent window.
			if *offset+dur > *parentDur {
				dur = *parentDur - *offset
				if dur < 0 {
					dur = 0
				}
			}

			span.Children = append(span.Children, PhaseSpan{
				PhaseID:       sub.ID,
				Name:          sub.Name,
				Color:         colors(sub.ColorKey),
				Seconds:       dur,
				OffsetSeconds: *offset,
			})
		}

		spans = append(spans, span)
	}

	return spans
}

// PhaseDurations flattens ComputePhaseSpans into phaseID -> seconds,
// the shape the procedure-median and anomaly paths consume.
func PhaseDurations(defs []orcase.PhaseDefinition, m MilestoneMap) map[string]float64 {
	out := make(map[string]float64)
	for _, span := range ComputePhaseSpans(defs, m, nil) {
		out[span.PhaseID] = span.Seconds
		for _, child := range span.Children {
			out[child.PhaseID] = child.Seconds
		}
	}
	return out
}
