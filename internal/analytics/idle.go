package analytics

import (
	"fmt"
	"time"

	"orflow/internal/orcase"
)

// Idle gap transition types.
const (
	GapFlip     = "flip"
	GapSameRoom = "same_room"
)

// IdleGap is one measured gap in a surgeon's day, with the suggested
// call-ahead time (idle minus a buffer, floored at zero).
type IdleGap struct {
	SurgeonID          string  `json:"surgeonId"`
	Date               string  `json:"date"`
	FromCase           string  `json:"fromCase"`
	ToCase             string  `json:"toCase"`
	Type               string  `json:"type"`
	Minutes            float64 `json:"minutes"`
	OptimalCallMinutes float64 `json:"optimalCallMinutes"`
}

// IdleResult carries the three idle KPIs plus per-gap detail.
type IdleResult struct {
	Combined KPIResult `json:"combined"`
	Flip     KPIResult `json:"flip"`
	SameRoom KPIResult `json:"sameRoom"`
	Gaps     []IdleGap `json:"gaps,omitempty"`
}

// SurgeonIdleTime walks every surgeon-day with at least two cases and
// measures the gap between being done with one case and starting the
// next. "Done" resolves through a priority chain: an explicit
// surgeon-departed timestamp wins; otherwise the surgeon's close
// workflow decides (self-close uses closing_complete, assistant-close
// uses closing start plus the configured handoff). The "next start"
// reference depends on the transition: patient_in for a room switch,
// incision (falling back to patient_in) when staying in the same room.
func SurgeonIdleTime(cases, previous []orcase.Case, surgeons map[string]orcase.Surgeon, s orcase.Settings) IdleResult {
	gaps := collectIdleGaps(cases, surgeons, s)
	if len(gaps) == 0 {
		return IdleResult{
			Combined: noData("No surgeon idle gaps in period"),
			Flip:     noData("No flip gaps in period"),
			SameRoom: noData("No same-room gaps in period"),
		}
	}

	all, flip, same := splitGapMinutes(gaps)
	prevAll, prevFlip, prevSame := splitGapMinutes(collectIdleGaps(previous, surgeons, s))

	result := IdleResult{
		Combined: idleKPI(all, prevAll, "All transitions", nil),
		Flip:     idleKPI(flip, prevFlip, "Room-switch transitions", Float(s.IdleFlipTargetMinutes)),
		SameRoom: idleKPI(same, prevSame, "Same-room transitions", nil),
		Gaps:     gaps,
	}
	return result
}

func splitGapMinutes(gaps []IdleGap) (all, flip, same []*float64) {
	for _, g := range gaps {
		all = append(all, Float(g.Minutes))
		if g.Type == GapFlip {
			flip = append(flip, Float(g.Minutes))
		} else {
			same = append(same, Float(g.Minutes))
		}
	}
	return all, flip, same
}

func idleKPI(values, previous []*float64, subtitle string, target *float64) KPIResult {
	if len(values) == 0 {
		return noData(subtitle)
	}
	avg := *Average(values)
	r := KPIResult{
		Value:        roundTo(avg, 1),
		DisplayValue: formatMinutes(avg),
		Subtitle:     fmt.Sprintf("%s (%d gaps)", subtitle, len(values)),
		Target:       target,
	}
	if target != nil {
		r.TargetMet = boolPtr(avg <= *target)
	}
	if prev := Average(previous); prev != nil {
		r.Delta = deltaVs(avg, prev, true)
	}
	return r
}

func collectIdleGaps(cases []orcase.Case, surgeons map[string]orcase.Surgeon, s orcase.Settings) []IdleGap {
	var gaps []IdleGap
	groups := groupBy(performedCases(cases), byDaySurgeon)
	for _, key := range sortedKeys(groups) {
		timeline := sortChronological(groups[key])
		if len(timeline) < 2 {
			continue
		}

		for i := 1; i < len(timeline); i++ {
			prev, next := timeline[i-1], timeline[i]

			done := surgeonDoneTime(prev, surgeons, s)
			if done == nil {
				continue
			}

			sameRoom := prev.RoomID == next.RoomID
			nextStart := nextStartTime(next, sameRoom)
			idle := DiffMinutes(done, nextStart)
			if idle == nil || *idle <= 0 {
				continue
			}

			gapType := GapFlip
			buffer := s.IdleFlipBufferMinutes
			if sameRoom {
				gapType = GapSameRoom
				buffer = s.IdleSameRoomBufferMinutes
			}

			call := *idle - buffer
			if call < 0 {
				call = 0
			}

			gaps = append(gaps, IdleGap{
				SurgeonID:          prev.SurgeonID,
				Date:               prev.Day(),
				FromCase:           prev.CaseNumber,
				ToCase:             next.CaseNumber,
				Type:               gapType,
				Minutes:            roundTo(*idle, 1),
				OptimalCallMinutes: roundTo(call, 1),
			})
		}
	}
	return gaps
}

// surgeonDoneTime resolves when the surgeon was done with a case.
func surgeonDoneTime(c orcase.Case, surgeons map[string]orcase.Surgeon, s orcase.Settings) *time.Time {
	m := BuildMilestoneMap(c)

	// Explicit departure always wins (milestone or case-level override,
	// already merged by the normalizer).
	if left := m.At(orcase.MilestoneSurgeonLeft); left != nil {
		return left
	}

	profile, ok := surgeons[c.SurgeonID]
	if ok && profile.CloseWorkflow == orcase.CloseWorkflowAssistant {
		closing := m.At(orcase.MilestoneClosing)
		if closing == nil {
			return nil
		}
		handoff := s.AssistantHandoffMinutes
		if profile.HandoffMinutes != nil {
			handoff = *profile.HandoffMinutes
		}
		t := closing.Add(time.Duration(handoff * float64(time.Minute)))
		return &t
	}

	// Full self-close workflow.
	if done := m.At(orcase.MilestoneClosingComplete); done != nil {
		return done
	}
	return m.At(orcase.MilestoneClosing)
}

func nextStartTime(c orcase.Case, sameRoom bool) *time.Time {
	m := BuildMilestoneMap(c)
	if !sameRoom {
		return m.At(orcase.MilestonePatientIn)
	}
	if t := m.At(orcase.MilestoneIncision); t != nil {
		return t
	}
	return m.At(orcase.MilestonePatientIn)
}
