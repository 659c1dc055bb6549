package analytics

import (
	"fmt"

	"orflow/internal/orcase"
)

// FlipDetail is one cross-room transition retained for drill-down.
type FlipDetail struct {
	Date            string  `json:"date"`
	SurgeonID       string  `json:"surgeonId"`
	RoomName        string  `json:"roomName"`
	PredecessorCase string  `json:"predecessorCase"`
	FlipCase        string  `json:"flipCase"`
	Minutes         float64 `json:"minutes"`
}

// FlipRoomTurnovers computes cross-room ("flip") turnover. Two
// independent projections are built from the same immutable case slice:
// each surgeon's chronological day timeline, and each room's
// chronological day timeline. A flip is a room change between
// consecutive cases in the surgeon timeline; its turnover is measured
// against the destination room's own previous occupant, which may
// belong to a different surgeon entirely. The aggregate is the median
// of qualifying flips, which resists the odd catastrophic gap.
func FlipRoomTurnovers(cases, previous []orcase.Case, s orcase.Settings) (KPIResult, []FlipDetail) {
	flips := collectFlips(cases, s)
	if len(flips) == 0 {
		return noData("No flip turnovers in period"), nil
	}

	minutes := make([]*float64, len(flips))
	for i := range flips {
		minutes[i] = Float(flips[i].Minutes)
	}
	med := *Median(minutes)

	result := KPIResult{
		Value:        roundTo(med, 1),
		DisplayValue: formatMinutes(med),
		Subtitle:     fmt.Sprintf("Median of %d flips", len(flips)),
	}

	if prev := collectFlips(previous, s); len(prev) > 0 {
		prevMinutes := make([]*float64, len(prev))
		for i := range prev {
			prevMinutes[i] = Float(prev[i].Minutes)
		}
		result.Delta = deltaVs(med, Median(prevMinutes), true)
	}

	return result, flips
}

func collectFlips(cases []orcase.Case, s orcase.Settings) []FlipDetail {
	var flips []FlipDetail
	days := groupBy(performedCases(cases), byDay)
	for _, day := range sortedKeys(days) {
		flips = append(flips, collectDayFlips(days[day], s)...)
	}
	return flips
}

// collectDayFlips walks one day's surgeon timelines against the room
// timelines of the same day.
func collectDayFlips(dayCases []orcase.Case, s orcase.Settings) []FlipDetail {
	roomTimelines := make(map[string][]orcase.Case)
	for room, group := range groupBy(dayCases, func(c orcase.Case) string { return c.RoomID }) {
		roomTimelines[room] = sortChronological(group)
	}

	var flips []FlipDetail
	surgeons := groupBy(dayCases, func(c orcase.Case) string { return c.SurgeonID })
	for _, surgeonID := range sortedKeys(surgeons) {
		timeline := sortChronological(surgeons[surgeonID])
		for i := 1; i < len(timeline); i++ {
			flipCase := timeline[i]
			if timeline[i-1].RoomID == flipCase.RoomID {
				// Same-room consecutive cases are never a flip.
				continue
			}

			pred := roomPredecessor(roomTimelines[flipCase.RoomID], flipCase.ID)
			if pred == nil {
				// First case ever in the destination room that day.
				continue
			}

			gap := DiffMinutes(
				BuildMilestoneMap(*pred).At(orcase.MilestonePatientOut),
				BuildMilestoneMap(flipCase).At(orcase.MilestonePatientIn),
			)
			if gap == nil || *gap <= 0 || *gap >= s.TurnoverArtifactCeilingMinutes {
				continue
			}

			flips = append(flips, FlipDetail{
				Date:            flipCase.Day(),
				SurgeonID:       surgeonID,
				RoomName:        flipCase.RoomName,
				PredecessorCase: pred.CaseNumber,
				FlipCase:        flipCase.CaseNumber,
				Minutes:         roundTo(*gap, 1),
			})
		}
	}
	return flips
}

// roomPredecessor finds the case immediately preceding caseID in the
// room's chronological timeline, nil when caseID opens the room.
func roomPredecessor(timeline []orcase.Case, caseID string) *orcase.Case {
	for i, c := range timeline {
		if c.ID == caseID {
			if i == 0 {
				return nil
			}
			return &timeline[i-1]
		}
	}
	return nil
}
