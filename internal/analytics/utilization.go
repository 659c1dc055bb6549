package analytics

import (
	"fmt"

	"orflow/internal/orcase"
)

// RoomUtilization is the per-room drill-down behind the utilization KPI.
type RoomUtilization struct {
	RoomID           string  `json:"roomId"`
	RoomName         string  `json:"roomName"`
	Percent          float64 `json:"percent"`
	UsedDefaultHours bool    `json:"usedDefaultHours"`
}

// ORUtilization measures patient-in-room minutes against each room's
// configured available hours (facility default when unconfigured).
// Daily percentages are capped to absorb bad data, averaged across days
// per room, then across rooms for the headline figure.
func ORUtilization(cases, previous []orcase.Case, hours orcase.RoomHours, s orcase.Settings) (KPIResult, []RoomUtilization) {
	overall, rooms, configured := utilizationByRoom(cases, hours, s)
	if overall == nil {
		return noData("No utilization data in period"), nil
	}

	result := KPIResult{
		Value:        roundTo(*overall, 1),
		DisplayValue: formatPercent(*overall),
		Subtitle: fmt.Sprintf("%d rooms (%d with configured hours)",
			len(rooms), configured),
	}

	if prev, _, _ := utilizationByRoom(previous, hours, s); prev != nil {
		result.Delta = deltaVs(*overall, prev, false)
	}

	return result, rooms
}

func utilizationByRoom(cases []orcase.Case, hours orcase.RoomHours, s orcase.Settings) (*float64, []RoomUtilization, int) {
	perRoomDays := make(map[string][]*float64)
	roomNames := make(map[string]string)
	defaulted := make(map[string]bool)

	groups := groupBy(performedCases(cases), byDayRoom)
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		roomID := group[0].RoomID
		roomNames[roomID] = group[0].RoomName

		var used float64
		counted := 0
		for _, c := range group {
			m := BuildMilestoneMap(c)
			if mins := DiffMinutes(m.At(orcase.MilestonePatientIn), m.At(orcase.MilestonePatientOut)); mins != nil && *mins > 0 {
				used += *mins
				counted++
			}
		}
		if counted == 0 {
			continue
		}

		available, ok := hours[roomID]
		if !ok || available <= 0 {
			available = s.DefaultRoomHours
			defaulted[roomID] = true
		}

		pct := used / (available * 60) * 100
		if pct > s.UtilizationCapPercent {
			pct = s.UtilizationCapPercent
		}
		perRoomDays[roomID] = append(perRoomDays[roomID], Float(pct))
	}

	if len(perRoomDays) == 0 {
		return nil, nil, 0
	}

	var rooms []RoomUtilization
	var roomAverages []*float64
	for _, roomID := range sortedKeys(perRoomDays) {
		avg := *Average(perRoomDays[roomID])
		rooms = append(rooms, RoomUtilization{
			RoomID:           roomID,
			RoomName:         roomNames[roomID],
			Percent:          roundTo(avg, 1),
			UsedDefaultHours: defaulted[roomID],
		})
		roomAverages = append(roomAverages, Float(avg))
	}

	return Average(roomAverages), rooms, len(rooms) - len(defaulted)
}
