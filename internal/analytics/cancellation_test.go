package analytics

import (
	"testing"
	"time"

	"orflow/internal/orcase"
)

func TestCancellationRate(t *testing.T) {
	sameDay := at(2, 14, 0)
	nextDay := at(3, 9, 0)

	cancelledSameDay := buildCase(caseSpec{id: "c1", room: "room-a", surgeon: "s1", scheduled: at(2, 8, 0)})
	cancelledSameDay.Status = orcase.StatusCancelled
	cancelledSameDay.CancelledAt = &sameDay

	cancelledAhead := buildCase(caseSpec{id: "c2", room: "room-a", surgeon: "s1", scheduled: at(4, 8, 0)})
	cancelledAhead.Status = orcase.StatusCancelled
	cancelledAhead.CancelledAt = &nextDay

	performed := simpleCase("c3", "room-a", "s1", at(2, 10, 0), at(2, 11, 0))
	performed2 := simpleCase("c4", "room-a", "s1", at(3, 10, 0), at(3, 11, 0))

	result := CancellationRate([]orcase.Case{cancelledSameDay, cancelledAhead, performed, performed2}, nil)
	// 1 same-day cancellation over 4 cases.
	if result.Value != 25 {
		t.Errorf("rate = %v, want 25", result.Value)
	}
}

func TestSameDayUsesLocalCalendarDate(t *testing.T) {
	// 23:30 local on the scheduled day is same-day even though it is
	// already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	sched := time.Date(2026, 3, 2, 8, 0, 0, 0, loc)
	cancelled := time.Date(2026, 3, 2, 23, 30, 0, 0, loc)

	c := buildCase(caseSpec{id: "c1", room: "room-a", surgeon: "s1", scheduled: sched})
	c.Status = orcase.StatusCancelled
	c.CancelledAt = &cancelled

	if got := sameDayCancellations([]orcase.Case{c}); got != 1 {
		t.Errorf("sameDayCancellations = %d, want 1", got)
	}
}

func TestCancellationLowerIsBetter(t *testing.T) {
	day := at(2, 9, 0)
	mk := func(id string, cancelled bool) orcase.Case {
		c := simpleCase(id, "room-a", "s1", at(2, 10, 0), at(2, 11, 0))
		if cancelled {
			c.Status = orcase.StatusCancelled
			c.CancelledAt = &day
		}
		return c
	}

	current := []orcase.Case{mk("c1", false), mk("c2", false)}
	previous := []orcase.Case{mk("p1", true), mk("p2", false)}

	result := CancellationRate(current, previous)
	if result.Delta == nil || result.Delta.Direction != DirectionDown || !result.Delta.Improving {
		t.Errorf("delta = %+v, want improving drop", result.Delta)
	}
}
