package analytics

import (
	"fmt"
	"math"
	"slices"
	"time"

	"orflow/internal/orcase"
)

// WeekBucket is one calendar week of case volume for trend sparklines.
// Weeks start on Sunday.
type WeekBucket struct {
	WeekStarting time.Time `json:"weekStarting"`
	Cases        int       `json:"cases"`
}

// CaseVolume counts cases and buckets them into calendar weeks. Delta is
// the period-over-period percentage change.
func CaseVolume(cases, previous []orcase.Case) (KPIResult, []WeekBucket) {
	counted := countedCases(cases)
	if len(counted) == 0 {
		return noData("No cases in period"), nil
	}

	result := KPIResult{
		Value:        float64(len(counted)),
		DisplayValue: fmt.Sprintf("%d", len(counted)),
		Subtitle:     "Cases in period",
	}

	if prevCount := len(countedCases(previous)); prevCount > 0 {
		pctChange := (float64(len(counted)) - float64(prevCount)) / float64(prevCount) * 100
		result.Delta = deltaVs(pctChange, Float(0), false)
		result.Delta.Value = roundTo(math.Abs(pctChange), 1)
	}

	return result, weeklyBuckets(counted)
}

// weeklyBuckets aggregates cases per calendar week, Sunday-anchored,
// sorted chronologically.
func weeklyBuckets(cases []orcase.Case) []WeekBucket {
	weeks := make(map[time.Time]int)

	// Normalize to the start of the week (Sunday).
	normalize := func(t time.Time) time.Time {
		offset := int(t.Weekday())
		return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
	}

	for _, c := range cases {
		weeks[normalize(c.ScheduledStart)]++
	}

	var results []WeekBucket
	for week, count := range weeks {
		results = append(results, WeekBucket{WeekStarting: week, Cases: count})
	}

	slices.SortFunc(results, func(a, b WeekBucket) int {
		return a.WeekStarting.Compare(b.WeekStarting)
	})

	return results
}
