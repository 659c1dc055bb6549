package analytics

import (
	"fmt"
	"math"
)

// NoDataDisplay is the display value every calculator reports when it
// has zero qualifying samples.
const NoDataDisplay = "--"

// Delta directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// Day tracker colors.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorRed    = "red"
)

// Delta is a period-over-period change: magnitude plus direction.
// Improving reflects whether the move is good, which depends on whether
// lower is better for the metric.
type Delta struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"`
	Improving bool    `json:"improving"`
}

// DayPoint is one per-day tracker cell for dashboard strips.
type DayPoint struct {
	Date    string `json:"date"`
	Color   string `json:"color"`
	Tooltip string `json:"tooltip"`
}

// KPIResult is the pure output value object every calculator returns.
// Never mutated after construction.
type KPIResult struct {
	Value        float64    `json:"value"`
	DisplayValue string     `json:"displayValue"`
	Subtitle     string     `json:"subtitle,omitempty"`
	Target       *float64   `json:"target,omitempty"`
	TargetMet    *bool      `json:"targetMet,omitempty"`
	Delta        *Delta     `json:"delta,omitempty"`
	Days         []DayPoint `json:"days,omitempty"`
}

// noData builds the well-formed empty result: '--' display, no daily data.
func noData(subtitle string) KPIResult {
	return KPIResult{DisplayValue: NoDataDisplay, Subtitle: subtitle}
}

// deltaVs compares current against a previous-period value. A nil
// previous yields no delta.
func deltaVs(current float64, previous *float64, lowerIsBetter bool) *Delta {
	if previous == nil {
		return nil
	}
	diff := current - *previous
	d := &Delta{Value: roundTo(math.Abs(diff), 1)}
	switch {
	case diff > 0:
		d.Direction = DirectionUp
		d.Improving = !lowerIsBetter
	case diff < 0:
		d.Direction = DirectionDown
		d.Improving = lowerIsBetter
	default:
		d.Direction = DirectionFlat
		d.Improving = true
	}
	return d
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", math.Round(v))
}

func formatMinutes(v float64) string {
	return fmt.Sprintf("%.0f min", math.Round(v))
}

func boolPtr(b bool) *bool {
	return &b
}
