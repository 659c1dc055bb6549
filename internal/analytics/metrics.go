package analytics

import (
	"orflow/internal/orcase"
)

// Named metrics understood by the baseline builder and rule evaluator.
const (
	MetricTotalCaseTime       = "total_case_time"
	MetricSurgicalTime        = "surgical_time"
	MetricPreOpTime           = "pre_op_time"
	MetricAnesthesiaTime      = "anesthesia_time"
	MetricClosingTime         = "closing_time"
	MetricEmergenceTime       = "emergence_time"
	MetricSurgeonReadinessGap = "surgeon_readiness_gap"

	// Cross-case metrics: resolved from the per-case turnover
	// precomputation, not from the named table.
	MetricTurnoverTime = "turnover_time"
	MetricRoomIdleGap  = "room_idle_gap"

	// First-in-room only.
	MetricFCOTSDelay = "fcots_delay"

	// Derived from a total-time baseline plus per-case cost rates.
	MetricExcessTimeCost = "excess_time_cost"

	// Financial metrics, read from the completion-stats record.
	MetricProfit                = "profit"
	MetricMargin                = "margin"
	MetricProfitPerMinute       = "profit_per_minute"
	MetricTotalCost             = "total_cost"
	MetricReimbursementVariance = "reimbursement_variance"

	// Data-quality metrics, structural.
	MetricMissingMilestones  = "missing_milestones"
	MetricSequenceViolations = "sequence_violations"
)

// milestonePairs maps timing metrics to their (start, end) milestones.
// Values are minutes.
var milestonePairs = map[string][2]string{
	MetricTotalCaseTime:       {orcase.MilestonePatientIn, orcase.MilestonePatientOut},
	MetricSurgicalTime:        {orcase.MilestoneIncision, orcase.MilestoneClosingComplete},
	MetricPreOpTime:           {orcase.MilestonePatientIn, orcase.MilestoneIncision},
	MetricAnesthesiaTime:      {orcase.MilestoneAnesStart, orcase.MilestoneAnesEnd},
	MetricClosingTime:         {orcase.MilestoneClosing, orcase.MilestoneClosingComplete},
	MetricEmergenceTime:       {orcase.MilestoneClosingComplete, orcase.MilestonePatientOut},
	MetricSurgeonReadinessGap: {orcase.MilestonePrepDrapeComplete, orcase.MilestoneIncision},
}

// zeroAllowedMetrics may legitimately contribute zero or negative values
// to baselines; everything else treats <=0 as a data artifact.
var zeroAllowedMetrics = map[string]bool{
	MetricProfit:                true,
	MetricMargin:                true,
	MetricProfitPerMinute:       true,
	MetricTotalCost:             true,
	MetricReimbursementVariance: true,
	MetricMissingMilestones:     true,
	MetricSequenceViolations:    true,
}

// coreMilestoneSequence is the canonical chronological order of the
// eight core events every completed case should record.
var coreMilestoneSequence = []string{
	orcase.MilestonePatientIn,
	orcase.MilestoneAnesStart,
	orcase.MilestonePrepDrapeComplete,
	orcase.MilestoneIncision,
	orcase.MilestoneClosing,
	orcase.MilestoneClosingComplete,
	orcase.MilestoneAnesEnd,
	orcase.MilestonePatientOut,
}

// MetricValue resolves a named metric for one case, nil when the inputs
// it needs are absent. Cross-case and derived metrics (turnover,
// fcots_delay, excess_time_cost) are not resolvable here; the evaluator
// handles them with per-case context.
func MetricValue(c orcase.Case, m MilestoneMap, metric string) *float64 {
	if pair, ok := milestonePairs[metric]; ok {
		return DiffMinutes(m.At(pair[0]), m.At(pair[1]))
	}

	switch metric {
	case MetricProfit:
		if c.Completion == nil {
			return nil
		}
		return c.Completion.Profit
	case MetricMargin:
		return marginPercent(c.Completion)
	case MetricProfitPerMinute:
		return profitPerMinute(c, m)
	case MetricTotalCost:
		return totalCost(c, m)
	case MetricReimbursementVariance:
		if c.Completion == nil || c.Completion.Reimbursement == nil || c.Completion.ExpectedReimbursement == nil {
			return nil
		}
		return Float(*c.Completion.Reimbursement - *c.Completion.ExpectedReimbursement)
	case MetricMissingMilestones:
		return Float(float64(missingCoreMilestones(m)))
	case MetricSequenceViolations:
		return Float(float64(sequenceViolations(m)))
	}

	return nil
}

func marginPercent(cs *orcase.CompletionStats) *float64 {
	if cs == nil || cs.Profit == nil || cs.Reimbursement == nil || *cs.Reimbursement == 0 {
		return nil
	}
	return Float(*cs.Profit / *cs.Reimbursement * 100)
}

func profitPerMinute(c orcase.Case, m MilestoneMap) *float64 {
	if c.Completion == nil || c.Completion.Profit == nil {
		return nil
	}
	total := DiffMinutes(m.At(orcase.MilestonePatientIn), m.At(orcase.MilestonePatientOut))
	if total == nil || *total <= 0 {
		return nil
	}
	return Float(*c.Completion.Profit / *total)
}

// totalCost is debits plus OR-time cost, tolerant of either component
// being absent. Nil only when the completion record itself is missing.
func totalCost(c orcase.Case, m MilestoneMap) *float64 {
	if c.Completion == nil {
		return nil
	}
	var cost float64
	if c.Completion.Debits != nil {
		cost += *c.Completion.Debits
	}
	if c.Completion.ORCostPerMinute != nil {
		if total := DiffMinutes(m.At(orcase.MilestonePatientIn), m.At(orcase.MilestonePatientOut)); total != nil && *total > 0 {
			cost += *total * *c.Completion.ORCostPerMinute
		}
	}
	return Float(cost)
}

func missingCoreMilestones(m MilestoneMap) int {
	missing := 0
	for _, name := range coreMilestoneSequence {
		if m.At(name) == nil {
			missing++
		}
	}
	return missing
}

// sequenceViolations counts adjacent present milestones, in canonical
// order, whose timestamps are out of chronological order.
func sequenceViolations(m MilestoneMap) int {
	violations := 0
	prevIdx := -1
	for i, name := range coreMilestoneSequence {
		if m.At(name) == nil {
			continue
		}
		if prevIdx >= 0 {
			prev := m.At(coreMilestoneSequence[prevIdx])
			cur := m.At(name)
			if cur.Before(*prev) {
				violations++
			}
		}
		prevIdx = i
	}
	return violations
}
