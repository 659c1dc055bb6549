package analytics

import (
	"github.com/google/uuid"

	"orflow/internal/orcase"
)

// CaseFlag is one anomaly record, produced either by a configured rule
// (RuleID set) or by the heuristic detector (Label/Detail/Icon set).
type CaseFlag struct {
	ID         string  `json:"id"`
	CaseID     string  `json:"caseId"`
	FacilityID string  `json:"facilityId"`
	RuleID     *string `json:"ruleId,omitempty"`
	Metric     string  `json:"metric,omitempty"`
	Value      float64 `json:"value"`
	Threshold  float64 `json:"threshold"`
	Scope      string  `json:"scope,omitempty"`
	Severity   string  `json:"severity,omitempty"`
	Label      string  `json:"label,omitempty"`
	Detail     string  `json:"detail,omitempty"`
	Icon       string  `json:"icon,omitempty"`
}

// EvaluateRules interprets every evaluable rule against one case. A rule
// whose metric value, baseline, or threshold cannot be resolved is
// skipped silently; missing data is never treated as zero and never an
// error.
func EvaluateRules(c orcase.Case, rules []orcase.FlagRule, baselines BaselineTable, turnovers CaseTurnovers) []CaseFlag {
	m := BuildMilestoneMap(c)

	var flags []CaseFlag
	for _, rule := range rules {
		if !rule.Evaluable() {
			continue
		}

		value := ruleMetricValue(c, m, rule, baselines, turnovers)
		if value == nil {
			continue
		}

		if rule.ThresholdType == orcase.ThresholdBetween {
			if flag := evaluateBetween(c, rule, *value); flag != nil {
				flags = append(flags, *flag)
			}
			continue
		}

		threshold := resolveThreshold(rule, baselines.Lookup(rule.Scope, rule.Metric, c.SurgeonID, c.ProcedureID))
		if threshold == nil {
			continue
		}

		if compare(rule.Operator, *value, *threshold) {
			flags = append(flags, newRuleFlag(c, rule, *value, *threshold))
		}
	}
	return flags
}

// ruleMetricValue resolves the observed value for a rule, routing the
// three special metric categories through their per-case context.
func ruleMetricValue(c orcase.Case, m MilestoneMap, rule orcase.FlagRule, baselines BaselineTable, turnovers CaseTurnovers) *float64 {
	switch rule.Metric {
	case MetricTurnoverTime, MetricRoomIdleGap:
		return turnovers.Turnover(c.ID)
	case MetricFCOTSDelay:
		return fcotsDelayMinutes(c, m, turnovers)
	case MetricExcessTimeCost:
		return excessTimeCost(c, m, rule, baselines)
	}

	// An explicit milestone override on the rule beats the named table.
	if rule.StartMilestone != nil && rule.EndMilestone != nil {
		return DiffMinutes(m.At(*rule.StartMilestone), m.At(*rule.EndMilestone))
	}

	return MetricValue(c, m, rule.Metric)
}

// excessTimeCost is (actual total time - baseline median) priced at the
// case's hourly OR rate. Needs both a total-time baseline and per-case
// cost-rate data.
func excessTimeCost(c orcase.Case, m MilestoneMap, rule orcase.FlagRule, baselines BaselineTable) *float64 {
	if c.Completion == nil || c.Completion.HourlyORRate == nil {
		return nil
	}
	actual := MetricValue(c, m, MetricTotalCaseTime)
	if actual == nil || *actual <= 0 {
		return nil
	}
	baseline := baselines.Lookup(rule.Scope, MetricTotalCaseTime, c.SurgeonID, c.ProcedureID)
	if baseline == nil {
		return nil
	}
	return Float((*actual - baseline.Median) / 60 * *c.Completion.HourlyORRate)
}

// resolveThreshold turns a rule's threshold configuration into a
// concrete number, nil when unresolvable (no baseline, no retained
// percentile values). One arm per threshold kind.
func resolveThreshold(rule orcase.FlagRule, baseline *BaselineEntry) *float64 {
	lower := rule.Operator == orcase.OpLT || rule.Operator == orcase.OpLTE

	switch rule.ThresholdType {
	case orcase.ThresholdAbsolute:
		return Float(rule.ThresholdValue)

	case orcase.ThresholdMedianPlusSD:
		if baseline == nil {
			return nil
		}
		if lower {
			return Float(baseline.Median - rule.ThresholdValue*baseline.StdDev)
		}
		return Float(baseline.Median + rule.ThresholdValue*baseline.StdDev)

	case orcase.ThresholdPercentageOfMedian:
		if baseline == nil {
			return nil
		}
		if lower {
			return Float(baseline.Median * (1 - rule.ThresholdValue/100))
		}
		return Float(baseline.Median * (1 + rule.ThresholdValue/100))

	case orcase.ThresholdPercentile:
		if baseline == nil || len(baseline.Sorted) == 0 {
			return nil
		}
		return Float(Percentile(baseline.Sorted, rule.ThresholdValue))
	}

	return nil
}

// evaluateBetween is the special-cased range check: triggers when the
// value lies within [min, max] inclusive, ignoring the operator. A rule
// missing its max value is inapplicable, not an error.
func evaluateBetween(c orcase.Case, rule orcase.FlagRule, value float64) *CaseFlag {
	if rule.ThresholdValueMax == nil {
		return nil
	}
	if value < rule.ThresholdValue || value > *rule.ThresholdValueMax {
		return nil
	}
	flag := newRuleFlag(c, rule, value, *rule.ThresholdValueMax)
	return &flag
}

func compare(op string, value, threshold float64) bool {
	switch op {
	case orcase.OpGT:
		return value > threshold
	case orcase.OpGTE:
		return value >= threshold
	case orcase.OpLT:
		return value < threshold
	case orcase.OpLTE:
		return value <= threshold
	}
	return false
}

func newRuleFlag(c orcase.Case, rule orcase.FlagRule, value, threshold float64) CaseFlag {
	ruleID := rule.ID
	return CaseFlag{
		ID:         uuid.NewString(),
		CaseID:     c.ID,
		FacilityID: c.FacilityID,
		RuleID:     &ruleID,
		Metric:     rule.Metric,
		Value:      roundTo(value, 1),
		Threshold:  roundTo(threshold, 1),
		Scope:      rule.Scope,
		Severity:   rule.Severity,
	}
}

// RuleMetrics lists the distinct metrics the evaluable rules reference,
// the set the baseline builder actually needs.
func RuleMetrics(rules []orcase.FlagRule) (metrics []string, needsPercentile bool) {
	seen := make(map[string]bool)
	for _, rule := range rules {
		if !rule.Evaluable() {
			continue
		}
		if rule.ThresholdType == orcase.ThresholdPercentile {
			needsPercentile = true
		}
		if !seen[rule.Metric] {
			seen[rule.Metric] = true
			metrics = append(metrics, rule.Metric)
		}
		// Excess-cost rules lean on a total-time baseline.
		if rule.Metric == MetricExcessTimeCost && !seen[MetricTotalCaseTime] {
			seen[MetricTotalCaseTime] = true
			metrics = append(metrics, MetricTotalCaseTime)
		}
	}
	return metrics, needsPercentile
}
