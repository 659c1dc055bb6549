package analytics

import (
	"slices"

	"orflow/internal/orcase"
)

// minBaselineSamples is the floor below which a bucket produces no
// entry. Absence, not a zero.
const minBaselineSamples = 3

// BaselineEntry is the statistical summary for one metric bucket.
// Sorted is only populated when a percentile-type rule needs it.
type BaselineEntry struct {
	Median float64   `json:"median"`
	StdDev float64   `json:"stdDev"`
	Count  int       `json:"count"`
	Sorted []float64 `json:"sorted,omitempty"`
}

// BaselineTable holds facility-wide and per-surgeon buckets. Keys:
// facility "metric" or "metric:procedureID"; personal
// "metric:surgeonID" or "metric:surgeonID:procedureID". Rebuilt from
// the current historical set every batch; never reused across batches.
type BaselineTable struct {
	Facility map[string]BaselineEntry
	Personal map[string]BaselineEntry
}

// Lookup resolves the most specific baseline for a rule's scope and
// falls back progressively: personal tries metric:surgeon:procedure
// then metric:surgeon; facility tries metric:procedure then metric.
func (t BaselineTable) Lookup(scope, metric, surgeonID, procedureID string) *BaselineEntry {
	if scope == orcase.ScopePersonal {
		if surgeonID == "" {
			return nil
		}
		if procedureID != "" {
			if e, ok := t.Personal[metric+":"+surgeonID+":"+procedureID]; ok {
				return &e
			}
		}
		if e, ok := t.Personal[metric+":"+surgeonID]; ok {
			return &e
		}
		return nil
	}

	if procedureID != "" {
		if e, ok := t.Facility[metric+":"+procedureID]; ok {
			return &e
		}
	}
	if e, ok := t.Facility[metric]; ok {
		return &e
	}
	return nil
}

// BuildBaselines aggregates the historical case set into per-metric
// buckets. Only the metrics actually referenced by active rules are
// requested, and sorted values are retained only when a percentile rule
// needs them, to avoid needless memory. Metrics outside the zero
// allowlist skip non-positive observations as artifacts.
func BuildBaselines(historical []orcase.Case, metrics []string, retainValues bool, turnovers CaseTurnovers) BaselineTable {
	facility := make(map[string][]*float64)
	personal := make(map[string][]*float64)

	for _, c := range performedCases(historical) {
		m := BuildMilestoneMap(c)
		for _, metric := range metrics {
			v := historicalMetricValue(c, m, metric, turnovers)
			if v == nil {
				continue
			}
			if *v <= 0 && !zeroAllowedMetrics[metric] {
				continue
			}

			facility[metric] = append(facility[metric], v)
			if c.ProcedureID != "" {
				facility[metric+":"+c.ProcedureID] = append(facility[metric+":"+c.ProcedureID], v)
			}
			if c.SurgeonID != "" {
				personal[metric+":"+c.SurgeonID] = append(personal[metric+":"+c.SurgeonID], v)
				if c.ProcedureID != "" {
					key := metric + ":" + c.SurgeonID + ":" + c.ProcedureID
					personal[key] = append(personal[key], v)
				}
			}
		}
	}

	return BaselineTable{
		Facility: summarizeBuckets(facility, retainValues),
		Personal: summarizeBuckets(personal, retainValues),
	}
}

// historicalMetricValue resolves a metric for baseline accumulation,
// routing cross-case metrics through the precomputed turnover context.
func historicalMetricValue(c orcase.Case, m MilestoneMap, metric string, turnovers CaseTurnovers) *float64 {
	switch metric {
	case MetricTurnoverTime, MetricRoomIdleGap:
		return turnovers.Turnover(c.ID)
	case MetricFCOTSDelay:
		return fcotsDelayMinutes(c, m, turnovers)
	case MetricExcessTimeCost:
		// Derived per-case at evaluation time; it has no baseline of
		// its own.
		return nil
	}
	return MetricValue(c, m, metric)
}

func summarizeBuckets(buckets map[string][]*float64, retainValues bool) map[string]BaselineEntry {
	out := make(map[string]BaselineEntry, len(buckets))
	for key, values := range buckets {
		vals := valid(values)
		if len(vals) < minBaselineSamples {
			continue
		}

		entry := BaselineEntry{
			Median: *Median(values),
			StdDev: *StdDev(values),
			Count:  len(vals),
		}
		if retainValues {
			sorted := make([]float64, len(vals))
			copy(sorted, vals)
			slices.Sort(sorted)
			entry.Sorted = sorted
		}
		out[key] = entry
	}
	return out
}
