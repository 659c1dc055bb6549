package analytics

import (
	"context"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"orflow/internal/orcase"
)

// DashboardKPIs bundles every calculator's output for one batch.
type DashboardKPIs struct {
	FirstCaseOnTime KPIResult         `json:"firstCaseOnTime"`
	Turnover        KPIResult         `json:"turnover"`
	FlipTurnover    KPIResult         `json:"flipTurnover"`
	FlipDetails     []FlipDetail      `json:"flipDetails,omitempty"`
	Utilization     KPIResult         `json:"utilization"`
	Rooms           []RoomUtilization `json:"rooms,omitempty"`
	Volume          KPIResult         `json:"volume"`
	Weeks           []WeekBucket      `json:"weeks,omitempty"`
	Cancellations   KPIResult         `json:"cancellations"`
	Tardiness       KPIResult         `json:"tardiness"`
	NonOperative    KPIResult         `json:"nonOperative"`
	Idle            IdleResult        `json:"idle"`
}

// BatchResult is the full output of one analytics pass.
type BatchResult struct {
	KPIs  DashboardKPIs `json:"kpis"`
	Flags []CaseFlag    `json:"flags,omitempty"`
}

// ComputeDashboard runs every KPI calculator over the batch.
func ComputeDashboard(b orcase.Batch) DashboardKPIs {
	s := b.Settings.Normalized()

	d := DashboardKPIs{
		FirstCaseOnTime: FirstCaseOnTimeStarts(b.Cases, b.PreviousCases, s),
		Turnover:        SameRoomTurnovers(b.Cases, b.PreviousCases, s),
		Cancellations:   CancellationRate(b.Cases, b.PreviousCases),
		Tardiness:       CumulativeTardiness(b.Cases, b.PreviousCases),
		NonOperative:    NonOperativeTime(b.Cases, b.PreviousCases),
		Idle:            SurgeonIdleTime(b.Cases, b.PreviousCases, b.SurgeonIndex(), s),
	}
	d.FlipTurnover, d.FlipDetails = FlipRoomTurnovers(b.Cases, b.PreviousCases, s)
	d.Utilization, d.Rooms = ORUtilization(b.Cases, b.PreviousCases, b.RoomHours, s)
	d.Volume, d.Weeks = CaseVolume(b.Cases, b.PreviousCases)
	return d
}

// EvaluateBatch is the two-phase pipeline. Phase 1 builds the immutable
// baseline snapshot (rule baselines, procedure medians, cross-case
// turnover context) from the historical set and must complete before
// phase 2 starts. Phase 2 evaluates each case against that snapshot;
// per-case evaluations are independent, so they fan out over a bounded
// worker group. workers <= 0 means one worker per CPU.
func EvaluateBatch(ctx context.Context, b orcase.Batch, workers int) (*BatchResult, error) {
	s := b.Settings.Normalized()

	// Phase 1: snapshot.
	metrics, needsPercentile := RuleMetrics(b.Rules)
	historicalTurnovers := ComputeCaseTurnovers(b.HistoricalCases, s)
	baselines := BuildBaselines(b.HistoricalCases, metrics, needsPercentile, historicalTurnovers)
	medians := BuildProcedureMedians(b.HistoricalCases, b.Phases)
	turnovers := ComputeCaseTurnovers(b.Cases, s)

	log.Debug().
		Int("facilityBuckets", len(baselines.Facility)).
		Int("personalBuckets", len(baselines.Personal)).
		Int("procedureMedians", len(medians)).
		Bool("percentileValuesRetained", needsPercentile).
		Msg("Baseline snapshot built")

	days := groupBy(b.Cases, byDay)

	// Phase 2: independent per-case evaluation against the snapshot.
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	perCase := make([][]CaseFlag, len(b.Cases))
	for i := range b.Cases {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := b.Cases[i]
			if c.ExcludeFromMetrics || c.Status == orcase.StatusCancelled {
				return nil
			}
			flags := EvaluateRules(c, b.Rules, baselines, turnovers)
			flags = append(flags, DetectCaseAnomalies(c, days[c.Day()], medians, b.Phases, s)...)
			perCase[i] = flags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flags []CaseFlag
	for _, f := range perCase {
		flags = append(flags, f...)
	}

	log.Info().
		Int("cases", len(b.Cases)).
		Int("flags", len(flags)).
		Msg("Batch evaluated")

	return &BatchResult{
		KPIs:  ComputeDashboard(b),
		Flags: flags,
	}, nil
}
