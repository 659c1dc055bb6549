package orcase

import "time"

// Milestone names recorded against a case. A case carries at most one
// timestamp per name; any subset may be absent.
const (
	MilestonePatientIn         = "patient_in"
	MilestoneAnesStart         = "anes_start"
	MilestoneAnesEnd           = "anes_end"
	MilestonePrepDrapeComplete = "prep_drape_complete"
	MilestoneIncision          = "incision"
	MilestoneClosing           = "closing"
	MilestoneClosingComplete   = "closing_complete"
	MilestoneSurgeonLeft       = "surgeon_left"
	MilestonePatientOut        = "patient_out"
	MilestoneRoomCleaned       = "room_cleaned"
)

// Case statuses as delivered by the scheduling system.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// MilestoneEvent is one raw (name, timestamp) pair recorded during a case.
type MilestoneEvent struct {
	Name       string    `json:"name"`
	RecordedAt time.Time `json:"recordedAt"`
}

// CompletionStats carries the per-case financial record captured after
// case completion. All fields are optional; absent means "not captured",
// never zero.
type CompletionStats struct {
	Profit                *float64 `json:"profit,omitempty"`
	Reimbursement         *float64 `json:"reimbursement,omitempty"`
	ExpectedReimbursement *float64 `json:"expectedReimbursement,omitempty"`
	Debits                *float64 `json:"debits,omitempty"`
	ORCostPerMinute       *float64 `json:"orCostPerMinute,omitempty"`
	HourlyORRate          *float64 `json:"hourlyOrRate,omitempty"`
}

// Case is one surgical case as fetched by the upstream persistence layer.
// Immutable for the duration of an analytics pass.
type Case struct {
	ID                 string     `json:"id"`
	FacilityID         string     `json:"facilityId"`
	CaseNumber         string     `json:"caseNumber"`
	ScheduledStart     time.Time  `json:"scheduledStart"`
	RoomID             string     `json:"roomId"`
	RoomName           string     `json:"roomName"`
	SurgeonID          string     `json:"surgeonId"`
	ProcedureID        string     `json:"procedureId"`
	ProcedureName      string     `json:"procedureName"`
	Status             string     `json:"status"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	ExcludeFromMetrics bool       `json:"excludeFromMetrics"`

	// SurgeonLeftOR is the case-level override column; a recorded
	// surgeon_left milestone takes precedence over it.
	SurgeonLeftOR *time.Time `json:"surgeonLeftOr,omitempty"`

	Milestones []MilestoneEvent `json:"milestones,omitempty"`
	Completion *CompletionStats `json:"completion,omitempty"`
}

// Day returns the case's local calendar date key (YYYY-MM-DD), derived
// from the scheduled start.
func (c Case) Day() string {
	return c.ScheduledStart.Format("2006-01-02")
}

// PhaseDefinition describes a named interval between two milestones.
// Parent phases have a nil ParentPhaseID; sub-phases reference their
// parent by id (flat records, never embedded child lists).
type PhaseDefinition struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DisplayOrder   int     `json:"displayOrder"`
	ColorKey       string  `json:"colorKey"`
	ParentPhaseID  *string `json:"parentPhaseId,omitempty"`
	StartMilestone string  `json:"startMilestone"`
	EndMilestone   string  `json:"endMilestone"`
}

// Flag rule operators.
const (
	OpGT  = "gt"
	OpGTE = "gte"
	OpLT  = "lt"
	OpLTE = "lte"
)

// Flag rule threshold types.
const (
	ThresholdAbsolute           = "absolute"
	ThresholdMedianPlusSD       = "median_plus_sd"
	ThresholdPercentageOfMedian = "percentage_of_median"
	ThresholdPercentile         = "percentile"
	ThresholdBetween            = "between"
)

// Flag rule comparison scopes.
const (
	ScopeFacility = "facility"
	ScopePersonal = "personal"
)

// FlagRule is one per-facility anomaly rule, created and edited
// externally and consumed read-only by the evaluator.
type FlagRule struct {
	ID                string     `json:"id"`
	FacilityID        string     `json:"facilityId"`
	Metric            string     `json:"metric"`
	StartMilestone    *string    `json:"startMilestone,omitempty"`
	EndMilestone      *string    `json:"endMilestone,omitempty"`
	Operator          string     `json:"operator"`
	ThresholdType     string     `json:"thresholdType"`
	ThresholdValue    float64    `json:"thresholdValue"`
	ThresholdValueMax *float64   `json:"thresholdValueMax,omitempty"`
	Scope             string     `json:"scope"`
	Severity          string     `json:"severity"`
	Enabled           bool       `json:"enabled"`
	Active            bool       `json:"active"`
	IsBuiltIn         bool       `json:"isBuiltIn"`
	DeletedAt         *time.Time `json:"deletedAt,omitempty"`
}

// Evaluable reports whether the evaluator should consider this rule at all.
func (r FlagRule) Evaluable() bool {
	return r.Enabled && r.Active && r.DeletedAt == nil
}

// Closing workflows for surgeon profiles.
const (
	CloseWorkflowSelf      = "self_close"
	CloseWorkflowAssistant = "assistant_close"
)

// Surgeon is the slice of the surgeon profile the engine needs: how the
// surgeon's cases end (self close vs. assistant handoff).
type Surgeon struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	CloseWorkflow  string   `json:"closeWorkflow"`
	HandoffMinutes *float64 `json:"handoffMinutes,omitempty"`
}

// RoomHours maps a room id to its configured available hours per day.
// Rooms absent from the map fall back to the facility default.
type RoomHours map[string]float64

// Batch binds everything one analytics pass consumes: the cases under
// evaluation, the historical set baselines are built from, the optional
// previous period for deltas, and the facility configuration records.
type Batch struct {
	Cases           []Case            `json:"cases"`
	HistoricalCases []Case            `json:"historicalCases,omitempty"`
	PreviousCases   []Case            `json:"previousCases,omitempty"`
	Rules           []FlagRule        `json:"rules,omitempty"`
	Phases          []PhaseDefinition `json:"phases,omitempty"`
	Surgeons        []Surgeon         `json:"surgeons,omitempty"`
	RoomHours       RoomHours         `json:"roomHours,omitempty"`
	Settings        Settings          `json:"settings"`
}

// SurgeonIndex returns surgeons keyed by id.
func (b Batch) SurgeonIndex() map[string]Surgeon {
	idx := make(map[string]Surgeon, len(b.Surgeons))
	for _, s := range b.Surgeons {
		idx[s.ID] = s
	}
	return idx
}
