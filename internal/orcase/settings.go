package orcase

import "encoding/json"

// Settings is the facility analytics configuration. Every threshold the
// calculators and detectors use lives here; calculators never embed a
// magic number. Fields left out of a facility's JSON record take the
// documented defaults at decode time; an explicit zero (a strict
// facility zeroing out its FCOTS grace, say) is kept as written.
type Settings struct {
	// First-case on-time starts.
	FCOTSGraceMinutes  float64 `json:"fcotsGraceMinutes"`  // default 2
	FCOTSUseIncision   bool    `json:"fcotsUseIncision"`   // compare incision instead of patient_in
	FCOTSTargetPercent float64 `json:"fcotsTargetPercent"` // default 85
	FCOTSYellowPercent float64 `json:"fcotsYellowPercent"` // daily tracker color floor, default 70

	// Turnovers.
	TurnoverThresholdMinutes       float64 `json:"turnoverThresholdMinutes"`       // default 30
	TurnoverTargetPercent          float64 `json:"turnoverTargetPercent"`          // default 80
	TurnoverArtifactCeilingMinutes float64 `json:"turnoverArtifactCeilingMinutes"` // default 180

	// Utilization.
	UtilizationCapPercent float64 `json:"utilizationCapPercent"` // default 150
	DefaultRoomHours      float64 `json:"defaultRoomHours"`      // default 8

	// Same-day anomaly detector.
	LateStartThresholdMinutes  float64 `json:"lateStartThresholdMinutes"`  // default 15
	ExtendedPhasePercent       float64 `json:"extendedPhasePercent"`       // default 40
	ExtendedSubphasePercent    float64 `json:"extendedSubphasePercent"`    // default 30
	FastCasePercent            float64 `json:"fastCasePercent"`            // default 15

	// Surgeon idle time.
	IdleFlipTargetMinutes     float64 `json:"idleFlipTargetMinutes"`     // default 45
	IdleFlipBufferMinutes     float64 `json:"idleFlipBufferMinutes"`     // call-time buffer, default 10
	IdleSameRoomBufferMinutes float64 `json:"idleSameRoomBufferMinutes"` // default 5

	// Assistant-close handoff fallback when a surgeon profile has none.
	AssistantHandoffMinutes float64 `json:"assistantHandoffMinutes"` // default 10
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		FCOTSGraceMinutes:              2,
		FCOTSTargetPercent:             85,
		FCOTSYellowPercent:             70,
		TurnoverThresholdMinutes:       30,
		TurnoverTargetPercent:          80,
		TurnoverArtifactCeilingMinutes: 180,
		UtilizationCapPercent:          150,
		DefaultRoomHours:               8,
		LateStartThresholdMinutes:      15,
		ExtendedPhasePercent:           40,
		ExtendedSubphasePercent:        30,
		FastCasePercent:                15,
		IdleFlipTargetMinutes:          45,
		IdleFlipBufferMinutes:          10,
		IdleSameRoomBufferMinutes:      5,
		AssistantHandoffMinutes:        10,
	}
}

// Normalized substitutes the documented defaults for an entirely unset
// record (a batch with no settings at all). Per-field defaulting happens
// at decode time, where absent and explicit zero are distinguishable.
func (s Settings) Normalized() Settings {
	if s == (Settings{}) {
		return DefaultSettings()
	}
	return s
}

// settingsRecord mirrors Settings with pointer fields so decoding can
// tell an absent field from an explicit zero.
type settingsRecord struct {
	FCOTSGraceMinutes              *float64 `json:"fcotsGraceMinutes"`
	FCOTSUseIncision               bool     `json:"fcotsUseIncision"`
	FCOTSTargetPercent             *float64 `json:"fcotsTargetPercent"`
	FCOTSYellowPercent             *float64 `json:"fcotsYellowPercent"`
	TurnoverThresholdMinutes       *float64 `json:"turnoverThresholdMinutes"`
	TurnoverTargetPercent          *float64 `json:"turnoverTargetPercent"`
	TurnoverArtifactCeilingMinutes *float64 `json:"turnoverArtifactCeilingMinutes"`
	UtilizationCapPercent          *float64 `json:"utilizationCapPercent"`
	DefaultRoomHours               *float64 `json:"defaultRoomHours"`
	LateStartThresholdMinutes      *float64 `json:"lateStartThresholdMinutes"`
	ExtendedPhasePercent           *float64 `json:"extendedPhasePercent"`
	ExtendedSubphasePercent        *float64 `json:"extendedSubphasePercent"`
	FastCasePercent                *float64 `json:"fastCasePercent"`
	IdleFlipTargetMinutes          *float64 `json:"idleFlipTargetMinutes"`
	IdleFlipBufferMinutes          *float64 `json:"idleFlipBufferMinutes"`
	IdleSameRoomBufferMinutes      *float64 `json:"idleSameRoomBufferMinutes"`
	AssistantHandoffMinutes        *float64 `json:"assistantHandoffMinutes"`
}

// UnmarshalJSON decodes a facility settings record over the defaults:
// fields present in the JSON win, even when zero; absent fields keep
// their default.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var rec settingsRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	out := DefaultSettings()
	out.FCOTSUseIncision = rec.FCOTSUseIncision

	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.FCOTSGraceMinutes, rec.FCOTSGraceMinutes)
	set(&out.FCOTSTargetPercent, rec.FCOTSTargetPercent)
	set(&out.FCOTSYellowPercent, rec.FCOTSYellowPercent)
	set(&out.TurnoverThresholdMinutes, rec.TurnoverThresholdMinutes)
	set(&out.TurnoverTargetPercent, rec.TurnoverTargetPercent)
	set(&out.TurnoverArtifactCeilingMinutes, rec.TurnoverArtifactCeilingMinutes)
	set(&out.UtilizationCapPercent, rec.UtilizationCapPercent)
	set(&out.DefaultRoomHours, rec.DefaultRoomHours)
	set(&out.LateStartThresholdMinutes, rec.LateStartThresholdMinutes)
	set(&out.ExtendedPhasePercent, rec.ExtendedPhasePercent)
	set(&out.ExtendedSubphasePercent, rec.ExtendedSubphasePercent)
	set(&out.FastCasePercent, rec.FastCasePercent)
	set(&out.IdleFlipTargetMinutes, rec.IdleFlipTargetMinutes)
	set(&out.IdleFlipBufferMinutes, rec.IdleFlipBufferMinutes)
	set(&out.IdleSameRoomBufferMinutes, rec.IdleSameRoomBufferMinutes)
	set(&out.AssistantHandoffMinutes, rec.AssistantHandoffMinutes)

	*s = out
	return nil
}
