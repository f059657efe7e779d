package domain

import "time"

// SetupType identifies which detector produced a signal.
type SetupType string

const (
	SetupSecondEntry    SetupType = "second_entry"
	SetupThirdEntry     SetupType = "third_entry"
	SetupFirstEntry     SetupType = "first_entry"
	SetupWedgeReversal  SetupType = "wedge_reversal"
	SetupBreakout       SetupType = "breakout"
	SetupInsideBar      SetupType = "inside_bar_entry"
	SetupFailedBreakout SetupType = "failed_breakout"
)

// Signal is a candidate trade produced by exactly one detector per bar.
// It is consumed once by the feature builder, then discarded. The optional
// fields are populated depending on Setup; the orchestrator fills the
// context fields (RegimeProb, PressureScore, ForceScalp, RiskOverride)
// before handing the signal out.
type Signal struct {
	Setup         SetupType
	Direction     Direction
	Time          time.Time
	Price         float64
	PullbackDepth float64
	PullbackBars  int

	// Setup-specific fields.
	MicroDouble bool    // second/third entry: micro double top/bottom trap
	Pushes      int     // wedge: number of pushes (always 3)
	MotherHigh  float64 // inside bar: mother bar high
	MotherLow   float64 // inside bar: mother bar low

	// Orchestrator context.
	RegimeProb    float64 // continuous trend/range estimate, 0..1
	PressureScore int     // 0..5 directional pressure
	ForceScalp    bool    // volatility shock: cap target at 1R
	RiskOverride  float64 // reduced risk fraction, 0 means none
}

// IsBreakoutStyle reports whether the signal is its own confirmation and
// skips both follow-through and the pullback depth/duration filters.
func (s *Signal) IsBreakoutStyle() bool {
	return s.Setup == SetupBreakout || s.Setup == SetupFailedBreakout
}
