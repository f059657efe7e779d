package domain

import "time"

// SnapshotSchemaVersion is bumped whenever the snapshot layout changes.
// A loaded snapshot with a different version fails loudly and the engine
// cold-starts instead of silently defaulting fields.
const SnapshotSchemaVersion = 2

// OrchestratorSnapshot captures the orchestrator's sub-state-machines.
type OrchestratorSnapshot struct {
	ExhaustionCooldown  int     `json:"exhaustion_cooldown"`
	BreakoutActive      bool    `json:"breakout_active"`
	BreakoutDirection   string  `json:"breakout_direction"`
	BreakoutBarsElapsed int     `json:"breakout_bars_elapsed"`
	MTRState            string  `json:"mtr_state"`
	MTRExtreme          float64 `json:"mtr_extreme"`
}

// Snapshot is the versioned persistent state of one asset's engine run.
type Snapshot struct {
	Version      int       `json:"version"`
	Symbol       string    `json:"symbol"`
	SavedAt      time.Time `json:"saved_at"`
	TradeCounter int       `json:"trade_counter"`
	LastIndex    int       `json:"last_index"`

	Equity          []float64 `json:"equity"`
	Returns         []float64 `json:"returns"`
	DailyReturns    []float64 `json:"daily_returns"`
	LossStreak      int       `json:"loss_streak"`
	RecentReturns   []float64 `json:"recent_returns"`
	BaselineReturns []float64 `json:"baseline_returns"`

	PatternResults    map[string][]int   `json:"pattern_results"`
	PatternConfidence map[string]float64 `json:"pattern_confidence"`

	Orchestrator OrchestratorSnapshot `json:"orchestrator"`
}
