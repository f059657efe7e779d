// Package risk holds the circuit breakers and the position sizer that
// stand between a confirmed signal and an order. Outcomes are tracked in
// R units (multiples of the initial stop distance), so the thresholds are
// independent of account currency.
package risk

import (
	"time"
)

// GuardConfig sets the hard-stop floors and tough-condition thresholds.
// Floors are expressed in R units.
type GuardConfig struct {
	MaxDrawdownR  float64
	MaxDailyLossR float64
	MaxLossStreak int
	Cooldown      time.Duration

	ToughStreak     int
	VolSpikeRatio   float64
	RetraceFraction float64
	ShockFactor     float64
}

// DefaultGuardConfig returns the production thresholds.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxDrawdownR:    15,
		MaxDailyLossR:   12,
		MaxLossStreak:   8,
		Cooldown:        time.Hour,
		ToughStreak:     3,
		VolSpikeRatio:   1.5,
		RetraceFraction: 0.05,
		ShockFactor:     2.0,
	}
}

// notionalBase anchors the R-unit equity curve so retracement can be
// expressed as a fraction of equity.
const notionalBase = 100.0

// Guard is the capital circuit breaker. A tripped guard blocks trading
// until the cooldown elapses AND the drawdown floor is no longer
// breached; cooldown alone recovers streak and daily-loss trips but the
// drawdown floor is not forgiven by waiting.
type Guard struct {
	cfg GuardConfig

	returns      []float64
	dailyReturns []float64
	lossStreak   int

	cumEquity  float64
	minEquity  float64
	peakEquity float64

	hardStopTriggered bool
	hardStopTime      time.Time
}

// NewGuard builds a guard with the given thresholds.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{cfg: cfg}
}

// RecordOutcome folds one closed trade's R-multiple into the guard state.
func (g *Guard) RecordOutcome(r float64, at time.Time) {
	g.returns = append(g.returns, r)
	g.dailyReturns = append(g.dailyReturns, r)
	g.cumEquity += r
	if g.cumEquity < g.minEquity {
		g.minEquity = g.cumEquity
	}
	if g.cumEquity > g.peakEquity {
		g.peakEquity = g.cumEquity
	}
	if r < 0 {
		g.lossStreak++
	} else if r > 0 {
		g.lossStreak = 0
	}

	if g.hardStopTriggered {
		return
	}
	if -g.minEquity >= g.cfg.MaxDrawdownR || g.dailySum() <= -g.cfg.MaxDailyLossR || g.lossStreak >= g.cfg.MaxLossStreak {
		g.hardStopTriggered = true
		g.hardStopTime = at
	}
}

// ResetDaily clears the session loss accumulator at the day boundary.
func (g *Guard) ResetDaily() {
	g.dailyReturns = g.dailyReturns[:0]
}

// CanTrade reports whether the guard currently permits new entries, with
// the blocking reason when it does not.
func (g *Guard) CanTrade(now time.Time) (bool, string) {
	if !g.hardStopTriggered {
		return true, ""
	}
	if now.Sub(g.hardStopTime) < g.cfg.Cooldown {
		return false, "hard_stop_cooldown"
	}
	// Cooldown elapsed: streak and daily trips recover, the drawdown
	// floor does not.
	if -g.minEquity >= g.cfg.MaxDrawdownR {
		return false, "drawdown_floor"
	}
	g.hardStopTriggered = false
	g.lossStreak = 0
	g.ResetDaily()
	return true, ""
}

// ToughConditions reports whether risk should be reduced without blocking:
// a building loss streak, a losing session, a volatility spike, a deep
// equity retracement, or an ATR shock.
func (g *Guard) ToughConditions(volRatio, atrShock float64) bool {
	if g.lossStreak >= g.cfg.ToughStreak {
		return true
	}
	if g.dailySum() < 0 {
		return true
	}
	if volRatio > g.cfg.VolSpikeRatio {
		return true
	}
	if peak := notionalBase + g.peakEquity; peak > 0 {
		if (g.peakEquity-g.cumEquity)/peak >= g.cfg.RetraceFraction {
			return true
		}
	}
	if atrShock >= g.cfg.ShockFactor {
		return true
	}
	return false
}

// LossStreak returns the current consecutive-loss count.
func (g *Guard) LossStreak() int { return g.lossStreak }

// SessionDrawdownFraction returns the current session loss as a fraction
// of notional equity, 0 when the session is flat or positive.
func (g *Guard) SessionDrawdownFraction() float64 {
	sum := g.dailySum()
	if sum >= 0 {
		return 0
	}
	return -sum / notionalBase
}

func (g *Guard) dailySum() float64 {
	sum := 0.0
	for _, r := range g.dailyReturns {
		sum += r
	}
	return sum
}

// Export returns the persistable guard state.
func (g *Guard) Export() (returns, dailyReturns []float64, lossStreak int) {
	return append([]float64(nil), g.returns...), append([]float64(nil), g.dailyReturns...), g.lossStreak
}

// Restore rebuilds the guard from persisted state. The equity curve and
// its extremes are recomputed from the return series.
func (g *Guard) Restore(returns, dailyReturns []float64, lossStreak int) {
	g.returns = append([]float64(nil), returns...)
	g.dailyReturns = append([]float64(nil), dailyReturns...)
	g.lossStreak = lossStreak
	g.cumEquity, g.minEquity, g.peakEquity = 0, 0, 0
	cum := 0.0
	for _, r := range returns {
		cum += r
		if cum < g.minEquity {
			g.minEquity = cum
		}
		if cum > g.peakEquity {
			g.peakEquity = cum
		}
	}
	g.cumEquity = cum
	g.hardStopTriggered = false
}
