package engine

import (
	"context"

	"priceActionBot/internal/domain"
	"priceActionBot/internal/engine/patterns"
	"priceActionBot/internal/ports"
)

// Verdict is the per-bar outcome of orchestration.
type Verdict int

const (
	// VerdictNoSignal means the bar produced nothing tradable.
	VerdictNoSignal Verdict = iota
	// VerdictTightRange means the regime short-circuited the bar; callers
	// must skip feature building entirely, it is not a plain "no signal".
	VerdictTightRange
	// VerdictSignal means a confirmed signal is being handed out.
	VerdictSignal
)

// MTRState tracks the major-trend-reversal sub-state-machine.
type MTRState string

const (
	MTRNone            MTRState = "none"
	MTRTestExtreme     MTRState = "test_extreme"
	MTRReversalAttempt MTRState = "reversal_attempt"
)

const (
	minBarsForSignal = 50

	sessionOpenSuppressBars = 2

	followThroughClosePos  = 0.5
	followThroughBodyRatio = 0.3

	pressureMinScore = 3

	volShockHardBlock = 2.0
	volShockScalp     = 1.5
	scalpRiskOverride = 0.003 // reduce risk to 0.3% under a shock

	mtrLookback = 15

	exhaustionCooldownBars = 5

	breakoutTimeoutBars = 10

	breakoutQualityClosePosBull = 0.65
	breakoutQualityClosePosBear = 0.35
	breakoutQualityBodyRatio    = 0.4
)

// PendingBreakout remembers the breakout bar registered last bar so the
// next bar can be checked for an immediate failure.
type PendingBreakout struct {
	Direction domain.Direction
	Bar       domain.Bar
}

// Orchestrator sequences detector outputs through confirmation, cooldowns
// and the breakout/MTR sub-state-machines, emitting at most one candidate
// signal per bar. One instance exclusively owns the state for one asset;
// it is never shared across goroutines.
type Orchestrator struct {
	logger  ports.Logger
	session *SessionContext

	pendingSignal       *domain.Signal
	exhaustionCooldown  int
	pendingBreakout     *PendingBreakout
	breakoutActive      bool
	breakoutDir         domain.Direction
	breakoutBarsElapsed int
	mtrState            MTRState
	mtrBias             domain.Direction
	mtrExtreme          float64
}

// NewOrchestrator creates an orchestrator bound to one asset's session
// context.
func NewOrchestrator(session *SessionContext, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		session:  session,
		mtrState: MTRNone,
	}
}

// Evaluate runs the per-bar pipeline over the memory window. Every step
// short-circuits to "no signal" on failure; the tight-trading-range label
// returns its own verdict so callers do not build features for the bar.
func (o *Orchestrator) Evaluate(ctx context.Context, mem []domain.Bar) (*domain.Signal, Verdict) {
	if len(mem) < minBarsForSignal {
		return nil, VerdictNoSignal
	}
	last := mem[len(mem)-1]

	// The failure check against a registered breakout bar is only
	// meaningful on the very next bar. Take it now; if any gate below
	// short-circuits before step 11 the breakout bar goes stale and the
	// negation must not run against it later.
	pendingBO := o.pendingBreakout
	o.pendingBreakout = nil

	// 1. Session window. A bar outside trading hours also invalidates any
	// staged signal: follow-through across a session break is meaningless.
	if !o.session.InSession(last.Time) {
		o.pendingSignal = nil
		return nil, VerdictNoSignal
	}

	// 2. The first bars of a new session day carry no usable structure.
	if o.session.BarsSinceOpen < sessionOpenSuppressBars {
		o.pendingSignal = nil
		return nil, VerdictNoSignal
	}

	// 3. Follow-through consumption: a staged signal gets exactly one bar
	// to confirm. Discarded signals are never re-queued.
	if o.pendingSignal != nil {
		pending := o.pendingSignal
		o.pendingSignal = nil
		if confirmsFollowThrough(last, pending.Direction) {
			return pending, VerdictSignal
		}
		o.logger.Debug(ctx, "pending signal discarded on weak follow-through",
			map[string]interface{}{"setup": pending.Setup, "direction": pending.Direction})
	}

	// 4. Tight trading range short-circuits the bar.
	regime := ClassifyRegime(mem)
	if regime == domain.RegimeTightRange {
		return nil, VerdictTightRange
	}

	// 5. Directional pressure.
	pressure := PressureScore(mem)
	if pressure < pressureMinScore {
		return nil, VerdictNoSignal
	}

	// 6. Continuous trend/range probability.
	regimeProb := RegimeProbability(mem, pressure, regime)

	// 7. Volatility shock.
	forceScalp := false
	atr := ATR(mem, atrPeriod)
	if atr > 0 {
		shock := last.Range() / atr
		if shock > volShockHardBlock {
			return nil, VerdictNoSignal
		}
		forceScalp = shock > volShockScalp
	}

	// Bias: swing-pivot always-in direction overrides the slope estimate
	// whenever it is non-neutral.
	bias := AlwaysInDirection(mem)
	trendDir := EstimateTrend(mem).Direction
	if bias == domain.Neutral {
		bias = trendDir
	}

	// 8. MTR sub-state-machine.
	o.updateMTR(mem, bias)

	// 9. Exhaustion cooldown: a climactic bar arms a 5-bar lockout.
	desc := ClassifyBar(tailBars(mem, regimeLookback))
	if o.exhaustionCooldown > 0 {
		o.exhaustionCooldown--
		return nil, VerdictNoSignal
	}
	if desc.Climactic {
		o.exhaustionCooldown = exhaustionCooldownBars
		return nil, VerdictNoSignal
	}

	// 10. Outside bars engulf both sides; nothing is trustworthy.
	if desc.IsOutside {
		return nil, VerdictNoSignal
	}

	// 11. Failed-breakout check against the breakout bar registered on the
	// prior bar, whether or not it fails.
	if pendingBO != nil {
		pb := pendingBO
		if sig := patterns.DetectFailedBreakout(last, pb.Direction, pb.Bar); sig != nil {
			if o.breakoutActive && o.breakoutDir == pb.Direction {
				o.breakoutActive = false
			}
			o.attachContext(sig, regimeProb, pressure, forceScalp)
			return sig, VerdictSignal
		}
	}

	// 12. Breakout sub-state-machine: while active, scan each bar for a
	// pullback entry in the breakout direction; give up after the timeout.
	if o.breakoutActive {
		o.breakoutBarsElapsed++
		if o.breakoutBarsElapsed > breakoutTimeoutBars {
			o.breakoutActive = false
		} else if sig := patterns.DetectSecondEntry(mem, o.breakoutDir); sig != nil {
			o.breakoutActive = false
			o.stage(sig, regimeProb, pressure, forceScalp)
			return nil, VerdictNoSignal
		}
	}

	// 13. Fresh detection in fixed priority. Pullback-style signals are
	// staged for follow-through; breakouts return immediately, the move
	// itself being the confirmation.
	if sig := patterns.DetectSecondEntry(mem, bias); sig != nil {
		o.stage(sig, regimeProb, pressure, forceScalp)
		return nil, VerdictNoSignal
	}
	if o.mtrState == MTRReversalAttempt {
		if sig := patterns.DetectSecondEntry(mem, bias.Opposite()); sig != nil {
			o.stage(sig, regimeProb, pressure, forceScalp)
			return nil, VerdictNoSignal
		}
	}
	if sig := patterns.DetectFirstEntry(mem, bias, desc.Sequence); sig != nil {
		o.stage(sig, regimeProb, pressure, forceScalp)
		return nil, VerdictNoSignal
	}
	if o.mtrState == MTRReversalAttempt {
		if sig := patterns.DetectWedge(mem, bias); sig != nil {
			o.stage(sig, regimeProb, pressure, forceScalp)
			return nil, VerdictNoSignal
		}
	}
	if sig := patterns.DetectInsideBar(mem, bias); sig != nil {
		o.stage(sig, regimeProb, pressure, forceScalp)
		return nil, VerdictNoSignal
	}
	if sig := patterns.DetectBreakout(mem, trendDir); sig != nil {
		if breakoutQualityOK(last, sig.Direction) {
			o.pendingBreakout = &PendingBreakout{Direction: sig.Direction, Bar: last}
			o.breakoutActive = true
			o.breakoutDir = sig.Direction
			o.breakoutBarsElapsed = 0
			o.attachContext(sig, regimeProb, pressure, forceScalp)
			return sig, VerdictSignal
		}
	}

	return nil, VerdictNoSignal
}

// stage holds a signal for next-bar follow-through confirmation.
func (o *Orchestrator) stage(sig *domain.Signal, regimeProb float64, pressure int, forceScalp bool) {
	o.attachContext(sig, regimeProb, pressure, forceScalp)
	o.pendingSignal = sig
}

func (o *Orchestrator) attachContext(sig *domain.Signal, regimeProb float64, pressure int, forceScalp bool) {
	sig.RegimeProb = regimeProb
	sig.PressureScore = pressure
	sig.ForceScalp = forceScalp
	if forceScalp {
		sig.RiskOverride = scalpRiskOverride
	}
}

// confirmsFollowThrough applies the strict two-bar confirmation protocol:
// the bar after a staged signal must close beyond 0.5 with body ratio
// above 0.3 in the pending direction.
func confirmsFollowThrough(bar domain.Bar, dir domain.Direction) bool {
	if bar.BodyRatio() <= followThroughBodyRatio {
		return false
	}
	pos := bar.ClosePos()
	if dir == domain.Bullish {
		return pos > followThroughClosePos
	}
	return pos < followThroughClosePos
}

// updateMTR advances the major-trend-reversal machine: a close beyond the
// prior 15-bar extreme against the always-in bias starts a test, and a bar
// that fails to extend that extreme opens the reversal window.
func (o *Orchestrator) updateMTR(mem []domain.Bar, bias domain.Direction) {
	if bias != o.mtrBias {
		o.mtrBias = bias
		o.mtrState = MTRNone
	}
	if bias == domain.Neutral || len(mem) < mtrLookback+1 {
		return
	}
	last := mem[len(mem)-1]
	prior := mem[len(mem)-mtrLookback-1 : len(mem)-1]

	switch o.mtrState {
	case MTRNone:
		if bias == domain.Bullish && last.Close < minLow(prior) {
			o.mtrState = MTRTestExtreme
			o.mtrExtreme = last.Low
		} else if bias == domain.Bearish && last.Close > maxHigh(prior) {
			o.mtrState = MTRTestExtreme
			o.mtrExtreme = last.High
		}
	case MTRTestExtreme:
		if o.extendsExtreme(last, bias) {
			return
		}
		o.mtrState = MTRReversalAttempt
	case MTRReversalAttempt:
		if o.extendsExtreme(last, bias) {
			o.mtrState = MTRTestExtreme
		}
	}
}

// extendsExtreme reports whether the bar pushed the tested extreme further
// against the bias, updating it when it did.
func (o *Orchestrator) extendsExtreme(bar domain.Bar, bias domain.Direction) bool {
	if bias == domain.Bullish && bar.Low < o.mtrExtreme {
		o.mtrExtreme = bar.Low
		return true
	}
	if bias == domain.Bearish && bar.High > o.mtrExtreme {
		o.mtrExtreme = bar.High
		return true
	}
	return false
}

func breakoutQualityOK(bar domain.Bar, dir domain.Direction) bool {
	if bar.BodyRatio() <= breakoutQualityBodyRatio {
		return false
	}
	if dir == domain.Bullish {
		return bar.ClosePos() > breakoutQualityClosePosBull
	}
	return bar.ClosePos() < breakoutQualityClosePosBear
}

// MTRStateNow exposes the reversal machine state for diagnostics.
func (o *Orchestrator) MTRStateNow() MTRState { return o.mtrState }

// Snapshot captures the orchestrator's persistent sub-state.
func (o *Orchestrator) Snapshot() domain.OrchestratorSnapshot {
	return domain.OrchestratorSnapshot{
		ExhaustionCooldown:  o.exhaustionCooldown,
		BreakoutActive:      o.breakoutActive,
		BreakoutDirection:   string(o.breakoutDir),
		BreakoutBarsElapsed: o.breakoutBarsElapsed,
		MTRState:            string(o.mtrState),
		MTRExtreme:          o.mtrExtreme,
	}
}

// Restore applies a previously saved snapshot. Pending signals and pending
// breakouts are deliberately not restored: they reference bars the new run
// has not seen.
func (o *Orchestrator) Restore(snap domain.OrchestratorSnapshot) {
	o.exhaustionCooldown = snap.ExhaustionCooldown
	o.breakoutActive = snap.BreakoutActive
	o.breakoutDir = domain.Direction(snap.BreakoutDirection)
	o.breakoutBarsElapsed = snap.BreakoutBarsElapsed
	if snap.MTRState != "" {
		o.mtrState = MTRState(snap.MTRState)
	}
	o.mtrExtreme = snap.MTRExtreme
}

func tailBars(bars []domain.Bar, n int) []domain.Bar {
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
