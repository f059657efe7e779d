package engine

import (
	"context"
	"testing"
	"time"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// stampAndFeed assigns five-minute bar times on one session day and folds
// every bar into a fresh 24/7 session context.
func stampAndFeed(bars []domain.Bar) (*Orchestrator, []domain.Bar, *SessionContext) {
	base := time.Date(2026, time.January, 5, 0, 0, 0, 0, estLocation)
	for i := range bars {
		bars[i].Time = base.Add(time.Duration(i) * 5 * time.Minute)
	}
	sess := NewSessionContext(domain.AssetConfig{Symbol: "BTCUSDT", Session: "24/7"})
	for _, b := range bars {
		sess.Update(b)
	}
	return NewOrchestrator(sess, noopLogger{}), bars, sess
}

// chopBars alternates equal-range bull and bear bars at one level: no
// tight range, no structure, pressure stays below the gate.
func chopBars(n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		if i%2 == 0 {
			bars[i] = bar(10.25, 11, 10, 10.75)
		} else {
			bars[i] = bar(10.75, 11, 10, 10.25)
		}
	}
	return bars
}

func TestEvaluateNeedsWarmup(t *testing.T) {
	o, mem, _ := stampAndFeed(chopBars(49))
	sig, verdict := o.Evaluate(context.Background(), mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
}

func TestEvaluateTightRangeVerdict(t *testing.T) {
	bars := chopBars(43)
	for i := 0; i < 7; i++ {
		bars = append(bars, bar(10.45, 11, 10, 10.5))
	}
	o, mem, _ := stampAndFeed(bars)

	sig, verdict := o.Evaluate(context.Background(), mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictTightRange, verdict)
}

func TestEvaluateLowPressure(t *testing.T) {
	o, mem, _ := stampAndFeed(chopBars(50))
	sig, verdict := o.Evaluate(context.Background(), mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
	assert.Nil(t, o.pendingSignal)
}

func TestEvaluateVolatilityShockBlocks(t *testing.T) {
	bars := risingBars(59, 10, 0.5)
	last := bars[len(bars)-1].Close
	bars = append(bars, bar(last, last+2, last, last+1.9))
	o, mem, _ := stampAndFeed(bars)

	sig, verdict := o.Evaluate(context.Background(), mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
	assert.Nil(t, o.pendingSignal)
}

func TestEvaluateExhaustionCooldown(t *testing.T) {
	bars := neutralWindow(57)
	bars = append(bars,
		bar(10.5, 11.6, 10.5, 11.5),
		bar(11.5, 12.6, 11.5, 12.5),
		bar(12.5, 13.9, 12.5, 13.8), // third consecutive strong bull, outsized range
	)
	o, mem, sess := stampAndFeed(bars)
	ctx := context.Background()

	sig, verdict := o.Evaluate(ctx, mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
	require.Equal(t, exhaustionCooldownBars, o.exhaustionCooldown)

	// Five ordinary continuation bars drain the lockout one per bar.
	next := mem[len(mem)-1].Close
	for i := 0; i < exhaustionCooldownBars; i++ {
		b := bar(next, next+1.1, next, next+0.8)
		b.Time = mem[len(mem)-1].Time.Add(5 * time.Minute)
		sess.Update(b)
		mem = append(mem, b)
		next = b.Close

		sig, verdict = o.Evaluate(ctx, mem)
		assert.Nil(t, sig)
		assert.Equal(t, VerdictNoSignal, verdict)
		assert.Equal(t, exhaustionCooldownBars-1-i, o.exhaustionCooldown)
	}
}

func TestEvaluateBreakoutThenFailure(t *testing.T) {
	bars := chopBars(59)
	bars = append(bars, bar(10.8, 12.1, 10.7, 12.1)) // closes on its high above the range
	o, mem, sess := stampAndFeed(bars)
	ctx := context.Background()

	sig, verdict := o.Evaluate(ctx, mem)
	require.NotNil(t, sig)
	assert.Equal(t, VerdictSignal, verdict)
	assert.Equal(t, domain.SetupBreakout, sig.Setup)
	assert.Equal(t, domain.Bullish, sig.Direction)
	assert.False(t, sig.ForceScalp)
	assert.Greater(t, sig.PressureScore, 0)
	assert.True(t, o.breakoutActive)
	require.NotNil(t, o.pendingBreakout)

	// The next bar spikes to a new high and closes deep back inside the
	// range: the failure is itself the (bearish) signal.
	fail := bar(12.4, 13.1, 11.1, 11.5)
	fail.Time = mem[len(mem)-1].Time.Add(5 * time.Minute)
	sess.Update(fail)
	mem = append(mem, fail)

	sig, verdict = o.Evaluate(ctx, mem)
	require.NotNil(t, sig)
	assert.Equal(t, VerdictSignal, verdict)
	assert.Equal(t, domain.SetupFailedBreakout, sig.Setup)
	assert.Equal(t, domain.Bearish, sig.Direction)
	assert.True(t, sig.ForceScalp)
	assert.Equal(t, scalpRiskOverride, sig.RiskOverride)
	assert.Nil(t, o.pendingBreakout)
	assert.False(t, o.breakoutActive)
}

func TestEvaluateStaleBreakoutExpires(t *testing.T) {
	bars := chopBars(59)
	bars = append(bars, bar(10.8, 12.1, 10.7, 12.1))
	o, mem, sess := stampAndFeed(bars)
	ctx := context.Background()

	sig, _ := o.Evaluate(ctx, mem)
	require.NotNil(t, sig)
	require.NotNil(t, o.pendingBreakout)

	// A quiet bar fails the pressure gate before the failure check runs.
	// The registered breakout bar expires with it.
	quiet := bar(10.75, 11, 10, 10.25)
	quiet.Time = mem[len(mem)-1].Time.Add(5 * time.Minute)
	sess.Update(quiet)
	mem = append(mem, quiet)

	sig, verdict := o.Evaluate(ctx, mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
	assert.Nil(t, o.pendingBreakout)

	// The reversal bar arriving one bar too late must not be read as a
	// failure of the long-expired breakout.
	late := bar(12.4, 13.1, 11.1, 11.5)
	late.Time = mem[len(mem)-1].Time.Add(5 * time.Minute)
	sess.Update(late)
	mem = append(mem, late)

	sig, verdict = o.Evaluate(ctx, mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
}

func TestFollowThroughConsumption(t *testing.T) {
	ctx := context.Background()

	// Ends on a bull bar closing in the upper half with a solid body.
	o, mem, _ := stampAndFeed(chopBars(50))
	pending := &domain.Signal{Setup: domain.SetupSecondEntry, Direction: domain.Bullish}
	o.pendingSignal = pending

	sig, verdict := o.Evaluate(ctx, mem)
	require.NotNil(t, sig)
	assert.Equal(t, VerdictSignal, verdict)
	assert.Same(t, pending, sig)
	assert.Nil(t, o.pendingSignal)

	// A bearish pending signal gets no confirmation from that bar and is
	// discarded, never re-queued.
	o, mem, _ = stampAndFeed(chopBars(50))
	o.pendingSignal = &domain.Signal{Setup: domain.SetupSecondEntry, Direction: domain.Bearish}

	sig, verdict = o.Evaluate(ctx, mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
	assert.Nil(t, o.pendingSignal)
}

func TestConfirmsFollowThrough(t *testing.T) {
	tests := []struct {
		name string
		bar  domain.Bar
		dir  domain.Direction
		want bool
	}{
		{name: "bull confirmed", bar: bar(10.2, 11, 10, 10.8), dir: domain.Bullish, want: true},
		{name: "bull boundary pass", bar: bar(10.2, 11, 10, 10.55), dir: domain.Bullish, want: true},
		{name: "bull midpoint close", bar: bar(10.05, 11, 10, 10.45), dir: domain.Bullish, want: false},
		{name: "bull weak body", bar: bar(10.55, 11, 10, 10.75), dir: domain.Bullish, want: false},
		{name: "bull wrong side", bar: bar(10.8, 11, 10, 10.2), dir: domain.Bullish, want: false},
		{name: "bear confirmed", bar: bar(10.8, 11, 10, 10.2), dir: domain.Bearish, want: true},
		{name: "bear doji", bar: bar(10.5, 11, 10, 10.45), dir: domain.Bearish, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confirmsFollowThrough(tt.bar, tt.dir))
		})
	}
}

func TestBreakoutQuality(t *testing.T) {
	tests := []struct {
		name string
		bar  domain.Bar
		dir  domain.Direction
		want bool
	}{
		{name: "strong bull close", bar: bar(10.2, 11, 10, 10.9), dir: domain.Bullish, want: true},
		{name: "bull close too low", bar: bar(10.1, 11, 10, 10.6), dir: domain.Bullish, want: false},
		{name: "thin body", bar: bar(10.6, 11, 10, 10.9), dir: domain.Bullish, want: false},
		{name: "strong bear close", bar: bar(10.8, 11, 10, 10.1), dir: domain.Bearish, want: true},
		{name: "bear close too high", bar: bar(10.9, 11, 10, 10.4), dir: domain.Bearish, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, breakoutQualityOK(tt.bar, tt.dir))
		})
	}
}

func TestUpdateMTR(t *testing.T) {
	o := NewOrchestrator(NewSessionContext(domain.AssetConfig{Session: "24/7"}), noopLogger{})

	mem := neutralWindow(15)
	mem = append(mem, bar(9.6, 9.8, 9.4, 9.5)) // closes below the prior 15-bar low

	o.updateMTR(mem, domain.Bullish)
	assert.Equal(t, MTRTestExtreme, o.mtrState)
	assert.Equal(t, 9.4, o.mtrExtreme)

	// A bar that fails to extend the tested low opens the reversal window.
	mem = append(mem, bar(9.6, 9.9, 9.5, 9.8))
	o.updateMTR(mem, domain.Bullish)
	assert.Equal(t, MTRReversalAttempt, o.mtrState)

	// Fresh downside extension re-arms the test.
	mem = append(mem, bar(9.5, 9.6, 9.0, 9.1))
	o.updateMTR(mem, domain.Bullish)
	assert.Equal(t, MTRTestExtreme, o.mtrState)
	assert.Equal(t, 9.0, o.mtrExtreme)

	// Bias flip resets the machine.
	o.updateMTR(mem, domain.Bearish)
	assert.Equal(t, MTRNone, o.mtrState)
}

// wedgeTopBars ends on a bullish three-push top with shrinking bodies,
// capped by a bear reversal bar closing on its lows. The pivots keep the
// always-in direction bullish throughout.
func wedgeTopBars() []domain.Bar {
	bars := make([]domain.Bar, 0, 56)
	for i := 0; i < 44; i++ {
		bars = append(bars, bar(10.2, 11, 10, 10.5))
	}
	return append(bars,
		bar(10.6, 12.0, 10.5, 11.6), // push one
		bar(11.5, 11.6, 11.15, 11.25),
		bar(11.3, 11.45, 11.2, 11.4),
		bar(11.6, 12.5, 11.5, 12.3), // push two
		bar(12.0, 12.1, 11.7, 11.8),
		bar(11.85, 12.0, 11.75, 11.95),
		bar(12.3, 12.8, 12.25, 12.7), // push three
		bar(12.6, 12.7, 12.4, 12.5),
		bar(12.45, 12.55, 12.35, 12.5),
		bar(12.5, 12.5, 12.35, 12.4),
		bar(12.25, 12.45, 12.2, 12.35),
		bar(12.35, 12.45, 11.55, 11.65), // reversal bar
	)
}

func TestEvaluateWedgeNeedsReversalWindow(t *testing.T) {
	ctx := context.Background()

	// Counter-trend wedge against an intact bullish bias: suppressed.
	o, mem, _ := stampAndFeed(wedgeTopBars())
	o.mtrBias = domain.Bullish

	sig, verdict := o.Evaluate(ctx, mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
	assert.Nil(t, o.pendingSignal)
	assert.Equal(t, MTRNone, o.mtrState)

	// Same bars with the reversal window open: the wedge is staged for
	// follow-through.
	o, mem, _ = stampAndFeed(wedgeTopBars())
	o.mtrBias = domain.Bullish
	o.mtrState = MTRReversalAttempt
	o.mtrExtreme = 9.0 // far below the lows so the window stays open

	sig, verdict = o.Evaluate(ctx, mem)
	assert.Nil(t, sig)
	assert.Equal(t, VerdictNoSignal, verdict)
	require.NotNil(t, o.pendingSignal)
	assert.Equal(t, domain.SetupWedgeReversal, o.pendingSignal.Setup)
	assert.Equal(t, domain.Bearish, o.pendingSignal.Direction)
}

func TestOrchestratorSnapshotRoundtrip(t *testing.T) {
	sess := NewSessionContext(domain.AssetConfig{Session: "24/7"})
	o := NewOrchestrator(sess, noopLogger{})
	o.exhaustionCooldown = 3
	o.breakoutActive = true
	o.breakoutDir = domain.Bearish
	o.breakoutBarsElapsed = 4
	o.mtrState = MTRReversalAttempt
	o.mtrBias = domain.Bullish
	o.mtrExtreme = 97.5
	o.pendingSignal = &domain.Signal{Setup: domain.SetupSecondEntry}
	o.pendingBreakout = &PendingBreakout{Direction: domain.Bullish}

	restored := NewOrchestrator(sess, noopLogger{})
	restored.Restore(o.Snapshot())

	assert.Equal(t, 3, restored.exhaustionCooldown)
	assert.True(t, restored.breakoutActive)
	assert.Equal(t, domain.Bearish, restored.breakoutDir)
	assert.Equal(t, 4, restored.breakoutBarsElapsed)
	assert.Equal(t, MTRReversalAttempt, restored.mtrState)
	assert.Equal(t, 97.5, restored.mtrExtreme)
	// Staged signals reference bars the restored run has not seen.
	assert.Nil(t, restored.pendingSignal)
	assert.Nil(t, restored.pendingBreakout)
}
