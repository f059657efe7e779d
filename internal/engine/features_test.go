package engine

import (
	"testing"
	"time"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestATR(t *testing.T) {
	// Gapless bars with constant range: ATR equals the range.
	assert.InDelta(t, 1.0, ATR(neutralWindow(15), atrPeriod), 1e-9)

	// Not enough bars.
	assert.Equal(t, 0.0, ATR(neutralWindow(14), atrPeriod))
	assert.Equal(t, 0.0, ATR(nil, atrPeriod))
}

func TestATRGap(t *testing.T) {
	// A gap up makes the true range exceed the bar range.
	bars := neutralWindow(15)
	bars = append(bars, bar(13, 14, 13, 13.5)) // gaps 2 points above the prior close
	got := ATR(bars, atrPeriod)
	assert.Greater(t, got, 1.0)
}

func TestPressureScoreFull(t *testing.T) {
	mem := make([]domain.Bar, 0, 12)
	for i := 0; i < 10; i++ {
		mem = append(mem, bar(10, 10.5, 10, 10.2+0.01*float64(i)))
	}
	mem = append(mem, bar(10.3, 10.8, 10.3, 10.6))
	// Outer close, third up close in a row, above-average range, low
	// overlap, and a dominant lower rejection wick.
	mem = append(mem, bar(10.9, 11.6, 10.6, 11.4))

	assert.Equal(t, 5, PressureScore(mem))
}

func TestPressureScoreNone(t *testing.T) {
	mem := make([]domain.Bar, 5)
	for i := range mem {
		mem[i] = bar(10.4, 11, 10, 10.5) // mid close, flat, fully overlapping
	}
	assert.Equal(t, 0, PressureScore(mem))
	assert.Equal(t, 0, PressureScore(mem[:2]))
}

func TestRegimeProbability(t *testing.T) {
	flat := make([]domain.Bar, 10)
	for i := range flat {
		flat[i] = bar(10.2, 11, 10, 10.5)
	}

	// No trend evidence at all, but the structural label floors it.
	assert.InDelta(t, 0.6, RegimeProbability(flat, 0, domain.RegimeBullTrend), 1e-9)

	// Strong trend evidence capped by the trading-range label.
	assert.InDelta(t, 0.4, RegimeProbability(risingBars(10, 10, 1.0), 5, domain.RegimeTradingRange), 1e-9)

	// Unclamped: trendScore 5 against 9 overlapping pairs.
	assert.InDelta(t, 5.0/14.0, RegimeProbability(flat, 5, domain.RegimeNotReady), 1e-9)
}

func TestBuildFeatures(t *testing.T) {
	day := time.Date(2026, time.January, 5, 8, 0, 0, 0, estLocation)
	mem := make([]domain.Bar, 20)
	sess := NewSessionContext(domain.AssetConfig{Symbol: "BTCUSDT", Session: "24/7"})
	for i := range mem {
		b := bar(10.2, 11, 10, 10.5)
		b.Time = day.Add(time.Duration(i) * 5 * time.Minute)
		mem[i] = b
		sess.Update(b)
	}

	sig := &domain.Signal{
		Setup:         domain.SetupSecondEntry,
		Direction:     domain.Bullish,
		Time:          mem[len(mem)-1].Time,
		Price:         10.5,
		PullbackDepth: 1.2,
		PullbackBars:  3,
	}
	rec := BuildFeatures(sig, mem, sess)
	require.NotNil(t, rec)

	assert.InDelta(t, 1.2, rec.DepthATR, 1e-9)
	assert.Equal(t, 3, rec.PullbackBars)
	assert.InDelta(t, 1.0, rec.ImpulseSizeATR, 1e-9)
	assert.InDelta(t, 0.5, rec.DistSessionHighATR, 1e-9)
	assert.InDelta(t, -0.5, rec.DistSessionLowATR, 1e-9)
	// Fewer than 51 bars: the slow ATR is unavailable, the ratio defaults.
	assert.InDelta(t, 1.0, rec.VolatilityRatio, 1e-9)

	// For a bearish signal the same levels flip sign.
	sig.Direction = domain.Bearish
	rec = BuildFeatures(sig, mem, sess)
	require.NotNil(t, rec)
	assert.InDelta(t, -0.5, rec.DistSessionHighATR, 1e-9)
	assert.InDelta(t, 0.5, rec.DistSessionLowATR, 1e-9)

	// No ATR, no features.
	assert.Nil(t, BuildFeatures(sig, mem[:5], sess))
}

func TestFilterSignal(t *testing.T) {
	asset := domain.AssetConfig{Symbol: "BTCUSDT", Session: "24/7", ATRFilter: 1.0}
	sess := NewSessionContext(asset)

	tests := []struct {
		name   string
		sig    domain.Signal
		rec    domain.FeatureRecord
		regime domain.Regime
		ok     bool
		reason string
	}{
		{
			name:   "shallow pullback",
			sig:    domain.Signal{Setup: domain.SetupSecondEntry, Direction: domain.Bullish},
			rec:    domain.FeatureRecord{DepthATR: 0.5, PullbackBars: 3},
			regime: domain.RegimeBullTrend,
			reason: "pullback_too_shallow",
		},
		{
			name:   "pullback too long",
			sig:    domain.Signal{Setup: domain.SetupSecondEntry, Direction: domain.Bullish},
			rec:    domain.FeatureRecord{DepthATR: 1.5, PullbackBars: 5},
			regime: domain.RegimeBullTrend,
			reason: "pullback_duration",
		},
		{
			name:   "clears a distant level in trend",
			sig:    domain.Signal{Setup: domain.SetupSecondEntry, Direction: domain.Bullish},
			rec:    domain.FeatureRecord{DepthATR: 1.5, PullbackBars: 3, DistSessionHighATR: 0.2},
			regime: domain.RegimeBullTrend,
			ok:     true,
		},
		{
			name:   "same level blocks in range",
			sig:    domain.Signal{Setup: domain.SetupSecondEntry, Direction: domain.Bullish},
			rec:    domain.FeatureRecord{DepthATR: 1.5, PullbackBars: 3, DistSessionHighATR: 0.2},
			regime: domain.RegimeTradingRange,
			reason: "into_session_high",
		},
		{
			name:   "breakout skips pullback checks",
			sig:    domain.Signal{Setup: domain.SetupBreakout, Direction: domain.Bullish},
			rec:    domain.FeatureRecord{DepthATR: 0.1},
			regime: domain.RegimeTradingRange,
			ok:     true,
		},
		{
			name:   "bearish into session low",
			sig:    domain.Signal{Setup: domain.SetupSecondEntry, Direction: domain.Bearish},
			rec:    domain.FeatureRecord{DepthATR: 1.5, PullbackBars: 3, DistSessionLowATR: 0.2},
			regime: domain.RegimeTradingRange,
			reason: "into_session_low",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := FilterSignal(&tt.sig, &tt.rec, sess, asset, tt.regime)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
