package patterns

import (
	"testing"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeBoundBars(n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = bar(10.2, 11, 10, 10.8)
	}
	return bars
}

func TestDetectBreakoutBull(t *testing.T) {
	mem := rangeBoundBars(20)
	mem = append(mem, bar(10.8, 12.2, 10.7, 12.1))

	sig := DetectBreakout(mem, domain.Neutral)
	require.NotNil(t, sig)
	assert.Equal(t, domain.SetupBreakout, sig.Setup)
	assert.Equal(t, domain.Bullish, sig.Direction)
	assert.InDelta(t, 1.1, sig.PullbackDepth, 1e-9)
	assert.Equal(t, 0, sig.PullbackBars)
}

func TestDetectBreakoutBear(t *testing.T) {
	mem := rangeBoundBars(20)
	mem = append(mem, bar(10.2, 10.3, 8.8, 8.9))

	sig := DetectBreakout(mem, domain.Neutral)
	require.NotNil(t, sig)
	assert.Equal(t, domain.Bearish, sig.Direction)
	assert.InDelta(t, 1.1, sig.PullbackDepth, 1e-9)
}

func TestDetectBreakoutRejections(t *testing.T) {
	mem := rangeBoundBars(20)

	// Close still inside the range.
	assert.Nil(t, DetectBreakout(append(append([]domain.Bar(nil), mem...), bar(10.2, 11, 10, 10.9)), domain.Neutral))

	// A bullish breakout straight into an established bear trend is vetoed.
	up := append(append([]domain.Bar(nil), mem...), bar(10.8, 12.2, 10.7, 12.1))
	assert.Nil(t, DetectBreakout(up, domain.Bearish))

	// Range no larger than average: no conviction behind the move.
	flat := append(append([]domain.Bar(nil), mem...), bar(10.9, 11.2, 10.4, 11.1))
	assert.Nil(t, DetectBreakout(flat, domain.Neutral))

	// Not enough bars.
	assert.Nil(t, DetectBreakout(mem, domain.Neutral))
}

func TestDetectFailedBreakout(t *testing.T) {
	breakoutBar := bar(10.8, 12.2, 10.7, 12.1)

	// Spike above the breakout bar, then a hard close back through it.
	fail := bar(12.4, 13.1, 11.1, 11.5)
	sig := DetectFailedBreakout(fail, domain.Bullish, breakoutBar)
	require.NotNil(t, sig)
	assert.Equal(t, domain.SetupFailedBreakout, sig.Setup)
	assert.Equal(t, domain.Bearish, sig.Direction)
	assert.InDelta(t, 12.2-11.5, sig.PullbackDepth, 1e-9)
	assert.Equal(t, 1, sig.PullbackBars)

	// Mirror: bear breakout negated by a strong close back above it.
	bearBreakout := bar(10.2, 10.3, 8.8, 8.9)
	reclaim := bar(8.6, 9.9, 8.5, 9.8)
	sig = DetectFailedBreakout(reclaim, domain.Bearish, bearBreakout)
	require.NotNil(t, sig)
	assert.Equal(t, domain.Bullish, sig.Direction)

	// A timid reversal bar is not a failure signal.
	weak := bar(12.0, 12.3, 11.6, 11.9)
	assert.Nil(t, DetectFailedBreakout(weak, domain.Bullish, breakoutBar))

	// Holding above the breakout close means the breakout is working.
	hold := bar(12.1, 12.6, 12.0, 12.5)
	assert.Nil(t, DetectFailedBreakout(hold, domain.Bullish, breakoutBar))
}
