package patterns

import (
	"testing"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bearWedgeFixture: three pushes to higher highs on shrinking bodies,
// capped by a bar closing near its low.
func bearWedgeFixture() []domain.Bar {
	bars := make([]domain.Bar, 0, 18)
	for i := 0; i < 6; i++ {
		bars = append(bars, bar(10.2, 11, 10, 10.5))
	}
	bars = append(bars,
		bar(10.6, 12.0, 10.5, 11.6), // idx6: push 1, body 1.0
		bar(11.5, 11.6, 11.1, 11.2), // idx7
		bar(11.2, 11.4, 11.0, 11.1), // idx8
		bar(11.6, 12.5, 11.5, 12.3), // idx9: push 2, body 0.7
		bar(11.9, 12.0, 11.6, 11.7), // idx10
		bar(11.7, 11.8, 11.4, 11.5), // idx11
		bar(12.3, 12.8, 12.2, 12.7), // idx12: push 3, body 0.4
		bar(12.5, 12.6, 12.1, 12.2), // idx13
		bar(12.2, 12.4, 12.0, 12.1), // idx14
		bar(12.1, 12.3, 11.9, 12.0), // idx15
		bar(12.0, 12.2, 11.8, 11.9), // idx16
		bar(12.2, 12.3, 11.5, 11.6), // idx17: reversal bar, bottom-quarter close
	)
	return bars
}

func TestDetectWedgeBear(t *testing.T) {
	sig := DetectWedge(bearWedgeFixture(), domain.Bullish)
	require.NotNil(t, sig)
	assert.Equal(t, domain.SetupWedgeReversal, sig.Setup)
	assert.Equal(t, domain.Bearish, sig.Direction)
	assert.Equal(t, 3, sig.Pushes)
	assert.Equal(t, 3, sig.PullbackBars)
	assert.InDelta(t, 12.8-11.5, sig.PullbackDepth, 1e-9)
}

func TestDetectWedgeBull(t *testing.T) {
	sig := DetectWedge(mirror(bearWedgeFixture()), domain.Bearish)
	require.NotNil(t, sig)
	assert.Equal(t, domain.SetupWedgeReversal, sig.Setup)
	assert.Equal(t, domain.Bullish, sig.Direction)
	assert.Equal(t, 3, sig.Pushes)
}

func TestDetectWedgeRejections(t *testing.T) {
	fixture := bearWedgeFixture()

	// A wedge only exists against a trend.
	assert.Nil(t, DetectWedge(fixture, domain.Neutral))

	// Growing push bodies: momentum is not fading.
	growing := append([]domain.Bar(nil), fixture...)
	growing[12] = bar(11.6, 12.8, 11.5, 12.7) // push 3 body 1.1 > push 1 body
	assert.Nil(t, DetectWedge(growing, domain.Bullish))

	// Reversal bar closing too high in its range.
	weakCap := append([]domain.Bar(nil), fixture...)
	weakCap[17] = bar(12.0, 12.3, 11.9, 12.2)
	assert.Nil(t, DetectWedge(weakCap, domain.Bullish))

	assert.Nil(t, DetectWedge(fixture[:10], domain.Bullish))
}
