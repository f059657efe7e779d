package engine

import (
	"testing"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTrend(t *testing.T) {
	up := EstimateTrend(risingBars(25, 10, 0.2))
	assert.True(t, up.Ready)
	assert.Equal(t, domain.Bullish, up.Direction)
	assert.Greater(t, up.BullStrength, up.BearStrength)

	down := EstimateTrend(fallingBars(25, 20, 0.2))
	assert.True(t, down.Ready)
	assert.Equal(t, domain.Bearish, down.Direction)

	flat := EstimateTrend(neutralWindow(25))
	assert.True(t, flat.Ready)
	assert.Equal(t, domain.Neutral, flat.Direction)
}

func TestEstimateTrendNotReady(t *testing.T) {
	est := EstimateTrend(risingBars(19, 10, 0.2))
	assert.False(t, est.Ready)
	assert.Equal(t, domain.Neutral, est.Direction)
}
