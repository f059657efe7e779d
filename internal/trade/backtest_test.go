package trade

import (
	"testing"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
)

func plannedBull() *domain.Position {
	return &domain.Position{
		Direction:  domain.Bullish,
		Entry:      11,
		Stop:       9.7,
		Target:     12.95,
		StopDist:   1.3,
		TargetDist: 1.95,
	}
}

func TestResolveForwardWin(t *testing.T) {
	future := []domain.Bar{
		bar(10.8, 11.5, 10.8, 11.2), // fills the entry stop order
		bar(11.2, 13.0, 11.1, 12.8), // runs to the target
	}
	res := ResolveForward(plannedBull(), future)
	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, 12.95, res.ExitPrice)
	assert.Equal(t, 1, res.ExitIndex)
	assert.InDelta(t, 1.5, res.RMultiple, 1e-9)
}

func TestResolveForwardLoss(t *testing.T) {
	future := []domain.Bar{
		bar(10.8, 11.2, 10.7, 10.9), // fills
		bar(10.9, 11.0, 9.5, 9.6),   // breaks the stop
	}
	res := ResolveForward(plannedBull(), future)
	assert.Equal(t, OutcomeLoss, res.Outcome)
	assert.Equal(t, 9.7, res.ExitPrice)
	assert.Equal(t, 1, res.ExitIndex)
	assert.Equal(t, -1.0, res.RMultiple)
}

func TestResolveForwardTargetBeforeStop(t *testing.T) {
	// One bar straddles both levels: resolution credits the target.
	future := []domain.Bar{bar(11, 13.2, 9.0, 10)}
	res := ResolveForward(plannedBull(), future)
	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, 0, res.ExitIndex)
}

func TestResolveForwardNeverFilled(t *testing.T) {
	future := make([]domain.Bar, 12)
	for i := range future {
		future[i] = bar(10.2, 10.8, 10.1, 10.5) // never reaches the entry
	}
	res := ResolveForward(plannedBull(), future)
	assert.Equal(t, OutcomeUnresolved, res.Outcome)
	assert.Equal(t, -1, res.ExitIndex)
}

func TestResolveForwardHorizon(t *testing.T) {
	future := make([]domain.Bar, 15)
	for i := range future {
		future[i] = bar(11, 11.5, 10.8, 11.2) // filled but going nowhere
	}
	// The winning bar sits past the horizon and must not count.
	future[12] = bar(11.2, 13.5, 11.1, 13.2)

	res := ResolveForward(plannedBull(), future)
	assert.Equal(t, OutcomeUnresolved, res.Outcome)
	assert.Equal(t, -1, res.ExitIndex)
}

func TestResolveForwardBearish(t *testing.T) {
	pos := &domain.Position{
		Direction:  domain.Bearish,
		Entry:      10,
		Stop:       11.3,
		Target:     8.05,
		StopDist:   1.3,
		TargetDist: 1.95,
	}
	future := []domain.Bar{
		bar(10.3, 10.4, 9.8, 10.0), // fills
		bar(10.0, 10.1, 7.9, 8.0),  // target
	}
	res := ResolveForward(pos, future)
	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, 8.05, res.ExitPrice)
}
