package engine

import (
	"testing"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
)

func bar(o, h, l, c float64) domain.Bar {
	return domain.Bar{Open: o, High: h, Low: l, Close: c}
}

// neutralBar has range 1.0 and body 0.3, small enough to never classify
// as strong against itself.
func neutralBar() domain.Bar { return bar(10.2, 11, 10, 10.5) }

func neutralWindow(n int) []domain.Bar {
	window := make([]domain.Bar, n)
	for i := range window {
		window[i] = neutralBar()
	}
	return window
}

func TestClassifyBarStrongBull(t *testing.T) {
	window := neutralWindow(19)
	window = append(window, bar(10, 11, 10, 10.9)) // body 0.9, close at 90%

	desc := ClassifyBar(window)
	assert.Equal(t, BarStrongBull, desc.Type)
	assert.True(t, desc.Strong)
	assert.Equal(t, 1, desc.Sequence)
	assert.False(t, desc.Climactic)
}

func TestClassifyBarStrongBear(t *testing.T) {
	window := neutralWindow(19)
	window = append(window, bar(11, 11, 10, 10.1))

	desc := ClassifyBar(window)
	assert.Equal(t, BarStrongBear, desc.Type)
	assert.Equal(t, 1, desc.Sequence)
}

func TestClassifyBarClimactic(t *testing.T) {
	window := neutralWindow(17)
	window = append(window,
		bar(10, 11, 10, 10.9),
		bar(10, 11, 10, 10.9),
		bar(10, 12, 10, 11.9), // third strong bull, double range
	)

	desc := ClassifyBar(window)
	assert.Equal(t, BarStrongBull, desc.Type)
	assert.Equal(t, 3, desc.Sequence)
	assert.True(t, desc.Climactic)
}

func TestClassifyBarInsideOutside(t *testing.T) {
	window := neutralWindow(19)
	window = append(window, bar(10.4, 10.8, 10.2, 10.6))
	desc := ClassifyBar(window)
	assert.True(t, desc.IsInside)
	assert.False(t, desc.IsOutside)
	assert.Equal(t, BarNeutral, desc.Type)

	window[len(window)-1] = bar(10.5, 11.5, 9.5, 11.2)
	desc = ClassifyBar(window)
	assert.True(t, desc.IsOutside)
	assert.False(t, desc.IsInside)
}

func TestClassifyBarShortWindow(t *testing.T) {
	desc := ClassifyBar([]domain.Bar{neutralBar()})
	assert.Equal(t, BarNeutral, desc.Type)
	assert.False(t, desc.Strong)
	assert.Equal(t, 0, desc.Sequence)
}

func TestClassifyBarTails(t *testing.T) {
	window := neutralWindow(19)
	// Bull bar with a long lower tail: O=10.5, L=10, C=10.9, H=11.
	window = append(window, bar(10.5, 11, 10, 10.9))
	desc := ClassifyBar(window)
	assert.InDelta(t, 0.1, desc.UpperTail, 1e-9)
	assert.InDelta(t, 0.5, desc.LowerTail, 1e-9)
}
