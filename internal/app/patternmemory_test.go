package app

import (
	"testing"

	"priceActionBot/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPatternMemoryHalving(t *testing.T) {
	pm := NewPatternMemory()
	assert.Equal(t, 1.0, pm.Confidence(domain.SetupSecondEntry))

	// One loss is noise; the second starts halving.
	pm.Record(domain.SetupSecondEntry, false)
	assert.Equal(t, 1.0, pm.Confidence(domain.SetupSecondEntry))

	pm.Record(domain.SetupSecondEntry, false)
	assert.Equal(t, 0.5, pm.Confidence(domain.SetupSecondEntry))

	pm.Record(domain.SetupSecondEntry, false)
	assert.Equal(t, 0.25, pm.Confidence(domain.SetupSecondEntry))

	pm.Record(domain.SetupSecondEntry, false)
	assert.Equal(t, 0.125, pm.Confidence(domain.SetupSecondEntry))

	// The floor stops the slide.
	pm.Record(domain.SetupSecondEntry, false)
	assert.Equal(t, 0.1, pm.Confidence(domain.SetupSecondEntry))

	// Setups are independent.
	assert.Equal(t, 1.0, pm.Confidence(domain.SetupBreakout))
}

func TestPatternMemoryRecovery(t *testing.T) {
	pm := NewPatternMemory()
	pm.Record(domain.SetupWedgeReversal, false)
	pm.Record(domain.SetupWedgeReversal, false)
	assert.Equal(t, 0.5, pm.Confidence(domain.SetupWedgeReversal))

	pm.Record(domain.SetupWedgeReversal, true)
	assert.InDelta(t, 0.6, pm.Confidence(domain.SetupWedgeReversal), 1e-9)

	// Recovery caps at full confidence.
	for i := 0; i < 10; i++ {
		pm.Record(domain.SetupWedgeReversal, true)
	}
	assert.Equal(t, 1.0, pm.Confidence(domain.SetupWedgeReversal))
}

func TestPatternMemoryExportRestore(t *testing.T) {
	pm := NewPatternMemory()
	pm.Record(domain.SetupSecondEntry, false)
	pm.Record(domain.SetupSecondEntry, false)
	pm.Record(domain.SetupBreakout, true)

	results, confidence := pm.Export()

	restored := NewPatternMemory()
	restored.Restore(results, confidence)
	assert.Equal(t, 0.5, restored.Confidence(domain.SetupSecondEntry))
	assert.Equal(t, 1.0, restored.Confidence(domain.SetupBreakout))

	// A third loss after restore keeps halving from where it left off.
	restored.Restore(results, confidence)
	restored.Record(domain.SetupSecondEntry, false)
	assert.Equal(t, 0.25, restored.Confidence(domain.SetupSecondEntry))
}
