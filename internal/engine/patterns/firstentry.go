package patterns

import "priceActionBot/internal/domain"

const (
	firstEntryLookback  = 20
	firstEntryMinBars   = 10
	firstEntryMinSeq    = 3
	firstEntryMaxPBWalk = 8
)

// DetectFirstEntry finds a single-leg pullback (H1/L1). It only fires in a
// very strong trend — the trailing strong-bar sequence must be at least 3 —
// and requires at least one pullback bar followed by a signal-bar reversal
// of the same quality as an H2.
func DetectFirstEntry(memory []domain.Bar, bias domain.Direction, sequence int) *domain.Signal {
	if bias != domain.Bullish && bias != domain.Bearish {
		return nil
	}
	if len(memory) < firstEntryMinBars {
		return nil
	}
	if sequence < firstEntryMinSeq {
		return nil
	}

	mem := tail(memory, firstEntryLookback)
	signalBar := mem[len(mem)-1]
	rng := signalBar.Range()
	if rng == 0 {
		return nil
	}
	closePos := signalBar.ClosePos()
	bodyRatio := signalBar.BodyRatio()

	if bias == domain.Bullish {
		if !(closePos > signalClosePosBull && bodyRatio > signalMinBodyRatio) {
			return nil
		}
	} else {
		if !(closePos < signalClosePosBear && bodyRatio > signalMinBodyRatio) {
			return nil
		}
	}

	// Count consecutive counter-trend bars immediately before the signal bar.
	pbBars := 0
	lowStop := len(mem) - firstEntryMaxPBWalk
	if lowStop < 0 {
		lowStop = 0
	}
	for j := len(mem) - 2; j > lowStop; j-- {
		counter := mem[j].IsBear()
		if bias == domain.Bearish {
			counter = mem[j].IsBull()
		}
		if counter {
			pbBars++
		} else {
			break
		}
	}
	if pbBars < 1 {
		return nil
	}

	var depth float64
	if bias == domain.Bullish {
		depth = maxHigh(tail(mem, pbBars+2)) - minLow(tail(mem, pbBars+1))
	} else {
		depth = maxHigh(tail(mem, pbBars+1)) - minLow(tail(mem, pbBars+2))
	}

	return &domain.Signal{
		Setup:         domain.SetupFirstEntry,
		Direction:     bias,
		Time:          signalBar.Time,
		Price:         signalBar.Close,
		PullbackDepth: depth,
		PullbackBars:  pbBars + 1,
	}
}

func maxHigh(bars []domain.Bar) float64 {
	m := bars[0].High
	for _, b := range bars[1:] {
		if b.High > m {
			m = b.High
		}
	}
	return m
}

func minLow(bars []domain.Bar) float64 {
	m := bars[0].Low
	for _, b := range bars[1:] {
		if b.Low < m {
			m = b.Low
		}
	}
	return m
}
