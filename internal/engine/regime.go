package engine

import "priceActionBot/internal/domain"

const (
	regimeLookback     = 20
	ttrLookback        = 7
	ttrMinOverlaps     = ttrLookback - 2 // 5 of 6 consecutive pairs
	ttrBodyRangeFactor = 0.5
	trendMinStrongBars = 2
	pivotLookback      = 40
	pivotMinBars       = 10
)

// ClassifyRegime labels the trailing window as a tight trading range, a
// structural trend, or a plain trading range. The tight-trading-range label
// short-circuits the orchestrator for the bar.
func ClassifyRegime(window []domain.Bar) domain.Regime {
	if len(window) < regimeLookback {
		return domain.RegimeNotReady
	}
	recent := window[len(window)-regimeLookback:]

	// Tight trading range: heavily overlapping small-bodied bars.
	ttr := recent[len(recent)-ttrLookback:]
	overlaps := 0
	var sumRange, sumBody float64
	for i, b := range ttr {
		r := b.Range()
		if r < 1e-9 {
			r = 1e-9
		}
		sumRange += r
		sumBody += b.Body()
		if i == 0 {
			continue
		}
		prev := ttr[i-1]
		hi := min(b.High, prev.High)
		lo := max(b.Low, prev.Low)
		if hi > lo {
			overlaps++
		}
	}
	avgRange := sumRange / float64(len(ttr))
	avgBody := sumBody / float64(len(ttr))
	if overlaps >= ttrMinOverlaps && avgBody < avgRange*ttrBodyRangeFactor {
		return domain.RegimeTightRange
	}

	// Strong bar counts and half-window structural progression.
	strongBull, strongBear := 0, 0
	for _, b := range recent {
		if b.Range() == 0 {
			continue
		}
		pos := b.ClosePos()
		if pos > strongClosePosBull {
			strongBull++
		} else if pos < strongClosePosBear {
			strongBear++
		}
	}

	mid := len(recent) / 2
	firstHigh, secondHigh := maxHigh(recent[:mid]), maxHigh(recent[mid:])
	firstLow, secondLow := minLow(recent[:mid]), minLow(recent[mid:])

	if strongBull >= trendMinStrongBars && secondHigh > firstHigh && secondLow > firstLow {
		return domain.RegimeBullTrend
	}
	if strongBear >= trendMinStrongBars && secondLow < firstLow && secondHigh < firstHigh {
		return domain.RegimeBearTrend
	}
	return domain.RegimeTradingRange
}

// AlwaysInDirection derives the structurally implied trend side from swing
// pivots: a pivot high/low is a 3-bar local extremum, and the direction is
// bullish only when the two most recent pivot highs and pivot lows are both
// rising (symmetric for bearish). When non-neutral it overrides the
// slope-based trend direction as the orchestrator's bias input.
func AlwaysInDirection(window []domain.Bar) domain.Direction {
	if len(window) < pivotMinBars {
		return domain.Neutral
	}
	mem := window
	if len(mem) > pivotLookback {
		mem = mem[len(mem)-pivotLookback:]
	}

	var pivotHighs, pivotLows []float64
	for k := 1; k < len(mem)-1; k++ {
		if mem[k].High >= mem[k-1].High && mem[k].High >= mem[k+1].High {
			pivotHighs = append(pivotHighs, mem[k].High)
		}
		if mem[k].Low <= mem[k-1].Low && mem[k].Low <= mem[k+1].Low {
			pivotLows = append(pivotLows, mem[k].Low)
		}
	}
	if len(pivotHighs) < 2 || len(pivotLows) < 2 {
		return domain.Neutral
	}

	lastPH, prevPH := pivotHighs[len(pivotHighs)-1], pivotHighs[len(pivotHighs)-2]
	lastPL, prevPL := pivotLows[len(pivotLows)-1], pivotLows[len(pivotLows)-2]

	if lastPH > prevPH && lastPL > prevPL {
		return domain.Bullish
	}
	if lastPH < prevPH && lastPL < prevPL {
		return domain.Bearish
	}
	return domain.Neutral
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
