// Package patterns holds the stateless setup detectors. Each detector is a
// pure function of the trailing memory window and the always-in bias; it
// returns nil when the setup is not present. Detectors never gate on
// regime, cooldowns, or follow-through — that sequencing belongs to the
// orchestrator.
package patterns

import "priceActionBot/internal/domain"

const (
	secondEntryLookback = 30
	secondEntryMinBars  = 10

	signalClosePosBull   = 0.65
	signalClosePosBear   = 0.35
	signalMinBodyRatio   = 0.40
	microDoubleBodyRatio = 0.30
	microDoubleATRBand   = 0.15
)

type walkState int

const (
	walkPullbackLeg walkState = iota
	walkBounce
	walkPriorLeg
	walkImpulse
)

// DetectSecondEntry finds a two-legged pullback (H2/L2): walking backward
// from the signal bar it must identify, in order, the reversal leg, the
// bounce leg, the prior pullback leg, and the impulse origin. The signal
// bar has to close beyond 0.65/0.35 with body ratio above 0.4, relaxed to
// 0.3 when a micro double top/bottom sits within 0.15 ATR of the prior two
// bars. If a further completed leg is found past the H2, the setup is
// upgraded to a third entry.
func DetectSecondEntry(memory []domain.Bar, bias domain.Direction) *domain.Signal {
	if bias != domain.Bullish && bias != domain.Bearish {
		return nil
	}
	if len(memory) < secondEntryMinBars {
		return nil
	}

	mem := tail(memory, secondEntryLookback)
	signalBar := mem[len(mem)-1]

	depth, pullbackBars, impulseIdx, ok := walkTwoLegs(mem, bias)
	if !ok {
		return nil
	}

	rng := signalBar.Range()
	if rng == 0 {
		return nil
	}
	closePos := signalBar.ClosePos()
	bodyRatio := signalBar.BodyRatio()

	// Micro double top/bottom: two bars testing the same extreme is a trap
	// worth a relaxed body threshold.
	atr := meanRange(tail(mem, 14))
	microDouble := false
	if len(mem) >= 3 && atr > 0 {
		prev2, prev1 := mem[len(mem)-3], mem[len(mem)-2]
		if bias == domain.Bullish {
			microDouble = abs(prev1.Low-prev2.Low) < microDoubleATRBand*atr
		} else {
			microDouble = abs(prev1.High-prev2.High) < microDoubleATRBand*atr
		}
	}

	minBody := signalMinBodyRatio
	if microDouble {
		minBody = microDoubleBodyRatio
	}
	if bias == domain.Bullish {
		if !(closePos > signalClosePosBull && bodyRatio > minBody) {
			return nil
		}
	} else {
		if !(closePos < signalClosePosBear && bodyRatio > minBody) {
			return nil
		}
	}

	setup := domain.SetupSecondEntry
	if impulseIdx > 0 && hasThirdLeg(mem, bias, impulseIdx-1) {
		setup = domain.SetupThirdEntry
	}

	return &domain.Signal{
		Setup:         setup,
		Direction:     bias,
		Time:          signalBar.Time,
		Price:         signalBar.Close,
		PullbackDepth: depth,
		PullbackBars:  pullbackBars,
		MicroDouble:   microDouble,
	}
}

// walkTwoLegs runs the backward state walk from the bar before the signal
// bar. It returns the pullback depth, the number of bars covered by the
// pullback structure, and the index where the impulse origin was found.
func walkTwoLegs(mem []domain.Bar, bias domain.Direction) (depth float64, bars int, impulseIdx int, ok bool) {
	i := len(mem) - 2
	state := walkPullbackLeg
	covered := []domain.Bar{mem[len(mem)-1]}

	if bias == domain.Bullish {
		for i > 0 && state == walkPullbackLeg {
			bar := mem[i]
			covered = append(covered, bar)
			if bar.IsBull() && bar.High > mem[i-1].High {
				state = walkBounce
			}
			i--
		}
		if state != walkBounce {
			return 0, 0, 0, false
		}
		for i > 0 && state == walkBounce {
			bar := mem[i]
			covered = append(covered, bar)
			if bar.IsBear() && bar.High < mem[i-1].High {
				state = walkPriorLeg
			}
			i--
		}
		if state != walkPriorLeg {
			return 0, 0, 0, false
		}
		for i >= 0 && state == walkPriorLeg {
			bar := mem[i]
			covered = append(covered, bar)
			prevHigh := bar.High - 1
			if i > 0 {
				prevHigh = mem[i-1].High
			}
			if bar.IsBull() && bar.High > prevHigh {
				state = walkImpulse
				break
			}
			i--
		}
		if state != walkImpulse {
			return 0, 0, 0, false
		}
		lo, hi := coveredExtremes(covered)
		return hi - lo, len(covered), i, true
	}

	for i > 0 && state == walkPullbackLeg {
		bar := mem[i]
		covered = append(covered, bar)
		if bar.IsBear() && bar.Low < mem[i-1].Low {
			state = walkBounce
		}
		i--
	}
	if state != walkBounce {
		return 0, 0, 0, false
	}
	for i > 0 && state == walkBounce {
		bar := mem[i]
		covered = append(covered, bar)
		if bar.IsBull() && bar.Low > mem[i-1].Low {
			state = walkPriorLeg
		}
		i--
	}
	if state != walkPriorLeg {
		return 0, 0, 0, false
	}
	for i >= 0 && state == walkPriorLeg {
		bar := mem[i]
		covered = append(covered, bar)
		prevLow := bar.Low + 1
		if i > 0 {
			prevLow = mem[i-1].Low
		}
		if bar.IsBear() && bar.Low < prevLow {
			state = walkImpulse
			break
		}
		i--
	}
	if state != walkImpulse {
		return 0, 0, 0, false
	}
	lo, hi := coveredExtremes(covered)
	return hi - lo, len(covered), i, true
}

// hasThirdLeg continues the walk past the H2 impulse origin looking for one
// more completed pullback leg, which upgrades the setup to an H3/L3.
func hasThirdLeg(mem []domain.Bar, bias domain.Direction, from int) bool {
	j := from
	found := false
	if bias == domain.Bullish {
		for j > 0 && !found {
			bar := mem[j]
			if bar.IsBull() && bar.High > mem[j-1].High {
				found = true
			}
			j--
		}
		if !found {
			return false
		}
		for j > 0 {
			bar := mem[j]
			if bar.IsBear() && bar.High < mem[j-1].High {
				return true
			}
			j--
		}
		return false
	}
	for j > 0 && !found {
		bar := mem[j]
		if bar.IsBear() && bar.Low < mem[j-1].Low {
			found = true
		}
		j--
	}
	if !found {
		return false
	}
	for j > 0 {
		bar := mem[j]
		if bar.IsBull() && bar.Low > mem[j-1].Low {
			return true
		}
		j--
	}
	return false
}

func coveredExtremes(bars []domain.Bar) (lo, hi float64) {
	lo, hi = bars[0].Low, bars[0].High
	for _, b := range bars[1:] {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
	}
	return lo, hi
}

func tail(bars []domain.Bar, n int) []domain.Bar {
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}

func meanRange(bars []domain.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += b.Range()
	}
	return sum / float64(len(bars))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
