package patterns

import "priceActionBot/internal/domain"

const (
	wedgeLookback     = 30
	wedgeMinBars      = 15
	wedgePushWindow   = 3
	wedgeBearClosePos = 0.4 // reversal bar closes in the bottom 40%
	wedgeBullClosePos = 0.6
)

type push struct {
	idx     int
	extreme float64
	body    float64
}

// DetectWedge finds a three-push reversal: three successive pushes to
// higher highs (against a bullish trend) or lower lows (against a bearish
// trend) with shrinking push bodies, capped by a bar closing against the
// push direction. The emitted signal points opposite the trend.
func DetectWedge(memory []domain.Bar, trendDirection domain.Direction) *domain.Signal {
	if len(memory) < wedgeMinBars {
		return nil
	}
	mem := tail(memory, wedgeLookback)
	signalBar := mem[len(mem)-1]
	rng := signalBar.Range()
	if rng == 0 {
		return nil
	}
	closePos := signalBar.ClosePos()

	switch trendDirection {
	case domain.Bullish:
		// Bear wedge: pushes up losing momentum.
		var pushes []push
		for k := 5; k < len(mem); k++ {
			start := k - wedgePushWindow
			if start < 0 {
				start = 0
			}
			if mem[k].High > maxHigh(mem[start:k]) {
				pushes = append(pushes, push{idx: k, extreme: mem[k].High, body: mem[k].Body()})
			}
		}
		if len(pushes) < 3 {
			return nil
		}
		last3 := pushes[len(pushes)-3:]
		if !(last3[0].extreme < last3[1].extreme && last3[1].extreme < last3[2].extreme) {
			return nil
		}
		if !(last3[2].body < last3[0].body) {
			return nil
		}
		if closePos >= wedgeBearClosePos {
			return nil
		}
		depth := last3[2].extreme - minLow(tail(mem, 5))
		return &domain.Signal{
			Setup:         domain.SetupWedgeReversal,
			Direction:     domain.Bearish,
			Time:          signalBar.Time,
			Price:         signalBar.Close,
			PullbackDepth: depth,
			PullbackBars:  3,
			Pushes:        3,
		}

	case domain.Bearish:
		// Bull wedge: pushes down losing momentum.
		var pushes []push
		for k := 5; k < len(mem); k++ {
			start := k - wedgePushWindow
			if start < 0 {
				start = 0
			}
			if mem[k].Low < minLow(mem[start:k]) {
				pushes = append(pushes, push{idx: k, extreme: mem[k].Low, body: mem[k].Body()})
			}
		}
		if len(pushes) < 3 {
			return nil
		}
		last3 := pushes[len(pushes)-3:]
		if !(last3[0].extreme > last3[1].extreme && last3[1].extreme > last3[2].extreme) {
			return nil
		}
		if !(last3[2].body < last3[0].body) {
			return nil
		}
		if closePos <= wedgeBullClosePos {
			return nil
		}
		depth := maxHigh(tail(mem, 5)) - last3[2].extreme
		return &domain.Signal{
			Setup:         domain.SetupWedgeReversal,
			Direction:     domain.Bullish,
			Time:          signalBar.Time,
			Price:         signalBar.Close,
			PullbackDepth: depth,
			PullbackBars:  3,
			Pushes:        3,
		}
	}
	return nil
}
