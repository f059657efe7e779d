package engine

import (
	"math"

	"priceActionBot/internal/domain"
)

const (
	atrPeriod     = 14
	atrSlowPeriod = 50

	depthThresholdATR = 1.0
	pullbackBarsMin   = 2
	pullbackBarsMax   = 4

	levelBufferTrendATR = 0.1
	levelBufferRangeATR = 0.4

	newExtremeLookback = 6
	overlapLookback    = 10
	overlapThreshold   = 0.5

	regimeProbTrendFloor = 0.6
	regimeProbRangeCap   = 0.4
)

// ATR computes a Wilder-smoothed average true range over the trailing
// window. Returns 0 when fewer than period+1 bars are available.
func ATR(bars []domain.Bar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 0
	}
	trs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trs = append(trs, trueRange(bars[i], bars[i-1]))
	}
	atr := 0.0
	for _, tr := range trs[:period] {
		atr += tr
	}
	atr /= float64(period)
	for _, tr := range trs[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr
}

func trueRange(bar, prev domain.Bar) float64 {
	tr := bar.High - bar.Low
	if hc := math.Abs(bar.High - prev.Close); hc > tr {
		tr = hc
	}
	if lc := math.Abs(bar.Low - prev.Close); lc > tr {
		tr = lc
	}
	return tr
}

// PressureScore measures one-sided directional pressure on the last bar,
// 0 to 5. One point each for an outer-30% close, two consecutive
// same-direction closes, above-average range, low overlap with the prior
// bar, and a dominant rejection wick opposite the close side.
func PressureScore(mem []domain.Bar) int {
	if len(mem) < 3 {
		return 0
	}
	last := mem[len(mem)-1]
	prev := mem[len(mem)-2]
	score := 0

	pos := last.ClosePos()
	if pos >= 0.7 || pos <= 0.3 {
		score++
	}

	d1 := last.Close - prev.Close
	d2 := prev.Close - mem[len(mem)-3].Close
	if (d1 > 0 && d2 > 0) || (d1 < 0 && d2 < 0) {
		score++
	}

	prior := mem[:len(mem)-1]
	if n := len(prior); n > 10 {
		prior = prior[n-10:]
	}
	avg := 0.0
	for _, b := range prior {
		avg += b.Range()
	}
	avg /= float64(len(prior))
	if last.Range() > avg {
		score++
	}

	if last.Overlap(prev) < 0.3 {
		score++
	}

	rng := last.Range()
	if rng > 0 {
		upper := last.High - math.Max(last.Open, last.Close)
		lower := math.Min(last.Open, last.Close) - last.Low
		if pos > 0.5 && lower > upper && lower >= 0.3*rng {
			score++
		} else if pos < 0.5 && upper > lower && upper >= 0.3*rng {
			score++
		}
	}
	return score
}

// RegimeProbability folds the pressure score, the count of fresh six-bar
// extremes, and the ten-bar overlap count into a continuous trend/range
// estimate in [0,1]; structural labels clamp the result to their side.
func RegimeProbability(mem []domain.Bar, pressure int, regime domain.Regime) float64 {
	newExtremes := 0
	start := len(mem) - newExtremeLookback
	if start < 1 {
		start = 1
	}
	for i := start; i < len(mem); i++ {
		if mem[i].High > mem[i-1].High || mem[i].Low < mem[i-1].Low {
			newExtremes++
		}
	}

	overlaps := 0
	start = len(mem) - overlapLookback
	if start < 1 {
		start = 1
	}
	for i := start; i < len(mem); i++ {
		if mem[i].Overlap(mem[i-1]) > overlapThreshold {
			overlaps++
		}
	}

	trendScore := float64(pressure + newExtremes)
	rangeScore := float64(overlaps)
	p := 0.5
	if trendScore+rangeScore > 0 {
		p = trendScore / (trendScore + rangeScore)
	}

	if regime.IsTrend() && p < regimeProbTrendFloor {
		p = regimeProbTrendFloor
	}
	if regime == domain.RegimeTradingRange && p > regimeProbRangeCap {
		p = regimeProbRangeCap
	}
	return p
}

// BuildFeatures derives the normalized feature record for a signal that
// survived orchestration. Distances to reference levels are signed in the
// trade direction: positive means the level sits ahead of the trade.
func BuildFeatures(sig *domain.Signal, mem []domain.Bar, sess *SessionContext) *domain.FeatureRecord {
	atr := ATR(mem, atrPeriod)
	if atr == 0 {
		return nil
	}
	slow := ATR(mem, atrSlowPeriod)
	volRatio := 1.0
	if slow > 0 {
		volRatio = atr / slow
	}

	rec := &domain.FeatureRecord{
		Setup:           sig.Setup,
		Direction:       sig.Direction,
		DepthATR:        sig.PullbackDepth / atr,
		PullbackBars:    sig.PullbackBars,
		VolatilityRatio: volRatio,
		Hour:            sig.Time.In(estLocation).Hour(),
		InFirstHour:     sess.InFirstHour(sig.Time),
		PressureScore:   sig.PressureScore,
		RegimeProb:      sig.RegimeProb,
	}

	if sig.IsBreakoutStyle() {
		rec.BreakoutStrength = sig.PullbackDepth / atr
	} else {
		rec.ImpulseSizeATR = impulseSize(mem) / atr
	}

	ahead := func(level float64) float64 {
		if sig.Direction == domain.Bullish {
			return (level - sig.Price) / atr
		}
		return (sig.Price - level) / atr
	}
	if sess.HavePriorDay() {
		rec.DistPriorHighATR = ahead(sess.PriorDayHigh)
		rec.DistPriorLowATR = ahead(sess.PriorDayLow)
	}
	rec.DistSessionHighATR = ahead(sess.DayHigh)
	rec.DistSessionLowATR = ahead(sess.DayLow)
	rec.DistOpenRangeHighATR = ahead(sess.OpenRangeHigh)
	rec.DistOpenRangeLowATR = ahead(sess.OpenRangeLow)

	return rec
}

// impulseSize measures the prior directional leg for measured-move
// targeting: the full span of the trailing 20 bars.
func impulseSize(mem []domain.Bar) float64 {
	window := tailBars(mem, 20)
	size := maxHigh(window) - minLow(window)
	if size < 0 {
		return 0
	}
	return size
}

// FilterSignal applies the hard structural filters. It returns false with
// a reason string when the signal must be discarded. Breakout-style
// signals skip the pullback depth/duration checks; every signal is
// checked against the reference levels that lie just ahead of it.
func FilterSignal(sig *domain.Signal, rec *domain.FeatureRecord, sess *SessionContext, asset domain.AssetConfig, regime domain.Regime) (bool, string) {
	if !sig.IsBreakoutStyle() {
		threshold := depthThresholdATR * asset.ATRFilter
		if rec.DepthATR < threshold {
			return false, "pullback_too_shallow"
		}
		if rec.PullbackBars < pullbackBarsMin || rec.PullbackBars > pullbackBarsMax {
			return false, "pullback_duration"
		}
	}

	buffer := levelBufferRangeATR
	if regime.IsTrend() {
		buffer = levelBufferTrendATR
	}

	// A level sitting ahead of the trade inside the buffer is a magnet
	// the trade would run straight into.
	blocked := func(dist float64, have bool) bool {
		return have && dist > 0 && dist < buffer
	}
	if sig.Direction == domain.Bullish {
		if blocked(rec.DistSessionHighATR, true) {
			return false, "into_session_high"
		}
		if blocked(rec.DistPriorHighATR, sess.HavePriorDay()) {
			return false, "into_prior_day_high"
		}
		if blocked(rec.DistOpenRangeHighATR, !sess.InFirstHour(sig.Time)) {
			return false, "into_open_range_high"
		}
	} else {
		if blocked(rec.DistSessionLowATR, true) {
			return false, "into_session_low"
		}
		if blocked(rec.DistPriorLowATR, sess.HavePriorDay()) {
			return false, "into_prior_day_low"
		}
		if blocked(rec.DistOpenRangeLowATR, !sess.InFirstHour(sig.Time)) {
			return false, "into_open_range_low"
		}
	}
	return true, ""
}
