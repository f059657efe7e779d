package risk

import "math"

const (
	regimeWindow      = 20
	regimeBaseline    = 100
	regimeBurnIn      = 50
	regimePauseZScore = -1.0
)

// RegimeGuard pauses trading when recent expectancy degrades significantly
// below the long-run baseline. It z-scores the mean of the last 20 trade
// outcomes against a 100-trade baseline; with fewer than 50 baseline
// samples it never pauses (burn-in).
type RegimeGuard struct {
	recent   []float64
	baseline []float64
	paused   bool
}

// NewRegimeGuard returns an empty, unpaused guard.
func NewRegimeGuard() *RegimeGuard {
	return &RegimeGuard{}
}

// Record folds one trade outcome in and re-evaluates the pause state.
func (r *RegimeGuard) Record(outcome float64) {
	r.recent = appendBounded(r.recent, outcome, regimeWindow)
	r.baseline = appendBounded(r.baseline, outcome, regimeBaseline)
	r.evaluate()
}

// Paused reports whether trading is currently suspended.
func (r *RegimeGuard) Paused() bool { return r.paused }

func (r *RegimeGuard) evaluate() {
	if len(r.baseline) < regimeBurnIn || len(r.recent) < regimeWindow {
		r.paused = false
		return
	}
	baseMean, baseStd := meanStd(r.baseline)
	if baseStd == 0 {
		r.paused = false
		return
	}
	recentMean, _ := meanStd(r.recent)
	z := (recentMean - baseMean) / (baseStd / math.Sqrt(float64(len(r.recent))))
	r.paused = z < regimePauseZScore
}

// Stats returns rolling statistics of the recent window plus the current
// z-score against the baseline; z is 0 when not yet computable.
func (r *RegimeGuard) Stats() (expectancy, winrate, sum, volatility, z float64) {
	if len(r.recent) == 0 {
		return 0, 0, 0, 0, 0
	}
	wins := 0
	for _, v := range r.recent {
		sum += v
		if v > 0 {
			wins++
		}
	}
	expectancy, volatility = meanStd(r.recent)
	winrate = float64(wins) / float64(len(r.recent))

	if len(r.baseline) >= regimeBurnIn && len(r.recent) >= regimeWindow {
		baseMean, baseStd := meanStd(r.baseline)
		if baseStd > 0 {
			z = (expectancy - baseMean) / (baseStd / math.Sqrt(float64(len(r.recent))))
		}
	}
	return expectancy, winrate, sum, volatility, z
}

// Export returns the persistable outcome windows.
func (r *RegimeGuard) Export() (recent, baseline []float64) {
	return append([]float64(nil), r.recent...), append([]float64(nil), r.baseline...)
}

// Restore rebuilds the windows and re-evaluates the pause state.
func (r *RegimeGuard) Restore(recent, baseline []float64) {
	r.recent = appendAllBounded(recent, regimeWindow)
	r.baseline = appendAllBounded(baseline, regimeBaseline)
	r.evaluate()
}

func appendBounded(s []float64, v float64, capacity int) []float64 {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

func appendAllBounded(src []float64, capacity int) []float64 {
	out := append([]float64(nil), src...)
	if len(out) > capacity {
		out = out[len(out)-capacity:]
	}
	return out
}

func meanStd(s []float64) (mean, std float64) {
	if len(s) == 0 {
		return 0, 0
	}
	for _, v := range s {
		mean += v
	}
	mean /= float64(len(s))
	for _, v := range s {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(s)))
	return mean, std
}
