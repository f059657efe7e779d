package risk

// Risk fractions per model-confidence band. Bands are checked highest
// first; the fractions are monotone so more confidence never risks less.
var confidenceBands = []struct {
	minConfidence float64
	fraction      float64
}{
	{0.8, 0.0125},
	{0.7, 0.01},
	{0.6, 0.0075},
	{0.0, 0.005},
}

const (
	toughRiskFraction = 0.003

	// observationDrawdown flips the sizer to observation mode: signals are
	// still tracked but sized to zero for the rest of the session.
	observationDrawdown = 0.02
)

// SizeRequest carries everything the sizer needs for one trade.
type SizeRequest struct {
	Equity          float64
	StopDist        float64
	Confidence      float64
	Tough           bool
	RiskOverride    float64 // per-signal reduced fraction, 0 means none
	SessionDrawdown float64 // current session loss as a fraction of equity
}

// Size converts an account risk fraction and a stop distance into a trade
// size in asset units. Zero means the trade must not be taken.
func Size(req SizeRequest) float64 {
	if req.Equity <= 0 || req.StopDist <= 0 {
		return 0
	}
	if req.SessionDrawdown > observationDrawdown {
		return 0
	}

	fraction := confidenceBands[len(confidenceBands)-1].fraction
	for _, band := range confidenceBands {
		if req.Confidence >= band.minConfidence {
			fraction = band.fraction
			break
		}
	}
	if req.Tough && fraction > toughRiskFraction {
		fraction = toughRiskFraction
	}
	if req.RiskOverride > 0 && fraction > req.RiskOverride {
		fraction = req.RiskOverride
	}

	return req.Equity * fraction / req.StopDist
}
