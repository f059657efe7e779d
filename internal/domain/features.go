package domain

// FeatureRecord is the normalized, regime-relative view of a candidate
// signal handed to the probability model and to telemetry. All distances
// are expressed in ATR units.
type FeatureRecord struct {
	Setup                SetupType
	Direction            Direction
	DepthATR             float64
	PullbackBars         int
	VolatilityRatio      float64 // ATR(14) / ATR(50)
	ImpulseSizeATR       float64
	BreakoutStrength     float64
	Hour                 int
	InFirstHour          bool
	DistPriorHighATR     float64
	DistPriorLowATR      float64
	DistSessionHighATR   float64
	DistSessionLowATR    float64
	DistOpenRangeHighATR float64
	DistOpenRangeLowATR  float64
	PressureScore        int
	RegimeProb           float64
}

// ModelAdvice is the advisory output of the external regime-probability
// model. Absence or an untrained model must degrade to permissive values.
type ModelAdvice struct {
	Bias             Direction
	Environment      Regime
	ContinuationProb float64
	Confidence       float64
}
