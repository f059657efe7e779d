package domain

// Direction represents the side a signal or position is pointing.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Opposite returns the reverse side. Neutral is its own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Bullish:
		return Bearish
	case Bearish:
		return Bullish
	default:
		return Neutral
	}
}

// Regime labels the structural character of the recent window.
type Regime string

const (
	RegimeNotReady     Regime = "not_ready"
	RegimeBullTrend    Regime = "structural_bull_trend"
	RegimeBearTrend    Regime = "structural_bear_trend"
	RegimeTradingRange Regime = "trading_range"
	RegimeTightRange   Regime = "tight_trading_range"
)

// IsTrend reports whether the regime is a structural trend in either direction.
func (r Regime) IsTrend() bool {
	return r == RegimeBullTrend || r == RegimeBearTrend
}

// CloseReason indicates why a position (or part of it) was closed.
type CloseReason string

const (
	CloseReasonStop    CloseReason = "stop"
	CloseReasonTarget  CloseReason = "target"
	CloseReasonPartial CloseReason = "partial"
	CloseReasonScratch CloseReason = "scratch"
	CloseReasonWeekend CloseReason = "weekend_flatten"
)
