package domain

import "time"

// Position represents the single open trade for an asset. It is created on
// entry fill, mutated every bar by the management state machine, and
// destroyed on full exit. TrailActivated and PartialTaken are monotonic:
// once set they never reset within the same trade.
type Position struct {
	Symbol        string
	Setup         SetupType
	Direction     Direction
	Entry         float64
	Stop          float64 // current stop, moves with breakeven/trail
	InitialStop   float64 // stop at entry, defines 1R
	Target        float64
	StopDist      float64 // initial stop distance in price units
	TargetDist    float64
	Size          float64
	RemainingSize float64
	EntryTime     time.Time

	BarsSinceEntry int
	HighWater      float64 // best high seen since entry
	LowWater       float64 // best low seen since entry
	PartialTaken   bool
	TrailActivated bool

	Asset AssetConfig
}

// RMultiple expresses a price move from entry as a multiple of the initial
// stop distance, signed in the position's favor.
func (p *Position) RMultiple(price float64) float64 {
	if p.StopDist == 0 {
		return 0
	}
	if p.Direction == Bearish {
		return (p.Entry - price) / p.StopDist
	}
	return (price - p.Entry) / p.StopDist
}

// FavorableExcursion returns the best R-multiple reached since entry.
func (p *Position) FavorableExcursion() float64 {
	if p.Direction == Bearish {
		return p.RMultiple(p.LowWater)
	}
	return p.RMultiple(p.HighWater)
}

// Trade is a completed (fully or partially closed) trade record.
type Trade struct {
	Symbol      string
	Setup       SetupType
	Direction   Direction
	EntryPrice  float64
	ExitPrice   float64
	Size        float64
	RMultiple   float64
	EntryTime   time.Time
	ExitTime    time.Time
	CloseReason CloseReason
}
