package domain

import "time"

// Bar represents a single closed OHLC candlestick. Bars are immutable once
// appended to memory; all derived descriptors are recomputed per bar.
type Bar struct {
	Time  time.Time // Open time of the interval
	Open  float64   // Opening price
	High  float64   // Highest price
	Low   float64   // Lowest price
	Close float64   // Closing price
}

// Range returns the full high-low extent of the bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Body returns the absolute open-close distance.
func (b Bar) Body() float64 {
	d := b.Close - b.Open
	if d < 0 {
		return -d
	}
	return d
}

// ClosePos returns where the close sits within the bar range, 0 at the low
// and 1 at the high. A zero-range bar reports 0.5.
func (b Bar) ClosePos() float64 {
	r := b.Range()
	if r == 0 {
		return 0.5
	}
	return (b.Close - b.Low) / r
}

// BodyRatio returns body size relative to range. Zero-range bars report 0.
func (b Bar) BodyRatio() float64 {
	r := b.Range()
	if r == 0 {
		return 0
	}
	return b.Body() / r
}

// IsBull reports whether the bar closed above its open.
func (b Bar) IsBull() bool { return b.Close > b.Open }

// IsBear reports whether the bar closed below its open.
func (b Bar) IsBear() bool { return b.Close < b.Open }

// Overlap returns the fraction of this bar's range shared with prev.
func (b Bar) Overlap(prev Bar) float64 {
	r := b.Range()
	if r == 0 {
		return 0
	}
	hi := b.High
	if prev.High < hi {
		hi = prev.High
	}
	lo := b.Low
	if prev.Low > lo {
		lo = prev.Low
	}
	if hi <= lo {
		return 0
	}
	return (hi - lo) / r
}

// Inside reports whether the bar is fully contained by prev.
func (b Bar) Inside(prev Bar) bool {
	return b.High <= prev.High && b.Low >= prev.Low
}

// Outside reports whether the bar fully engulfs prev.
func (b Bar) Outside(prev Bar) bool {
	return b.High > prev.High && b.Low < prev.Low
}
