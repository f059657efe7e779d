package engine

import "priceActionBot/internal/domain"

// BarType classifies the most recent bar's strength and side.
type BarType string

const (
	BarNeutral    BarType = "neutral"
	BarStrongBull BarType = "strong_bull"
	BarStrongBear BarType = "strong_bear"
)

const (
	strongBodyFactor     = 1.2  // body vs mean body of the window
	strongClosePosBull   = 0.75 // close in the top quarter
	strongClosePosBear   = 0.25 // close in the bottom quarter
	climacticRangeFactor = 1.3  // range vs mean range of the window
	climacticMinSequence = 3
)

// BarDescriptor is a derived, per-bar view over a memory window. It is
// recomputed every bar and never persisted.
type BarDescriptor struct {
	Type       BarType
	Strong     bool
	Sequence   int  // consecutive trailing bars of the same strong type
	Climactic  bool // sequence >= 3 and range > 1.3x mean range
	UpperTail  float64
	LowerTail  float64
	OverlapPct float64
	IsInside   bool
	IsOutside  bool
}

// ClassifyBar builds the descriptor for the last bar of the window.
// The window should be the trailing lookback slice (20 bars); shorter
// windows yield a neutral descriptor.
func ClassifyBar(window []domain.Bar) BarDescriptor {
	var desc BarDescriptor
	desc.Type = BarNeutral
	if len(window) < 2 {
		return desc
	}

	last := window[len(window)-1]
	rng := last.Range()
	body := last.Body()

	var meanBody, meanRange float64
	for _, b := range window[:len(window)-1] {
		meanBody += b.Body()
		meanRange += b.Range()
	}
	meanBody /= float64(len(window) - 1)
	meanRange /= float64(len(window) - 1)

	desc.Strong = body > strongBodyFactor*meanBody && rng > 0

	closePos := last.ClosePos()
	if desc.Strong {
		if closePos > strongClosePosBull {
			desc.Type = BarStrongBull
		} else if closePos < strongClosePosBear {
			desc.Type = BarStrongBear
		}
	}

	// Count consecutive trailing bars matching the same strong classification,
	// scanning backward until the first break.
	if desc.Type != BarNeutral {
		for i := len(window) - 1; i >= 0; i-- {
			b := window[i]
			if b.Range() == 0 {
				break
			}
			strong := b.Body() > strongBodyFactor*meanBody
			pos := b.ClosePos()
			if desc.Type == BarStrongBull && strong && pos > strongClosePosBull {
				desc.Sequence++
			} else if desc.Type == BarStrongBear && strong && pos < strongClosePosBear {
				desc.Sequence++
			} else {
				break
			}
		}
	}

	desc.Climactic = desc.Sequence >= climacticMinSequence && rng > climacticRangeFactor*meanRange

	// Tails relative to the body side (weakness indicators).
	if rng > 0 {
		if last.IsBull() {
			desc.UpperTail = (last.High - last.Close) / rng
			desc.LowerTail = (last.Open - last.Low) / rng
		} else {
			desc.UpperTail = (last.High - last.Open) / rng
			desc.LowerTail = (last.Close - last.Low) / rng
		}
	}

	prev := window[len(window)-2]
	desc.OverlapPct = last.Overlap(prev)
	desc.IsInside = last.Inside(prev)
	desc.IsOutside = last.Outside(prev)

	return desc
}
