package trade

import "priceActionBot/internal/domain"

// BacktestHorizon bounds the forward scan when resolving a planned trade
// against historical bars.
const BacktestHorizon = 10

// Outcome is the result of a historical resolution.
type Outcome int

const (
	// OutcomeUnresolved means neither side was touched within the horizon.
	// Unresolved trades carry no outcome; they are excluded from statistics
	// rather than counted as losses.
	OutcomeUnresolved Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// Resolution describes how a planned trade played out over future bars.
type Resolution struct {
	Outcome   Outcome
	ExitPrice float64
	ExitIndex int // index into the future slice, -1 when unresolved
	RMultiple float64
}

// ResolveForward scans future bars for the first touch of target or stop.
// Entry is a stop order at the signal bar's extreme: the scan first waits
// for a bar to trade through the entry, then checks target before stop on
// each bar, matching how winners were credited when the thresholds were
// originally tuned.
func ResolveForward(pos *domain.Position, future []domain.Bar) Resolution {
	horizon := BacktestHorizon
	if len(future) < horizon {
		horizon = len(future)
	}

	filled := false
	for i := 0; i < horizon; i++ {
		bar := future[i]
		if !filled {
			if pos.Direction == domain.Bullish && bar.High < pos.Entry {
				continue
			}
			if pos.Direction == domain.Bearish && bar.Low > pos.Entry {
				continue
			}
			filled = true
		}

		if pos.Direction == domain.Bullish {
			if bar.High >= pos.Target {
				return Resolution{Outcome: OutcomeWin, ExitPrice: pos.Target, ExitIndex: i, RMultiple: pos.TargetDist / pos.StopDist}
			}
			if bar.Low <= pos.Stop {
				return Resolution{Outcome: OutcomeLoss, ExitPrice: pos.Stop, ExitIndex: i, RMultiple: -1}
			}
		} else {
			if bar.Low <= pos.Target {
				return Resolution{Outcome: OutcomeWin, ExitPrice: pos.Target, ExitIndex: i, RMultiple: pos.TargetDist / pos.StopDist}
			}
			if bar.High >= pos.Stop {
				return Resolution{Outcome: OutcomeLoss, ExitPrice: pos.Stop, ExitIndex: i, RMultiple: -1}
			}
		}
	}
	return Resolution{Outcome: OutcomeUnresolved, ExitIndex: -1}
}
