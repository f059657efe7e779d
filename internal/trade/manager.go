package trade

import (
	"time"

	"priceActionBot/internal/domain"
)

const (
	scratchAfterBars = 3
	scratchMinR      = 0.3

	breakevenAtR = 1.0
	trailStartR  = 2.0
	partialAtR   = 1.0
	partialFrac  = 0.5

	weekendFlattenWeekday = time.Friday
	weekendFlattenMinute  = 16*60 + 30 // 16:30 EST
)

// Session clocks are quoted in EST with a fixed UTC-5 offset.
var estZone = time.FixedZone("EST", -5*3600)

// ExitEvent is a management action taken on an open position during one
// bar. Final marks the position fully closed.
type ExitEvent struct {
	Reason domain.CloseReason
	Price  float64
	Size   float64
	Final  bool
}

// ManageBar advances the live management state machine by one closed bar,
// mutating the position in place and returning any exits taken. The check
// order is fixed: weekend flatten, scratch, breakeven, trail, partial,
// then stop and target. TrailActivated and PartialTaken never reset.
func ManageBar(pos *domain.Position, bar domain.Bar) []ExitEvent {
	pos.BarsSinceEntry++
	if bar.High > pos.HighWater {
		pos.HighWater = bar.High
	}
	if bar.Low < pos.LowWater {
		pos.LowWater = bar.Low
	}

	if shouldWeekendFlatten(pos, bar.Time) {
		return []ExitEvent{{
			Reason: domain.CloseReasonWeekend,
			Price:  bar.Close,
			Size:   pos.RemainingSize,
			Final:  true,
		}}
	}

	excursion := pos.FavorableExcursion()

	// A trade that has gone nowhere after a few bars is a scratch, not a
	// hold-and-hope.
	if pos.BarsSinceEntry >= scratchAfterBars && excursion < scratchMinR && !pos.PartialTaken {
		return []ExitEvent{{
			Reason: domain.CloseReasonScratch,
			Price:  bar.Close,
			Size:   pos.RemainingSize,
			Final:  true,
		}}
	}

	if excursion >= breakevenAtR {
		moveStopTo(pos, pos.Entry)
	}
	if excursion >= trailStartR {
		pos.TrailActivated = true
	}
	if pos.TrailActivated {
		if pos.Direction == domain.Bullish {
			moveStopTo(pos, pos.HighWater-pos.StopDist)
		} else {
			moveStopTo(pos, pos.LowWater+pos.StopDist)
		}
	}

	var events []ExitEvent
	if !pos.PartialTaken && excursion >= partialAtR {
		partialSize := pos.RemainingSize * partialFrac
		pos.RemainingSize -= partialSize
		pos.PartialTaken = true
		events = append(events, ExitEvent{
			Reason: domain.CloseReasonPartial,
			Price:  oneRPrice(pos),
			Size:   partialSize,
		})
	}

	// Stop before target: when a bar straddles both, the conservative
	// reading is that the stop was hit.
	if stopHit(pos, bar) {
		events = append(events, ExitEvent{
			Reason: domain.CloseReasonStop,
			Price:  pos.Stop,
			Size:   pos.RemainingSize,
			Final:  true,
		})
		return events
	}
	if targetHit(pos, bar) {
		events = append(events, ExitEvent{
			Reason: domain.CloseReasonTarget,
			Price:  pos.Target,
			Size:   pos.RemainingSize,
			Final:  true,
		})
	}
	return events
}

// moveStopTo tightens the stop in the favorable direction only.
func moveStopTo(pos *domain.Position, level float64) {
	if pos.Direction == domain.Bullish {
		if level > pos.Stop {
			pos.Stop = level
		}
		return
	}
	if level < pos.Stop {
		pos.Stop = level
	}
}

func oneRPrice(pos *domain.Position) float64 {
	if pos.Direction == domain.Bullish {
		return pos.Entry + pos.StopDist
	}
	return pos.Entry - pos.StopDist
}

func stopHit(pos *domain.Position, bar domain.Bar) bool {
	if pos.Direction == domain.Bullish {
		return bar.Low <= pos.Stop
	}
	return bar.High >= pos.Stop
}

func targetHit(pos *domain.Position, bar domain.Bar) bool {
	if pos.Direction == domain.Bullish {
		return bar.High >= pos.Target
	}
	return bar.Low <= pos.Target
}

// shouldWeekendFlatten reports whether a session asset must be flat going
// into the weekend: Friday at or after 16:30 EST.
func shouldWeekendFlatten(pos *domain.Position, t time.Time) bool {
	if !pos.Asset.CloseBeforeWeekend {
		return false
	}
	est := t.In(estZone)
	if est.Weekday() != weekendFlattenWeekday {
		return false
	}
	return est.Hour()*60+est.Minute() >= weekendFlattenMinute
}
