package engine

import (
	"strings"
	"time"

	"priceActionBot/internal/domain"
)

// estOffset is the fixed UTC-5 proxy used for session arithmetic.
// Session windows are quoted in EST; DST refinement is out of scope.
var estLocation = time.FixedZone("EST", -5*3600)

// SessionWindow is a parsed trading-hours window. A zero window means 24/7
// or an unparseable config, both of which fail open.
type SessionWindow struct {
	startMinute int
	endMinute   int
	bounded     bool
}

// ParseSessionWindow parses strings like "08:00-17:00_EST". Anything it
// cannot parse yields an unbounded window: a malformed session config must
// never block trading.
func ParseSessionWindow(s string) SessionWindow {
	if s == "" || s == "24/7" {
		return SessionWindow{}
	}
	spec := strings.TrimSuffix(s, "_EST")
	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return SessionWindow{}
	}
	start, ok1 := parseClock(parts[0])
	end, ok2 := parseClock(parts[1])
	if !ok1 || !ok2 || end <= start {
		return SessionWindow{}
	}
	return SessionWindow{startMinute: start, endMinute: end, bounded: true}
}

// Contains reports whether t (converted to EST) falls inside the window.
func (w SessionWindow) Contains(t time.Time) bool {
	if !w.bounded {
		return true
	}
	est := t.In(estLocation)
	minute := est.Hour()*60 + est.Minute()
	return minute >= w.startMinute && minute < w.endMinute
}

func parseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, ok1 := atoi2(parts[0])
	m, ok2 := atoi2(parts[1])
	if !ok1 || !ok2 || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func atoi2(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// SessionContext tracks session-relative price levels per asset: the
// session open, the opening-range (first hour) extremes, the running day
// extremes, and the prior day's high/low. It is updated for every bar.
type SessionContext struct {
	window SessionWindow

	SessionOpen   float64
	OpenRangeHigh float64
	OpenRangeLow  float64
	PriorDayHigh  float64
	PriorDayLow   float64
	DayHigh       float64
	DayLow        float64

	BarsSinceOpen int

	currentDate  time.Time // EST date of the current session day
	firstHourEnd time.Time
	havePrior    bool
	haveDay      bool
	sessionSeen  bool // an in-session bar has been observed today
}

// NewSessionContext builds a context for the asset's configured session.
func NewSessionContext(asset domain.AssetConfig) *SessionContext {
	return &SessionContext{window: ParseSessionWindow(asset.Session)}
}

// InSession reports whether the bar's time falls in the trading window.
func (s *SessionContext) InSession(t time.Time) bool {
	return s.window.Contains(t)
}

// Update folds a new bar into the session levels. It must be called for
// every bar before the orchestrator evaluates it.
func (s *SessionContext) Update(bar domain.Bar) {
	est := bar.Time.In(estLocation)
	day := time.Date(est.Year(), est.Month(), est.Day(), 0, 0, 0, 0, estLocation)

	if !s.haveDay || !day.Equal(s.currentDate) {
		if s.haveDay {
			s.PriorDayHigh = s.DayHigh
			s.PriorDayLow = s.DayLow
			s.havePrior = true
		}
		s.currentDate = day
		s.haveDay = true
		s.SessionOpen = bar.Open
		s.DayHigh = bar.High
		s.DayLow = bar.Low
		s.OpenRangeHigh = bar.High
		s.OpenRangeLow = bar.Low
		s.firstHourEnd = est.Truncate(time.Hour).Add(time.Hour)
		s.BarsSinceOpen = 0
		s.sessionSeen = s.window.Contains(bar.Time)
		return
	}

	// The bar counter is anchored to the first in-session bar of the day:
	// a continuous feed delivers pre-open bars that must not advance it.
	if s.window.Contains(bar.Time) {
		if s.sessionSeen {
			s.BarsSinceOpen++
		} else {
			s.sessionSeen = true
			s.BarsSinceOpen = 0
		}
	}
	if bar.High > s.DayHigh {
		s.DayHigh = bar.High
	}
	if bar.Low < s.DayLow {
		s.DayLow = bar.Low
	}
	if est.Before(s.firstHourEnd) {
		if bar.High > s.OpenRangeHigh {
			s.OpenRangeHigh = bar.High
		}
		if bar.Low < s.OpenRangeLow {
			s.OpenRangeLow = bar.Low
		}
	}
}

// InFirstHour reports whether t falls inside the session's opening hour.
func (s *SessionContext) InFirstHour(t time.Time) bool {
	if !s.haveDay {
		return false
	}
	return t.In(estLocation).Before(s.firstHourEnd)
}

// HavePriorDay reports whether a full prior session day has been observed.
func (s *SessionContext) HavePriorDay() bool { return s.havePrior }
