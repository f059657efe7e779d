package ports

import (
	"time"

	"priceActionBot/internal/domain"
)

// TradeRecord is one telemetry row describing a trade decision or exit.
type TradeRecord struct {
	Mode         string // "backtest" or "live"
	TradeIndex   int
	Symbol       string
	Setup        domain.SetupType
	Direction    domain.Direction
	Decision     string
	EntryTime    time.Time
	EntryPrice   float64
	ExitTime     time.Time
	ExitPrice    float64
	Size         float64
	ATR          float64
	RMultiple    float64
	EquityBefore float64
	EquityAfter  float64
	Probability  float64
	RegimePaused bool
}

// MetricsRecord is one telemetry row of rolling performance statistics.
type MetricsRecord struct {
	TradeIndex        int
	Symbol            string
	Equity            float64
	RollingExpectancy float64
	RollingWinrate    float64
	RollingSum        float64
	RollingVolatility float64
	ZScore            float64
	Probability       float64
	Paused            bool
}

// RegimeEvent records a pause/resume transition of the statistical guard.
type RegimeEvent struct {
	Time       time.Time
	Symbol     string
	Event      string // "PAUSED" or "RESUMED"
	Expectancy float64
	Winrate    float64
	Sum        float64
}

// Telemetry receives structured records after each decision. Implementations
// must be best-effort: a failure to log never affects trading decisions, so
// callers log returned errors and move on.
type Telemetry interface {
	LogTrade(rec TradeRecord) error
	LogMetrics(rec MetricsRecord) error
	LogRegimeEvent(ev RegimeEvent) error
}
