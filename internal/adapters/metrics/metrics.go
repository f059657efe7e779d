// Package metrics exposes operational counters and gauges over the
// Prometheus text endpoint. Metrics are observability only; nothing in
// the trading path reads them back.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"priceActionBot/internal/ports"
)

// Metrics bundles the instrument set for one bot process.
type Metrics struct {
	BarsProcessed   *prometheus.CounterVec
	SignalsDetected *prometheus.CounterVec
	SignalsRejected *prometheus.CounterVec
	TradesOpened    *prometheus.CounterVec
	TradesClosed    *prometheus.CounterVec
	Equity          *prometheus.GaugeVec
	OpenPosition    *prometheus.GaugeVec
	GuardBlocked    *prometheus.CounterVec
	RegimePaused    *prometheus.GaugeVec
	FeedErrors      *prometheus.CounterVec
}

// New registers the instrument set on the default registry.
func New() *Metrics {
	return &Metrics{
		BarsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_bars_processed_total",
			Help: "Closed bars folded into the engine.",
		}, []string{"symbol"}),
		SignalsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_signals_detected_total",
			Help: "Confirmed signals by setup type.",
		}, []string{"symbol", "setup"}),
		SignalsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_signals_rejected_total",
			Help: "Signals discarded by hard filters or guards, by reason.",
		}, []string{"symbol", "reason"}),
		TradesOpened: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_trades_opened_total",
			Help: "Positions opened.",
		}, []string{"symbol"}),
		TradesClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_trades_closed_total",
			Help: "Positions closed, by close reason.",
		}, []string{"symbol", "reason"}),
		Equity: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bot_equity",
			Help: "Current account equity.",
		}, []string{"symbol"}),
		OpenPosition: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bot_open_position",
			Help: "1 when a position is open for the symbol.",
		}, []string{"symbol"}),
		GuardBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_guard_blocked_total",
			Help: "Entries blocked by the risk guard, by reason.",
		}, []string{"symbol", "reason"}),
		RegimePaused: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bot_regime_paused",
			Help: "1 while the statistical regime guard is pausing entries.",
		}, []string{"symbol"}),
		FeedErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_feed_errors_total",
			Help: "Market feed errors.",
		}, []string{"symbol"}),
	}
}

// Serve runs the /metrics endpoint until the context is canceled.
// Failures are logged and swallowed: losing metrics never stops trading.
func Serve(ctx context.Context, addr string, logger ports.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "metrics endpoint listening", map[string]interface{}{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error(ctx, err, "metrics endpoint failed")
	}
}
