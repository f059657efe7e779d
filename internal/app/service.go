package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"priceActionBot/internal/adapters/metrics"
	"priceActionBot/internal/domain"
	"priceActionBot/internal/ports"
	"priceActionBot/internal/risk"
	"priceActionBot/internal/trade"
)

// entryTimeoutBars bounds how long an unfilled entry stop order is kept
// working before the plan is abandoned.
const entryTimeoutBars = 3

// ServiceConfig holds the live paper-trading parameters.
type ServiceConfig struct {
	Assets        []domain.AssetConfig
	Interval      string
	WarmupBars    int
	InitialEquity float64
	GuardConfig   risk.GuardConfig
}

// Service runs the live paper-trading loop: one goroutine per asset, each
// owning its runner, position state and snapshot lifecycle. Assets never
// share mutable state; the store, journal and telemetry sinks are safe
// for concurrent use.
type Service struct {
	cfg       ServiceConfig
	feed      ports.MarketFeed
	store     ports.StateStore
	journal   ports.TradeJournal
	model     ports.RegimeModel
	telemetry ports.Telemetry
	metrics   *metrics.Metrics
	logger    ports.Logger
}

// NewService creates the live service instance.
func NewService(
	cfg ServiceConfig,
	feed ports.MarketFeed,
	store ports.StateStore,
	journal ports.TradeJournal,
	model ports.RegimeModel,
	telemetry ports.Telemetry,
	m *metrics.Metrics,
	logger ports.Logger,
) (*Service, error) {
	if feed == nil || store == nil || journal == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}
	if len(cfg.Assets) == 0 {
		return nil, fmt.Errorf("%w: no assets configured", ports.ErrConfigurationError)
	}
	if cfg.WarmupBars <= 0 {
		cfg.WarmupBars = 100
	}
	return &Service{
		cfg:       cfg,
		feed:      feed,
		store:     store,
		journal:   journal,
		model:     model,
		telemetry: telemetry,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Start runs all asset loops until a shutdown signal or context cancel.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "starting paper trading service", map[string]interface{}{
		"assets": len(s.cfg.Assets), "interval": s.cfg.Interval,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	var wg sync.WaitGroup
	for _, asset := range s.cfg.Assets {
		wg.Add(1)
		go func(asset domain.AssetConfig) {
			defer wg.Done()
			s.runAsset(ctx, asset)
		}(asset)
	}
	wg.Wait()
	s.logger.Info(ctx, "paper trading service stopped")
	return nil
}

// runAsset is the per-asset loop: restore, warm up, then consume closed
// bars until the context ends. Errors surface through logging and
// telemetry; only setup failures abort the loop.
func (s *Service) runAsset(ctx context.Context, asset domain.AssetConfig) {
	runner := NewRunner(RunnerConfig{
		Asset:         asset,
		Mode:          "live",
		InitialEquity: s.cfg.InitialEquity,
		GuardConfig:   s.cfg.GuardConfig,
		Model:         s.model,
		Telemetry:     s.telemetry,
		Metrics:       s.metrics,
		Logger:        s.logger,
	})

	if snap, err := s.store.LoadSnapshot(ctx, asset.Symbol); err != nil {
		if errors.Is(err, ports.ErrNotFound) || errors.Is(err, ports.ErrSnapshotSchema) {
			s.logger.Info(ctx, "no usable snapshot, cold start", map[string]interface{}{
				"symbol": asset.Symbol, "reason": err.Error(),
			})
		} else {
			s.logger.Warn(ctx, "snapshot load failed, cold start", map[string]interface{}{
				"symbol": asset.Symbol, "error": err.Error(),
			})
		}
	} else {
		runner.Restore(snap)
		s.logger.Info(ctx, "snapshot restored", map[string]interface{}{
			"symbol": asset.Symbol, "trades": snap.TradeCounter,
		})
	}

	bars, err := s.feed.HistoricalBars(ctx, asset.Symbol, s.cfg.Interval, s.cfg.WarmupBars)
	if err != nil {
		s.logger.Error(ctx, err, "warm-up fetch failed, asset loop not started", map[string]interface{}{
			"symbol": asset.Symbol,
		})
		return
	}
	for _, bar := range bars {
		// Warm-up bars build state only; plans are discarded.
		runner.EvaluateBar(ctx, bar)
	}
	s.logger.Info(ctx, "warm-up complete", map[string]interface{}{
		"symbol": asset.Symbol, "bars": len(bars),
	})

	var (
		open        *domain.Position
		openPlan    *TradePlan
		pending     *TradePlan
		pendingBars int
		bankedR     float64
		bankedFrac  float64
	)

	for {
		bar, err := s.feed.NextClosedBar(ctx, asset.Symbol, s.cfg.Interval)
		if err != nil {
			if errors.Is(err, ports.ErrContextCanceled) || ctx.Err() != nil {
				break
			}
			if s.metrics != nil {
				s.metrics.FeedErrors.WithLabelValues(asset.Symbol).Inc()
			}
			s.logger.Error(ctx, err, "feed error", map[string]interface{}{"symbol": asset.Symbol})
			continue
		}

		plan, _ := runner.EvaluateBar(ctx, *bar)

		switch {
		case open != nil:
			if plan != nil {
				runner.countRejected("position_open")
			}
			events := trade.ManageBar(open, *bar)
			for _, ev := range events {
				if ev.Reason == domain.CloseReasonPartial {
					frac := ev.Size / open.Size
					bankedR += frac * 1.0 // partials are taken at exactly 1R
					bankedFrac += frac
					s.logger.Info(ctx, "partial exit", map[string]interface{}{
						"symbol": asset.Symbol, "price": ev.Price, "size": ev.Size,
					})
					continue
				}
				if !ev.Final {
					continue
				}
				totalR := bankedR + (1-bankedFrac)*open.RMultiple(ev.Price)
				result := domain.Trade{
					Symbol:      open.Symbol,
					Setup:       open.Setup,
					Direction:   open.Direction,
					EntryPrice:  open.Entry,
					ExitPrice:   ev.Price,
					Size:        open.Size,
					RMultiple:   totalR,
					EntryTime:   open.EntryTime,
					ExitTime:    bar.Time,
					CloseReason: ev.Reason,
				}
				runner.RecordOutcome(ctx, openPlan, result)
				if err := s.journal.RecordTrade(ctx, &result); err != nil {
					s.logger.Warn(ctx, "journal write failed", map[string]interface{}{
						"symbol": asset.Symbol, "error": err.Error(),
					})
				}
				s.logger.Info(ctx, "position closed", map[string]interface{}{
					"symbol": asset.Symbol, "reason": ev.Reason, "r": totalR, "equity": runner.Equity(),
				})
				open, openPlan = nil, nil
				bankedR, bankedFrac = 0, 0
				if s.metrics != nil {
					s.metrics.OpenPosition.WithLabelValues(asset.Symbol).Set(0)
				}
				s.saveSnapshot(ctx, runner)
			}

		case pending != nil:
			if plan != nil {
				runner.countRejected("position_open")
			}
			pendingBars++
			if fillHit(pending.Position, *bar) {
				open, openPlan = pending.Position, pending
				open.EntryTime = bar.Time
				pending, pendingBars = nil, 0
				if s.metrics != nil {
					s.metrics.TradesOpened.WithLabelValues(asset.Symbol).Inc()
					s.metrics.OpenPosition.WithLabelValues(asset.Symbol).Set(1)
				}
				s.logger.Info(ctx, "position opened", map[string]interface{}{
					"symbol": asset.Symbol, "setup": open.Setup, "direction": open.Direction,
					"entry": open.Entry, "stop": open.Stop, "target": open.Target, "size": open.Size,
				})
			} else if pendingBars >= entryTimeoutBars {
				s.logger.Info(ctx, "entry order expired unfilled", map[string]interface{}{
					"symbol": asset.Symbol, "setup": pending.Signal.Setup,
				})
				pending, pendingBars = nil, 0
			}

		case plan != nil:
			pending, pendingBars = plan, 0
			s.logger.Info(ctx, "entry order working", map[string]interface{}{
				"symbol": asset.Symbol, "setup": plan.Signal.Setup, "direction": plan.Signal.Direction,
				"entry": plan.Position.Entry, "probability": plan.Probability,
			})
		}
	}

	s.saveSnapshot(context.Background(), runner)
	s.reportSummary(context.Background(), asset.Symbol)
	s.logger.Info(context.Background(), "asset loop stopped", map[string]interface{}{"symbol": asset.Symbol})
}

// reportSummary logs the journaled performance for the asset on shutdown.
func (s *Service) reportSummary(ctx context.Context, symbol string) {
	recent, err := s.journal.RecentTrades(ctx, symbol, 1000)
	if err != nil || len(recent) == 0 {
		return
	}
	// The journal returns newest first; the summary wants chronological.
	trades := make([]domain.Trade, len(recent))
	for i, t := range recent {
		trades[len(recent)-1-i] = *t
	}
	s.logger.Info(ctx, "session summary", map[string]interface{}{
		"symbol": symbol, "report": Summarize(trades).String(),
	})
}

func (s *Service) saveSnapshot(ctx context.Context, runner *Runner) {
	snap := runner.Snapshot()
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Warn(ctx, "snapshot save failed", map[string]interface{}{
			"symbol": snap.Symbol, "error": err.Error(),
		})
	}
}

// fillHit reports whether the bar traded through the entry stop price.
func fillHit(pos *domain.Position, bar domain.Bar) bool {
	if pos.Direction == domain.Bullish {
		return bar.High >= pos.Entry
	}
	return bar.Low <= pos.Entry
}
