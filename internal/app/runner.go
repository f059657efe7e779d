package app

import (
	"context"
	"time"

	"priceActionBot/internal/adapters/metrics"
	"priceActionBot/internal/domain"
	"priceActionBot/internal/engine"
	"priceActionBot/internal/ports"
	"priceActionBot/internal/risk"
	"priceActionBot/internal/trade"
)

var estZone = time.FixedZone("EST", -5*3600)

// TradePlan is a fully gated, sized trade ready to be opened. How it is
// resolved depends on the mode: the backtester forward-scans, the live
// service manages it bar by bar.
type TradePlan struct {
	Signal      *domain.Signal
	Features    *domain.FeatureRecord
	Position    *domain.Position
	Advice      domain.ModelAdvice
	Probability float64
}

// Runner gates one asset's bars through the full decision pipeline:
// engine evaluation, model advice, pattern confidence, risk and regime
// guards, trade geometry, position sizing. It is shared by backtest and
// live modes so both trade the same rules.
type Runner struct {
	asset     domain.AssetConfig
	mode      string
	engine    *engine.Engine
	guard     *risk.Guard
	regime    *risk.RegimeGuard
	patterns  *PatternMemory
	model     ports.RegimeModel
	telemetry ports.Telemetry
	metrics   *metrics.Metrics
	logger    ports.Logger

	equity       float64
	tradeCounter int
	currentDay   time.Time
	wasPaused    bool
}

// RunnerConfig bundles the runner's dependencies. Model, Telemetry and
// Metrics may be nil; nil degrades to permissive/no-op behavior.
type RunnerConfig struct {
	Asset         domain.AssetConfig
	Mode          string // "backtest" or "live"
	InitialEquity float64
	GuardConfig   risk.GuardConfig
	Model         ports.RegimeModel
	Telemetry     ports.Telemetry
	Metrics       *metrics.Metrics
	Logger        ports.Logger
}

// NewRunner builds the pipeline for one asset.
func NewRunner(cfg RunnerConfig) *Runner {
	model := cfg.Model
	if model == nil {
		model = NullModel{}
	}
	return &Runner{
		asset:     cfg.Asset,
		mode:      cfg.Mode,
		engine:    engine.New(cfg.Asset, cfg.Logger),
		guard:     risk.NewGuard(cfg.GuardConfig),
		regime:    risk.NewRegimeGuard(),
		patterns:  NewPatternMemory(),
		model:     model,
		telemetry: cfg.Telemetry,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		equity:    cfg.InitialEquity,
	}
}

// EvaluateBar folds one closed bar in and returns a sized trade plan when
// every gate passes, or nil with the engine evaluation for diagnostics.
func (r *Runner) EvaluateBar(ctx context.Context, bar domain.Bar) (*TradePlan, engine.Evaluation) {
	r.rolloverDay(bar.Time)

	ev := r.engine.OnBar(ctx, bar)
	if r.metrics != nil {
		r.metrics.BarsProcessed.WithLabelValues(r.asset.Symbol).Inc()
	}
	if ev.Signal == nil {
		if ev.RejectReason != "" {
			r.countRejected(ev.RejectReason)
		}
		return nil, ev
	}
	sig, rec := ev.Signal, ev.Features
	if r.metrics != nil {
		r.metrics.SignalsDetected.WithLabelValues(r.asset.Symbol, string(sig.Setup)).Inc()
	}

	advice, err := r.model.Evaluate(ctx, rec)
	if err != nil {
		// Advisory collaborator: failure degrades to the untrained defaults,
		// which allow the trade but keep sizing in the base band.
		r.logger.Warn(ctx, "model evaluation failed, using untrained defaults", map[string]interface{}{
			"symbol": r.asset.Symbol, "error": err.Error(),
		})
		advice = domain.ModelAdvice{Bias: domain.Neutral, ContinuationProb: 0.5, Confidence: 0.5}
	}
	probability := advice.ContinuationProb * r.patterns.Confidence(sig.Setup)

	if ok, reason := r.guard.CanTrade(bar.Time); !ok {
		r.blockEntry(ctx, sig, probability, "guard_"+reason)
		return nil, ev
	}
	if r.regime.Paused() {
		r.blockEntry(ctx, sig, probability, "regime_paused")
		return nil, ev
	}

	atr := r.engine.ATR()
	atrShock := 0.0
	if atr > 0 {
		atrShock = bar.Range() / atr
	}
	tough := r.guard.ToughConditions(rec.VolatilityRatio, atrShock)

	pos, reason := trade.Plan(sig, rec, bar, atr, r.asset, bar.Time)
	if pos == nil {
		r.countRejected(reason)
		r.logDecision(sig, probability, reason)
		return nil, ev
	}

	size := risk.Size(risk.SizeRequest{
		Equity:          r.equity,
		StopDist:        pos.StopDist,
		Confidence:      probability,
		Tough:           tough,
		RiskOverride:    sig.RiskOverride,
		SessionDrawdown: r.guard.SessionDrawdownFraction(),
	})
	if size <= 0 {
		r.countRejected("sized_zero")
		r.logDecision(sig, probability, "sized_zero")
		return nil, ev
	}
	pos.Size = size
	pos.RemainingSize = size

	r.tradeCounter++
	return &TradePlan{
		Signal:      sig,
		Features:    rec,
		Position:    pos,
		Advice:      advice,
		Probability: probability,
	}, ev
}

// RecordOutcome folds a resolved trade back into equity, the guards, the
// pattern memory and the model, and emits telemetry.
func (r *Runner) RecordOutcome(ctx context.Context, plan *TradePlan, result domain.Trade) {
	pnl := result.RMultiple * result.Size * plan.Position.StopDist
	equityBefore := r.equity
	r.equity += pnl

	r.guard.RecordOutcome(result.RMultiple, result.ExitTime)
	r.patterns.Record(result.Setup, result.RMultiple > 0)

	outcome := 0
	if result.RMultiple > 0 {
		outcome = 1
	}
	r.model.Observe(ctx, plan.Features, outcome)

	pausedBefore := r.regime.Paused()
	r.regime.Record(result.RMultiple)
	r.emitRegimeTransition(ctx, pausedBefore, result.ExitTime)

	if r.metrics != nil {
		r.metrics.TradesClosed.WithLabelValues(r.asset.Symbol, string(result.CloseReason)).Inc()
		r.metrics.Equity.WithLabelValues(r.asset.Symbol).Set(r.equity)
	}
	if r.telemetry != nil {
		if err := r.telemetry.LogTrade(ports.TradeRecord{
			Mode:         r.mode,
			TradeIndex:   r.tradeCounter,
			Symbol:       r.asset.Symbol,
			Setup:        result.Setup,
			Direction:    result.Direction,
			Decision:     "closed_" + string(result.CloseReason),
			EntryTime:    result.EntryTime,
			EntryPrice:   result.EntryPrice,
			ExitTime:     result.ExitTime,
			ExitPrice:    result.ExitPrice,
			Size:         result.Size,
			ATR:          r.engine.ATR(),
			RMultiple:    result.RMultiple,
			EquityBefore: equityBefore,
			EquityAfter:  r.equity,
			Probability:  plan.Probability,
			RegimePaused: r.regime.Paused(),
		}); err != nil {
			r.logger.Warn(ctx, "trade telemetry write failed", map[string]interface{}{"error": err.Error()})
		}
		expectancy, winrate, sum, volatility, z := r.regime.Stats()
		if err := r.telemetry.LogMetrics(ports.MetricsRecord{
			TradeIndex:        r.tradeCounter,
			Symbol:            r.asset.Symbol,
			Equity:            r.equity,
			RollingExpectancy: expectancy,
			RollingWinrate:    winrate,
			RollingSum:        sum,
			RollingVolatility: volatility,
			ZScore:            z,
			Probability:       plan.Probability,
			Paused:            r.regime.Paused(),
		}); err != nil {
			r.logger.Warn(ctx, "metrics telemetry write failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Equity returns the current account equity.
func (r *Runner) Equity() float64 { return r.equity }

// Engine exposes the underlying analysis pipeline.
func (r *Runner) Engine() *engine.Engine { return r.engine }

// Snapshot assembles the persistent state for this asset.
func (r *Runner) Snapshot() *domain.Snapshot {
	returns, daily, streak := r.guard.Export()
	recent, baseline := r.regime.Export()
	results, confidence := r.patterns.Export()
	return &domain.Snapshot{
		Symbol:            r.asset.Symbol,
		TradeCounter:      r.tradeCounter,
		Equity:            []float64{r.equity},
		Returns:           returns,
		DailyReturns:      daily,
		LossStreak:        streak,
		RecentReturns:     recent,
		BaselineReturns:   baseline,
		PatternResults:    results,
		PatternConfidence: confidence,
		Orchestrator:      r.engine.Snapshot(),
	}
}

// Restore re-applies persisted state after a restart.
func (r *Runner) Restore(snap *domain.Snapshot) {
	r.tradeCounter = snap.TradeCounter
	if len(snap.Equity) > 0 {
		r.equity = snap.Equity[len(snap.Equity)-1]
	}
	r.guard.Restore(snap.Returns, snap.DailyReturns, snap.LossStreak)
	r.regime.Restore(snap.RecentReturns, snap.BaselineReturns)
	r.patterns.Restore(snap.PatternResults, snap.PatternConfidence)
	r.engine.Restore(snap.Orchestrator)
}

func (r *Runner) rolloverDay(t time.Time) {
	est := t.In(estZone)
	day := time.Date(est.Year(), est.Month(), est.Day(), 0, 0, 0, 0, estZone)
	if !day.Equal(r.currentDay) {
		if !r.currentDay.IsZero() {
			r.guard.ResetDaily()
		}
		r.currentDay = day
	}
}

func (r *Runner) blockEntry(ctx context.Context, sig *domain.Signal, probability float64, reason string) {
	if r.metrics != nil {
		r.metrics.GuardBlocked.WithLabelValues(r.asset.Symbol, reason).Inc()
	}
	r.logDecision(sig, probability, reason)
	r.logger.Info(ctx, "entry blocked", map[string]interface{}{
		"symbol": r.asset.Symbol, "setup": sig.Setup, "reason": reason,
	})
}

func (r *Runner) countRejected(reason string) {
	if r.metrics != nil {
		r.metrics.SignalsRejected.WithLabelValues(r.asset.Symbol, reason).Inc()
	}
}

func (r *Runner) logDecision(sig *domain.Signal, probability float64, decision string) {
	if r.telemetry == nil {
		return
	}
	_ = r.telemetry.LogTrade(ports.TradeRecord{
		Mode:         r.mode,
		TradeIndex:   r.tradeCounter,
		Symbol:       r.asset.Symbol,
		Setup:        sig.Setup,
		Direction:    sig.Direction,
		Decision:     decision,
		EntryTime:    sig.Time,
		EntryPrice:   sig.Price,
		Probability:  probability,
		RegimePaused: r.regime.Paused(),
	})
}

func (r *Runner) emitRegimeTransition(ctx context.Context, pausedBefore bool, at time.Time) {
	pausedNow := r.regime.Paused()
	if pausedNow == pausedBefore {
		return
	}
	event := "RESUMED"
	gauge := 0.0
	if pausedNow {
		event = "PAUSED"
		gauge = 1.0
	}
	if r.metrics != nil {
		r.metrics.RegimePaused.WithLabelValues(r.asset.Symbol).Set(gauge)
	}
	expectancy, winrate, sum, _, _ := r.regime.Stats()
	if r.telemetry != nil {
		_ = r.telemetry.LogRegimeEvent(ports.RegimeEvent{
			Time:       at,
			Symbol:     r.asset.Symbol,
			Event:      event,
			Expectancy: expectancy,
			Winrate:    winrate,
			Sum:        sum,
		})
	}
	r.logger.Warn(ctx, "regime guard transition", map[string]interface{}{
		"symbol": r.asset.Symbol, "event": event, "expectancy": expectancy,
	})
}
