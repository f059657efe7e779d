package engine

import (
	"context"

	"priceActionBot/internal/domain"
	"priceActionBot/internal/ports"
)

// Engine is the per-asset analysis pipeline: candle memory, session
// levels, the signal orchestrator, and the feature builder with its hard
// filters. One Engine per tradable asset; not safe for concurrent use.
type Engine struct {
	asset   domain.AssetConfig
	logger  ports.Logger
	memory  *Memory
	session *SessionContext
	orch    *Orchestrator
}

// Evaluation is the per-bar output. Signal and Features are non-nil only
// when the bar produced a confirmed, filtered signal; RejectReason names
// the hard filter that discarded an otherwise confirmed signal.
type Evaluation struct {
	Signal       *domain.Signal
	Features     *domain.FeatureRecord
	Verdict      Verdict
	Regime       domain.Regime
	RejectReason string
}

// New builds the pipeline for one asset.
func New(asset domain.AssetConfig, logger ports.Logger) *Engine {
	session := NewSessionContext(asset)
	return &Engine{
		asset:   asset,
		logger:  logger,
		memory:  NewMemory(DefaultMemoryCapacity),
		session: session,
		orch:    NewOrchestrator(session, logger),
	}
}

// OnBar folds a closed bar into memory and session state, then runs the
// orchestration pipeline. Confirmed signals pass through the feature
// builder and the hard filters before being handed back.
func (e *Engine) OnBar(ctx context.Context, bar domain.Bar) Evaluation {
	e.memory.Add(bar)
	e.session.Update(bar)

	bars := e.memory.Data()
	sig, verdict := e.orch.Evaluate(ctx, bars)
	regime := ClassifyRegime(bars)

	ev := Evaluation{Verdict: verdict, Regime: regime}
	if sig == nil {
		return ev
	}

	rec := BuildFeatures(sig, bars, e.session)
	if rec == nil {
		ev.RejectReason = "atr_unavailable"
		return ev
	}
	if ok, reason := FilterSignal(sig, rec, e.session, e.asset, regime); !ok {
		e.logger.Debug(ctx, "signal rejected by hard filter", map[string]interface{}{
			"symbol": e.asset.Symbol,
			"setup":  sig.Setup,
			"reason": reason,
		})
		ev.RejectReason = reason
		return ev
	}

	ev.Signal = sig
	ev.Features = rec
	return ev
}

// ATR returns the current fast average true range, 0 when not ready.
func (e *Engine) ATR() float64 { return ATR(e.memory.Data(), atrPeriod) }

// SlowATR returns the long-lookback average true range, 0 when not ready.
func (e *Engine) SlowATR() float64 { return ATR(e.memory.Data(), atrSlowPeriod) }

// Bars exposes the ordered candle history, oldest first, read-only.
func (e *Engine) Bars() []domain.Bar { return e.memory.Data() }

// Session exposes the per-asset session level tracker.
func (e *Engine) Session() *SessionContext { return e.session }

// Asset returns the configuration this engine was built for.
func (e *Engine) Asset() domain.AssetConfig { return e.asset }

// Snapshot captures the orchestrator state for persistence.
func (e *Engine) Snapshot() domain.OrchestratorSnapshot { return e.orch.Snapshot() }

// Restore re-applies persisted orchestrator state after a restart.
func (e *Engine) Restore(snap domain.OrchestratorSnapshot) { e.orch.Restore(snap) }
