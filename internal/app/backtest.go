package app

import (
	"context"
	"time"

	"priceActionBot/internal/domain"
	"priceActionBot/internal/trade"
)

// BacktestResult is the outcome of replaying one asset's bar series.
type BacktestResult struct {
	Symbol      string
	Trades      []domain.Trade
	Summary     Summary
	FinalEquity float64
}

// RunBacktest replays a historical series through the full pipeline. The
// same gating code drives live trading, so the replay is deterministic:
// the same bars always yield the same trades.
func RunBacktest(ctx context.Context, cfg RunnerConfig, bars []domain.Bar) (*BacktestResult, error) {
	cfg.Mode = "backtest"
	runner := NewRunner(cfg)

	var trades []domain.Trade
	busyUntil := -1 // bar index until which the single open position blocks new entries

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		plan, _ := runner.EvaluateBar(ctx, bar)
		if plan == nil {
			continue
		}
		if i <= busyUntil {
			runner.countRejected("position_open")
			continue
		}

		res := trade.ResolveForward(plan.Position, bars[i+1:])
		if res.Outcome == trade.OutcomeUnresolved {
			// The position is assumed held to the horizon; no outcome is
			// recorded, but the single-position invariant still applies.
			busyUntil = i + trade.BacktestHorizon
			continue
		}
		busyUntil = i + 1 + res.ExitIndex

		reason := domain.CloseReasonTarget
		if res.Outcome == trade.OutcomeLoss {
			reason = domain.CloseReasonStop
		}
		result := domain.Trade{
			Symbol:      plan.Position.Symbol,
			Setup:       plan.Position.Setup,
			Direction:   plan.Position.Direction,
			EntryPrice:  plan.Position.Entry,
			ExitPrice:   res.ExitPrice,
			Size:        plan.Position.Size,
			RMultiple:   res.RMultiple,
			EntryTime:   bar.Time,
			ExitTime:    exitTime(bars, i+1+res.ExitIndex, bar.Time),
			CloseReason: reason,
		}
		runner.RecordOutcome(ctx, plan, result)
		trades = append(trades, result)
	}

	return &BacktestResult{
		Symbol:      cfg.Asset.Symbol,
		Trades:      trades,
		Summary:     Summarize(trades),
		FinalEquity: runner.Equity(),
	}, nil
}

func exitTime(bars []domain.Bar, idx int, fallback time.Time) time.Time {
	if idx >= 0 && idx < len(bars) {
		return bars[idx].Time
	}
	return fallback
}
