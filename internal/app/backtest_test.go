package app

import (
	"context"
	"testing"
	"time"

	"priceActionBot/internal/domain"
	"priceActionBot/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...map[string]interface{})        {}
func (nopLogger) Info(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Warn(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Error(context.Context, error, string, ...map[string]interface{}) {}

func testRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Asset: domain.AssetConfig{
			Symbol:     "BTCUSDT",
			Session:    "24/7",
			TargetMode: domain.TargetModeATR,
			ATRFilter:  1,
		},
		InitialEquity: 10000,
		GuardConfig:   risk.DefaultGuardConfig(),
		Logger:        nopLogger{},
	}
}

// stamp assigns consecutive 5-minute closes starting Monday midnight EST.
func stamp(bars []domain.Bar) []domain.Bar {
	start := time.Date(2026, time.January, 5, 0, 0, 0, 0, estZone)
	for i := range bars {
		bars[i].Time = start.Add(time.Duration(i) * 5 * time.Minute)
	}
	return bars
}

func chopSeries(n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		if i%2 == 0 {
			bars[i] = domain.Bar{Open: 10.25, High: 11, Low: 10, Close: 10.75}
		} else {
			bars[i] = domain.Bar{Open: 10.75, High: 11, Low: 10, Close: 10.25}
		}
	}
	return bars
}

func TestRunBacktestBreakoutWin(t *testing.T) {
	bars := chopSeries(59)
	bars = append(bars,
		domain.Bar{Open: 10.8, High: 12.1, Low: 10.7, Close: 12.1}, // range breakout, close on the high
		domain.Bar{Open: 12.1, High: 12.3, Low: 11.9, Close: 12.2}, // fills the entry stop order
		domain.Bar{Open: 12.2, High: 14.5, Low: 12.1, Close: 14.3}, // runs through the target
	)
	bars = stamp(bars)

	res, err := RunBacktest(context.Background(), testRunnerConfig(), bars)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	tr := res.Trades[0]
	assert.Equal(t, domain.SetupBreakout, tr.Setup)
	assert.Equal(t, domain.Bullish, tr.Direction)
	assert.Equal(t, domain.CloseReasonTarget, tr.CloseReason)
	assert.Equal(t, 12.1, tr.EntryPrice)
	assert.Greater(t, tr.RMultiple, 1.0)
	assert.Greater(t, tr.Size, 0.0)

	assert.Equal(t, 1, res.Summary.Trades)
	assert.Equal(t, 1, res.Summary.Wins)
	assert.Greater(t, res.FinalEquity, 10000.0)
}

func TestRunBacktestDeterministic(t *testing.T) {
	bars := chopSeries(59)
	bars = append(bars,
		domain.Bar{Open: 10.8, High: 12.1, Low: 10.7, Close: 12.1},
		domain.Bar{Open: 12.1, High: 12.3, Low: 11.9, Close: 12.2},
		domain.Bar{Open: 12.2, High: 14.5, Low: 12.1, Close: 14.3},
	)
	bars = stamp(bars)

	first, err := RunBacktest(context.Background(), testRunnerConfig(), bars)
	require.NoError(t, err)
	second, err := RunBacktest(context.Background(), testRunnerConfig(), bars)
	require.NoError(t, err)

	assert.Equal(t, first.Trades, second.Trades)
	assert.Equal(t, first.FinalEquity, second.FinalEquity)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestRunBacktestNoSignalsInChop(t *testing.T) {
	bars := stamp(chopSeries(120))
	res, err := RunBacktest(context.Background(), testRunnerConfig(), bars)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 10000.0, res.FinalEquity)
}

func TestRunBacktestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunBacktest(ctx, testRunnerConfig(), stamp(chopSeries(10)))
	assert.Error(t, err)
}

func TestRunnerSnapshotRestore(t *testing.T) {
	cfg := testRunnerConfig()
	runner := NewRunner(cfg)

	for _, b := range stamp(chopSeries(60)) {
		runner.EvaluateBar(context.Background(), b)
	}
	runner.patterns.Record(domain.SetupSecondEntry, false)
	runner.patterns.Record(domain.SetupSecondEntry, false)
	runner.equity = 10500
	runner.tradeCounter = 7

	snap := runner.Snapshot()
	assert.Equal(t, "BTCUSDT", snap.Symbol)

	restored := NewRunner(cfg)
	restored.Restore(snap)
	assert.Equal(t, 10500.0, restored.Equity())
	assert.Equal(t, 7, restored.tradeCounter)
	assert.Equal(t, 0.5, restored.patterns.Confidence(domain.SetupSecondEntry))
}
