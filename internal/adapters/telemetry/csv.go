// Package telemetry implements the ports.Telemetry interface as a set of
// append-only CSV files, one per record kind. Telemetry is best-effort:
// every writer error is returned to the caller for logging but must never
// influence a trading decision.
package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"priceActionBot/internal/ports"
)

// CSVSink writes trade, metrics and regime-event rows to three CSV files
// under a common directory, creating headers on first open.
type CSVSink struct {
	mu      sync.Mutex
	trades  *csvFile
	metrics *csvFile
	regime  *csvFile
}

type csvFile struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink opens (or creates) the three telemetry files in dir.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory '%s': %w", dir, err)
	}
	trades, err := openCSV(filepath.Join(dir, "trades.csv"), []string{
		"mode", "trade_index", "symbol", "setup", "direction", "decision",
		"entry_time", "entry_price", "exit_time", "exit_price", "size",
		"atr", "r_multiple", "equity_before", "equity_after", "probability", "regime_paused",
	})
	if err != nil {
		return nil, err
	}
	metrics, err := openCSV(filepath.Join(dir, "metrics.csv"), []string{
		"trade_index", "symbol", "equity", "rolling_expectancy", "rolling_winrate",
		"rolling_sum", "rolling_volatility", "z_score", "probability", "paused",
	})
	if err != nil {
		trades.close()
		return nil, err
	}
	regime, err := openCSV(filepath.Join(dir, "regime_events.csv"), []string{
		"time", "symbol", "event", "expectancy", "winrate", "sum",
	})
	if err != nil {
		trades.close()
		metrics.close()
		return nil, err
	}
	return &CSVSink{trades: trades, metrics: metrics, regime: regime}, nil
}

func openCSV(path string, header []string) (*csvFile, error) {
	info, statErr := os.Stat(path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry file '%s': %w", path, err)
	}
	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header to '%s': %w", path, err)
		}
		w.Flush()
	}
	return &csvFile{file: f, writer: w}, nil
}

func (c *csvFile) write(row []string) error {
	if err := c.writer.Write(row); err != nil {
		return err
	}
	c.writer.Flush()
	return c.writer.Error()
}

func (c *csvFile) close() {
	c.writer.Flush()
	c.file.Close()
}

// LogTrade appends one trade decision row.
func (s *CSVSink) LogTrade(rec ports.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades.write([]string{
		rec.Mode,
		strconv.Itoa(rec.TradeIndex),
		rec.Symbol,
		string(rec.Setup),
		string(rec.Direction),
		rec.Decision,
		formatTime(rec.EntryTime),
		formatFloat(rec.EntryPrice),
		formatTime(rec.ExitTime),
		formatFloat(rec.ExitPrice),
		formatFloat(rec.Size),
		formatFloat(rec.ATR),
		formatFloat(rec.RMultiple),
		formatFloat(rec.EquityBefore),
		formatFloat(rec.EquityAfter),
		formatFloat(rec.Probability),
		strconv.FormatBool(rec.RegimePaused),
	})
}

// LogMetrics appends one rolling-statistics row.
func (s *CSVSink) LogMetrics(rec ports.MetricsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.write([]string{
		strconv.Itoa(rec.TradeIndex),
		rec.Symbol,
		formatFloat(rec.Equity),
		formatFloat(rec.RollingExpectancy),
		formatFloat(rec.RollingWinrate),
		formatFloat(rec.RollingSum),
		formatFloat(rec.RollingVolatility),
		formatFloat(rec.ZScore),
		formatFloat(rec.Probability),
		strconv.FormatBool(rec.Paused),
	})
}

// LogRegimeEvent appends one pause/resume transition row.
func (s *CSVSink) LogRegimeEvent(ev ports.RegimeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regime.write([]string{
		formatTime(ev.Time),
		ev.Symbol,
		ev.Event,
		formatFloat(ev.Expectancy),
		formatFloat(ev.Winrate),
		formatFloat(ev.Sum),
	})
}

// Close flushes and closes all three files.
func (s *CSVSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades.close()
	s.metrics.close()
	s.regime.close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
