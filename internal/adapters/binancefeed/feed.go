// Package binancefeed implements the ports.MarketFeed interface against
// the Binance spot REST API. Live bars are obtained by polling the kline
// endpoint and handing out the most recent fully closed candle; the
// engine only ever consumes closed bars, so a websocket stream of forming
// candles would add complexity without adding information.
package binancefeed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"priceActionBot/internal/domain"
	"priceActionBot/internal/ports"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

const defaultPollInterval = 5 * time.Second

// Feed implements ports.MarketFeed using the go-binance spot client.
type Feed struct {
	client       *binance.Client
	logger       ports.Logger
	pollInterval time.Duration

	mu       sync.Mutex
	lastOpen map[string]int64 // symbol|interval -> open time millis of last bar handed out
}

// Config holds configuration specific to the Binance feed adapter.
type Config struct {
	APIKey       string
	SecretKey    string
	Logger       ports.Logger
	PollInterval time.Duration
}

// New creates a new Binance feed adapter. API keys may be empty: kline
// endpoints are public.
func New(cfg Config) (*Feed, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance feed")
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &Feed{
		client:       binance.NewClient(cfg.APIKey, cfg.SecretKey),
		logger:       cfg.Logger,
		pollInterval: poll,
		lastOpen:     make(map[string]int64),
	}, nil
}

// handleError translates API and transport errors into ports errors.
func (f *Feed) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		mapped := ports.ErrFeedUnavailable
		if apiErr.Code == -1003 {
			mapped = ports.ErrRateLimited
		}
		f.logger.Error(ctx, err, operation+" failed with API error", fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mapped, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	}
	f.logger.Error(ctx, err, operation+" failed", fields)
	return fmt.Errorf("%s failed: %w: %w", operation, ports.ErrFeedUnavailable, err)
}

// HistoricalBars fetches up to limit closed bars, oldest first. The most
// recent kline returned by the API is still forming and is dropped.
func (f *Feed) HistoricalBars(ctx context.Context, symbol, interval string, limit int) ([]domain.Bar, error) {
	op := "HistoricalBars"
	klines, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit + 1).
		Do(ctx)
	if err != nil {
		return nil, f.handleError(ctx, err, op)
	}
	if len(klines) > 0 {
		klines = klines[:len(klines)-1]
	}

	bars := make([]domain.Bar, 0, len(klines))
	for _, k := range klines {
		bar, err := translateKline(k)
		if err != nil {
			return nil, f.handleError(ctx, fmt.Errorf("translating historical kline: %w", err), op)
		}
		bars = append(bars, bar)
	}

	if len(bars) > 0 {
		f.mu.Lock()
		f.lastOpen[feedKey(symbol, interval)] = bars[len(bars)-1].Time.UnixMilli()
		f.mu.Unlock()
	}
	return bars, nil
}

// NextClosedBar polls until a closed bar newer than the last one handed
// out appears. Fetching two klines and taking the second-to-last is the
// cheapest way to get the last guaranteed-closed candle.
func (f *Feed) NextClosedBar(ctx context.Context, symbol, interval string) (*domain.Bar, error) {
	op := "NextClosedBar"
	key := feedKey(symbol, interval)
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		klines, err := f.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			Limit(2).
			Do(ctx)
		if err != nil {
			translated := f.handleError(ctx, err, op)
			if errors.Is(translated, ports.ErrContextCanceled) || errors.Is(translated, ports.ErrTimeout) {
				return nil, translated
			}
			// Transient feed errors are retried on the next tick.
			f.logger.Warn(ctx, op+": poll failed, retrying", map[string]interface{}{
				"symbol": symbol, "error": translated.Error(),
			})
		} else if len(klines) >= 2 {
			closed := klines[len(klines)-2]
			f.mu.Lock()
			isNew := closed.OpenTime > f.lastOpen[key]
			if isNew {
				f.lastOpen[key] = closed.OpenTime
			}
			f.mu.Unlock()
			if isNew {
				bar, err := translateKline(closed)
				if err != nil {
					return nil, f.handleError(ctx, fmt.Errorf("translating closed kline: %w", err), op)
				}
				return &bar, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w: %w", op, ports.ErrContextCanceled, ctx.Err())
		case <-ticker.C:
		}
	}
}

// HistoricalRange fetches all closed bars between start and end, paging
// through the API limit. Used by the kline fetch tool, not the live loop.
func (f *Feed) HistoricalRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.Bar, error) {
	op := "HistoricalRange"
	const maxLimit = 1000
	var bars []domain.Bar
	from := start

	for {
		klines, err := f.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxLimit).
			Do(ctx)
		if err != nil {
			return nil, f.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		for _, k := range klines {
			bar, err := translateKline(k)
			if err != nil {
				return nil, f.handleError(ctx, fmt.Errorf("translating kline range: %w", err), op)
			}
			bars = append(bars, bar)
		}
		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime)
		if from.After(end) || len(klines) < maxLimit {
			break
		}
	}
	return bars, nil
}

func feedKey(symbol, interval string) string {
	return symbol + "|" + interval
}

func translateKline(k *binance.Kline) (domain.Bar, error) {
	if k == nil {
		return domain.Bar{}, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing open price '%s': %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing high price '%s': %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing low price '%s': %w", k.Low, err)
	}
	cls, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing close price '%s': %w", k.Close, err)
	}
	return domain.Bar{
		Time:  time.UnixMilli(k.OpenTime),
		Open:  open,
		High:  high,
		Low:   low,
		Close: cls,
	}, nil
}
