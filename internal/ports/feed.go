package ports

import (
	"context"

	"priceActionBot/internal/domain"
)

// MarketFeed supplies ordered closed bars. The core requires only a bulk
// historical warm-up fetch and a blocking poll for the next closed bar;
// no exchange-specific semantics leak through this interface.
type MarketFeed interface {
	// HistoricalBars fetches up to limit closed bars for warm-up, oldest first.
	HistoricalBars(ctx context.Context, symbol, interval string, limit int) ([]domain.Bar, error)

	// NextClosedBar blocks (polling internally) until a closed bar newer than
	// the last one returned is available, or the context is canceled.
	NextClosedBar(ctx context.Context, symbol, interval string) (*domain.Bar, error)
}
