package ports

import (
	"context"

	"priceActionBot/internal/domain"
)

// StateStore snapshots and restores engine state between runs.
// Load returns ErrNotFound when no snapshot exists and ErrSnapshotSchema
// when the stored version does not match domain.SnapshotSchemaVersion;
// callers must treat both as a cold start, never a crash.
type StateStore interface {
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
	LoadSnapshot(ctx context.Context, symbol string) (*domain.Snapshot, error)
}

// TradeJournal persists completed trades for later analysis.
type TradeJournal interface {
	RecordTrade(ctx context.Context, trade *domain.Trade) error
	RecentTrades(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error)
}
