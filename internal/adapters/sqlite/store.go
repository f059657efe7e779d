package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"priceActionBot/internal/domain"
	"priceActionBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store implements the ports.StateStore and ports.TradeJournal interfaces
// using SQLite. Snapshots are stored as a versioned JSON payload: the
// engine state evolves faster than a relational layout would survive, and
// a schema-version mismatch must degrade to a cold start rather than a
// half-read snapshot.
type Store struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite store.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewStore creates a new SQLite store instance.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite store")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/price_action_bot.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{db: db, logger: cfg.Logger}
	if err := store.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite store ready", map[string]interface{}{"path": dbPath})
	return store, nil
}

func (s *Store) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		symbol TEXT PRIMARY KEY,
		schema_version INTEGER NOT NULL,
		saved_at TIMESTAMP NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		setup TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		size REAL NOT NULL,
		r_multiple REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		close_reason TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_exit_time ON trades (symbol, exit_time);
	`
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		s.logger.Info(context.Background(), "Closing SQLite store")
		return s.db.Close()
	}
	return nil
}

// --- StateStore implementation ---

// SaveSnapshot upserts the snapshot for its symbol.
func (s *Store) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	snap.Version = domain.SnapshotSchemaVersion
	snap.SavedAt = time.Now().UTC()
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for %s: %w", snap.Symbol, err)
	}

	const query = `
	INSERT INTO snapshots (symbol, schema_version, saved_at, payload)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(symbol) DO UPDATE SET
		schema_version = excluded.schema_version,
		saved_at = excluded.saved_at,
		payload = excluded.payload`
	if _, err := s.db.ExecContext(ctx, query, snap.Symbol, snap.Version, snap.SavedAt, string(payload)); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w: %w", snap.Symbol, ports.ErrQueryFailed, err)
	}
	return nil
}

// LoadSnapshot returns ErrNotFound when no snapshot exists for the symbol
// and ErrSnapshotSchema when the stored version differs from the current
// one. Both mean cold start for the caller.
func (s *Store) LoadSnapshot(ctx context.Context, symbol string) (*domain.Snapshot, error) {
	const query = `SELECT schema_version, payload FROM snapshots WHERE symbol = ?`
	var version int
	var payload string
	err := s.db.QueryRowContext(ctx, query, symbol).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no snapshot for %s: %w", symbol, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	if version != domain.SnapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot for %s has schema version %d, want %d: %w",
			symbol, version, domain.SnapshotSchemaVersion, ports.ErrSnapshotSchema)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("corrupt snapshot payload for %s: %w: %w", symbol, ports.ErrSnapshotSchema, err)
	}
	return &snap, nil
}

// --- TradeJournal implementation ---

// RecordTrade appends a completed trade to the journal.
func (s *Store) RecordTrade(ctx context.Context, trade *domain.Trade) error {
	const query = `
	INSERT INTO trades (symbol, setup, direction, entry_price, exit_price, size, r_multiple, entry_time, exit_time, close_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		trade.Symbol, string(trade.Setup), string(trade.Direction),
		trade.EntryPrice, trade.ExitPrice, trade.Size, trade.RMultiple,
		trade.EntryTime, trade.ExitTime, string(trade.CloseReason))
	if err != nil {
		return fmt.Errorf("failed to record trade for %s: %w: %w", trade.Symbol, ports.ErrQueryFailed, err)
	}
	return nil
}

// RecentTrades returns up to limit most recent trades, newest first.
func (s *Store) RecentTrades(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	const query = `
	SELECT symbol, setup, direction, entry_price, exit_price, size, r_multiple, entry_time, exit_time, close_reason
	FROM trades WHERE symbol = ? ORDER BY exit_time DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		var setup, direction, reason string
		if err := rows.Scan(&t.Symbol, &setup, &direction, &t.EntryPrice, &t.ExitPrice,
			&t.Size, &t.RMultiple, &t.EntryTime, &t.ExitTime, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w: %w", ports.ErrQueryFailed, err)
		}
		t.Setup = domain.SetupType(setup)
		t.Direction = domain.Direction(direction)
		t.CloseReason = domain.CloseReason(reason)
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trade row iteration failed: %w: %w", ports.ErrQueryFailed, err)
	}
	return trades, nil
}
