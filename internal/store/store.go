// Package store persists market records and best-bid ticks to Postgres.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS markets (
	id BIGSERIAL PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	title TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ticks (
	id BIGSERIAL PRIMARY KEY,
	market_id BIGINT NOT NULL REFERENCES markets(id),
	ts BIGINT NOT NULL,
	buy_up_price BIGINT,
	buy_down_price BIGINT,
	buy_up_size BIGINT,
	buy_down_size BIGINT
);

CREATE INDEX IF NOT EXISTS idx_ticks_market_ts ON ticks (market_id, ts);
`

// Tick is one persisted observation of a market snapshot. Prices and sizes
// are fixed-point micro-units; a side stays NULL until first observed.
type Tick struct {
	TS           int64 // feed-reported epoch milliseconds
	MarketID     int64
	BuyUpPrice   pgtype.Int8
	BuyDownPrice pgtype.Int8
	BuyUpSize    pgtype.Int8
	BuyDownSize  pgtype.Int8
}

type Store struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func New(pool *pgxpool.Pool, log *slog.Logger) *Store {
	return &Store{
		pool: pool,
		log:  log.With("component", "store"),
	}
}

// CreateSchema bootstraps the markets and ticks tables.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("couldn't create schema: %w", err)
	}
	return nil
}

// GetOrCreateMarket returns the id of the market with the given slug,
// creating it if needed. Safe to call repeatedly for the same slug.
func (s *Store) GetOrCreateMarket(ctx context.Context, slug, title string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO markets (slug, title)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id`,
		slug, title,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("couldn't get or create market %s: %w", slug, err)
	}
	return id, nil
}

// InsertTicks writes a batch of ticks in a single round trip.
func (s *Store) InsertTicks(ctx context.Context, ticks []Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range ticks {
		batch.Queue(`
			INSERT INTO ticks (ts, market_id, buy_up_price, buy_down_price, buy_up_size, buy_down_size)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			t.TS, t.MarketID, t.BuyUpPrice, t.BuyDownPrice, t.BuyUpSize, t.BuyDownSize,
		)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("couldn't insert %d ticks: %w", len(ticks), err)
	}

	s.log.Debug("inserted ticks", "count", len(ticks))
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
