package database

import (
	"context"
	"fmt"

	"github.com/yourusername/cb-sentinel/internal/config"
)

// schema is applied idempotently on startup
var schema = []string{
	`CREATE TABLE IF NOT EXISTS cb_instruments (
		bond_id          TEXT PRIMARY KEY,
		bond_name        TEXT NOT NULL DEFAULT '',
		underlying_id    TEXT NOT NULL,
		conversion_price NUMERIC NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS backtest_runs (
		id             UUID PRIMARY KEY,
		instrument_id  TEXT NOT NULL,
		run_date       TIMESTAMPTZ NOT NULL,
		start_date     DATE NOT NULL,
		end_date       DATE NOT NULL,
		window_size    INTEGER NOT NULL,
		multiplier     NUMERIC NOT NULL,
		holding_days   INTEGER NOT NULL,
		signal_count   INTEGER NOT NULL,
		resolved_count INTEGER NOT NULL,
		mean_return    NUMERIC NOT NULL,
		win_rate       NUMERIC NOT NULL,
		records        JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_runs_instrument ON backtest_runs (instrument_id, run_date DESC)`,
	`CREATE TABLE IF NOT EXISTS scan_runs (
		id              UUID PRIMARY KEY,
		run_at          TIMESTAMPTZ NOT NULL,
		trailing_k      INTEGER NOT NULL,
		hits            TEXT[] NOT NULL,
		succeeded_count INTEGER NOT NULL,
		skipped_count   INTEGER NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_runs_run_at ON scan_runs (run_at DESC)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates missing tables and indexes
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
