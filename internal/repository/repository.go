// Package repository persists run history and CB reference data in PostgreSQL.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/cb-sentinel/internal/database"
	"github.com/yourusername/cb-sentinel/internal/models"
)

// Repositories holds all repository implementations
type Repositories struct {
	BacktestRun BacktestRunRepository
	ScanRun     ScanRunRepository
	Instrument  InstrumentRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		BacktestRun: NewPostgresBacktestRunRepository(db),
		ScanRun:     NewPostgresScanRunRepository(db),
		Instrument:  NewPostgresInstrumentRepository(db),
	}, nil
}

// notFound maps pgx.ErrNoRows onto models.ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
