package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// BacktestRunRepository defines the interface for backtest run persistence
type BacktestRunRepository interface {
	Create(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetByInstrument(ctx context.Context, instrumentID string, limit int) ([]*models.BacktestRun, error)
}

// ScanRunRepository defines the interface for universe scan persistence
type ScanRunRepository interface {
	Create(ctx context.Context, run *models.ScanRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScanRun, error)
	GetRecent(ctx context.Context, limit int) ([]*models.ScanRun, error)
}

// InstrumentRepository defines the interface for CB reference data
type InstrumentRepository interface {
	UpsertBatch(ctx context.Context, instruments []models.CBInstrument) error
	GetByID(ctx context.Context, bondID string) (*models.CBInstrument, error)
	// FetchUniverse returns every stored instrument ordered by bond id
	FetchUniverse(ctx context.Context) ([]models.CBInstrument, error)
}
