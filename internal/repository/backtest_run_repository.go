package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/cb-sentinel/internal/database"
	"github.com/yourusername/cb-sentinel/internal/models"
)

const backtestRunColumns = `id, instrument_id, run_date, start_date, end_date, window_size, multiplier,
	holding_days, signal_count, resolved_count, mean_return, win_rate, records, created_at`

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Create inserts a backtest run, assigning an id and timestamp when missing
func (r *PostgresBacktestRunRepository) Create(ctx context.Context, run *models.BacktestRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO backtest_runs (` + backtestRunColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.db.Exec(ctx, query,
		run.ID, run.InstrumentID, run.RunDate, run.StartDate, run.EndDate, run.Window, run.Multiplier,
		run.HoldingDays, run.SignalCount, run.ResolvedCount, run.MeanReturn, run.WinRate, run.Records, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves one backtest run
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs WHERE id = $1`
	run, err := scanBacktestRun(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "backtest run")
	}
	return run, nil
}

// GetByInstrument retrieves the latest runs for an instrument, newest first
func (r *PostgresBacktestRunRepository) GetByInstrument(ctx context.Context, instrumentID string, limit int) ([]*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + `
		FROM backtest_runs WHERE instrument_id = $1 ORDER BY run_date DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, instrumentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run, err := scanBacktestRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanBacktestRun(row pgx.Row) (*models.BacktestRun, error) {
	run := &models.BacktestRun{}
	err := row.Scan(
		&run.ID, &run.InstrumentID, &run.RunDate, &run.StartDate, &run.EndDate, &run.Window, &run.Multiplier,
		&run.HoldingDays, &run.SignalCount, &run.ResolvedCount, &run.MeanReturn, &run.WinRate, &run.Records, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
