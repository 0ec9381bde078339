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

const scanRunColumns = `id, run_at, trailing_k, hits, succeeded_count, skipped_count, created_at`

// PostgresScanRunRepository implements ScanRunRepository for PostgreSQL
type PostgresScanRunRepository struct {
	db *database.DB
}

// NewPostgresScanRunRepository creates a new scan run repository
func NewPostgresScanRunRepository(db *database.DB) ScanRunRepository {
	return &PostgresScanRunRepository{db: db}
}

// Create inserts a scan run
func (r *PostgresScanRunRepository) Create(ctx context.Context, run *models.ScanRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	hits := run.Hits
	if hits == nil {
		hits = []string{}
	}

	query := `INSERT INTO scan_runs (` + scanRunColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.db.Exec(ctx, query,
		run.ID, run.RunAt, run.TrailingK, hits, run.SucceededCount, run.SkippedCount, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scan run: %w", err)
	}
	return nil
}

// GetByID retrieves one scan run
func (r *PostgresScanRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScanRun, error) {
	query := `SELECT ` + scanRunColumns + ` FROM scan_runs WHERE id = $1`
	run, err := scanScanRun(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "scan run")
	}
	return run, nil
}

// GetRecent retrieves the latest scan runs, newest first
func (r *PostgresScanRunRepository) GetRecent(ctx context.Context, limit int) ([]*models.ScanRun, error) {
	query := `SELECT ` + scanRunColumns + ` FROM scan_runs ORDER BY run_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ScanRun
	for rows.Next() {
		run, err := scanScanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanScanRun(row pgx.Row) (*models.ScanRun, error) {
	run := &models.ScanRun{}
	if err := row.Scan(
		&run.ID, &run.RunAt, &run.TrailingK, &run.Hits, &run.SucceededCount, &run.SkippedCount, &run.CreatedAt,
	); err != nil {
		return nil, err
	}
	return run, nil
}
