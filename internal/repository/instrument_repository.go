package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/cb-sentinel/internal/database"
	"github.com/yourusername/cb-sentinel/internal/models"
)

const instrumentColumns = `bond_id, bond_name, underlying_id, conversion_price, updated_at`

// PostgresInstrumentRepository implements InstrumentRepository for PostgreSQL.
// It also serves as a UniverseSource when the upstream registry is unavailable.
type PostgresInstrumentRepository struct {
	db *database.DB
}

// NewPostgresInstrumentRepository creates a new instrument repository
func NewPostgresInstrumentRepository(db *database.DB) InstrumentRepository {
	return &PostgresInstrumentRepository{db: db}
}

// UpsertBatch inserts or refreshes instruments in a single round trip
func (r *PostgresInstrumentRepository) UpsertBatch(ctx context.Context, instruments []models.CBInstrument) error {
	if len(instruments) == 0 {
		return nil
	}

	query := `INSERT INTO cb_instruments (` + instrumentColumns + `) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (bond_id) DO UPDATE SET
			bond_name = EXCLUDED.bond_name,
			underlying_id = EXCLUDED.underlying_id,
			conversion_price = EXCLUDED.conversion_price,
			updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, inst := range instruments {
		updated := inst.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		batch.Queue(query, inst.BondID, inst.BondName, inst.UnderlyingID, inst.ConversionPrice, updated)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()
	for range instruments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert instrument: %w", err)
		}
	}
	return nil
}

// GetByID retrieves one instrument
func (r *PostgresInstrumentRepository) GetByID(ctx context.Context, bondID string) (*models.CBInstrument, error) {
	query := `SELECT ` + instrumentColumns + ` FROM cb_instruments WHERE bond_id = $1`
	inst := &models.CBInstrument{}
	err := r.db.QueryRow(ctx, query, bondID).Scan(
		&inst.BondID, &inst.BondName, &inst.UnderlyingID, &inst.ConversionPrice, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "instrument "+bondID)
	}
	return inst, nil
}

// FetchUniverse returns every stored instrument ordered by bond id
func (r *PostgresInstrumentRepository) FetchUniverse(ctx context.Context) ([]models.CBInstrument, error) {
	query := `SELECT ` + instrumentColumns + ` FROM cb_instruments ORDER BY bond_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	instruments := make([]models.CBInstrument, 0)
	for rows.Next() {
		var inst models.CBInstrument
		if err := rows.Scan(
			&inst.BondID, &inst.BondName, &inst.UnderlyingID, &inst.ConversionPrice, &inst.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, inst)
	}
	return instruments, rows.Err()
}
