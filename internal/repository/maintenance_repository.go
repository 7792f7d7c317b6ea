package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
)

// MaintenanceRepository is the repair log attached to inventory items.
// Deletion is keyed by (asset tag, performed-at); timestamps round-trip
// through the desk text format so the key written at ticket close matches
// the key deleted at reopen exactly.
type MaintenanceRepository interface {
	Append(ctx context.Context, entry *domain.MaintenanceEntry) error
	Delete(ctx context.Context, assetTag string, performedAt time.Time) error
	ListByAssetTag(ctx context.Context, assetTag string) ([]domain.MaintenanceEntry, error)
}

type maintenanceRepository struct {
	pool *pgxpool.Pool
}

// NewMaintenanceRepository instantiates repository.
func NewMaintenanceRepository(pool *pgxpool.Pool) MaintenanceRepository {
	return &maintenanceRepository{pool: pool}
}

func (r *maintenanceRepository) Append(ctx context.Context, entry *domain.MaintenanceEntry) error {
	const query = `
        INSERT INTO maintenance_history (asset_tag, description, performed_at)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		entry.AssetTag,
		entry.Description,
		workhours.FormatTimestamp(entry.PerformedAt),
	).Scan(&entry.ID)
}

func (r *maintenanceRepository) Delete(ctx context.Context, assetTag string, performedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM maintenance_history WHERE asset_tag=$1 AND performed_at=$2`,
		assetTag, workhours.FormatTimestamp(performedAt))
	return err
}

func (r *maintenanceRepository) ListByAssetTag(ctx context.Context, assetTag string) ([]domain.MaintenanceEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, asset_tag, description, performed_at FROM maintenance_history WHERE asset_tag=$1 ORDER BY id`,
		assetTag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MaintenanceEntry
	for rows.Next() {
		var (
			entry       domain.MaintenanceEntry
			performedAt string
		)
		if err := rows.Scan(&entry.ID, &entry.AssetTag, &entry.Description, &performedAt); err != nil {
			return nil, err
		}
		parsed, err := workhours.ParseTimestamp(performedAt)
		if err != nil {
			return nil, err
		}
		entry.PerformedAt = parsed
		result = append(result, entry)
	}
	return result, rows.Err()
}
