package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
)

// InventoryRepository manages the equipment registry.
type InventoryRepository interface {
	Create(ctx context.Context, machine *domain.Machine) error
	Update(ctx context.Context, assetTag string, machine *domain.Machine) error
	Delete(ctx context.Context, assetTag string) error
	FindByAssetTag(ctx context.Context, assetTag string) (*domain.Machine, error)
	ListAll(ctx context.Context) ([]domain.Machine, error)
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository instantiates repository.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

const machineColumns = `id, asset_tag, type, brand, model, serial_number, status, ubs, sector, ownership`

func (r *inventoryRepository) Create(ctx context.Context, machine *domain.Machine) error {
	const query = `
        INSERT INTO inventory (asset_tag, type, brand, model, serial_number, status, ubs, sector, ownership)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		machine.AssetTag,
		machine.Type,
		machine.Brand,
		machine.Model,
		machine.SerialNumber,
		machine.Status,
		machine.UBS,
		machine.Sector,
		machine.Ownership,
	).Scan(&machine.ID)
}

func (r *inventoryRepository) Update(ctx context.Context, assetTag string, machine *domain.Machine) error {
	const query = `
        UPDATE inventory SET type=$1, brand=$2, model=$3, serial_number=$4, status=$5, ubs=$6, sector=$7, ownership=$8
        WHERE asset_tag=$9`
	cmd, err := r.pool.Exec(ctx, query,
		machine.Type,
		machine.Brand,
		machine.Model,
		machine.SerialNumber,
		machine.Status,
		machine.UBS,
		machine.Sector,
		machine.Ownership,
		assetTag,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inventoryRepository) Delete(ctx context.Context, assetTag string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM inventory WHERE asset_tag=$1`, assetTag)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inventoryRepository) FindByAssetTag(ctx context.Context, assetTag string) (*domain.Machine, error) {
	var machine domain.Machine
	err := r.pool.QueryRow(ctx, `SELECT `+machineColumns+` FROM inventory WHERE asset_tag=$1`, assetTag).Scan(
		&machine.ID,
		&machine.AssetTag,
		&machine.Type,
		&machine.Brand,
		&machine.Model,
		&machine.SerialNumber,
		&machine.Status,
		&machine.UBS,
		&machine.Sector,
		&machine.Ownership,
	)
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *inventoryRepository) ListAll(ctx context.Context) ([]domain.Machine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+machineColumns+` FROM inventory ORDER BY asset_tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Machine
	for rows.Next() {
		var machine domain.Machine
		if err := rows.Scan(
			&machine.ID,
			&machine.AssetTag,
			&machine.Type,
			&machine.Brand,
			&machine.Model,
			&machine.SerialNumber,
			&machine.Status,
			&machine.UBS,
			&machine.Sector,
			&machine.Ownership,
		); err != nil {
			return nil, err
		}
		result = append(result, machine)
	}
	return result, rows.Err()
}
