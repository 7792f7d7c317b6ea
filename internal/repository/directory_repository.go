package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryRepository manages the two name-keyed registries that scope
// tickets and inventory: UBS clinics and sectors.
type DirectoryRepository interface {
	ListUBS(ctx context.Context) ([]string, error)
	AddUBS(ctx context.Context, name string) error
	RenameUBS(ctx context.Context, oldName, newName string) error
	RemoveUBS(ctx context.Context, name string) error

	ListSectors(ctx context.Context) ([]string, error)
	AddSector(ctx context.Context, name string) error
	RenameSector(ctx context.Context, oldName, newName string) error
	RemoveSector(ctx context.Context, name string) error
}

type directoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository instantiates repository.
func NewDirectoryRepository(pool *pgxpool.Pool) DirectoryRepository {
	return &directoryRepository{pool: pool}
}

func (r *directoryRepository) ListUBS(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, `SELECT name FROM ubs_clinics ORDER BY name`)
}

func (r *directoryRepository) AddUBS(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO ubs_clinics (name) VALUES ($1)`, name)
	return err
}

func (r *directoryRepository) RenameUBS(ctx context.Context, oldName, newName string) error {
	return r.rename(ctx, `UPDATE ubs_clinics SET name=$1 WHERE name=$2`, oldName, newName)
}

func (r *directoryRepository) RemoveUBS(ctx context.Context, name string) error {
	return r.remove(ctx, `DELETE FROM ubs_clinics WHERE name=$1`, name)
}

func (r *directoryRepository) ListSectors(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, `SELECT name FROM sectors ORDER BY name`)
}

func (r *directoryRepository) AddSector(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sectors (name) VALUES ($1)`, name)
	return err
}

func (r *directoryRepository) RenameSector(ctx context.Context, oldName, newName string) error {
	return r.rename(ctx, `UPDATE sectors SET name=$1 WHERE name=$2`, oldName, newName)
}

func (r *directoryRepository) RemoveSector(ctx context.Context, name string) error {
	return r.remove(ctx, `DELETE FROM sectors WHERE name=$1`, name)
}

func (r *directoryRepository) listNames(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *directoryRepository) rename(ctx context.Context, query, oldName, newName string) error {
	cmd, err := r.pool.Exec(ctx, query, newName, oldName)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *directoryRepository) remove(ctx context.Context, query, name string) error {
	cmd, err := r.pool.Exec(ctx, query, name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
