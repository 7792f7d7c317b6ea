package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
)

// StockRepository manages spare parts and their consumption log.
type StockRepository interface {
	AddPart(ctx context.Context, part *domain.Part) error
	UpdatePart(ctx context.Context, id int64, part *domain.Part) error
	DeletePart(ctx context.Context, id int64) error
	GetPartByName(ctx context.Context, name string) (*domain.Part, error)
	ListParts(ctx context.Context) ([]domain.Part, error)
	// DecrementStock lowers the named part's quantity, flooring at zero.
	// Returns the remaining quantity.
	DecrementStock(ctx context.Context, partName string, qty int) (int, error)
	RecordConsumption(ctx context.Context, consumption *domain.PartConsumption) error
	ListConsumptionByTickets(ctx context.Context, ticketIDs []int64) ([]domain.PartConsumption, error)
}

type stockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository instantiates repository.
func NewStockRepository(pool *pgxpool.Pool) StockRepository {
	return &stockRepository{pool: pool}
}

func (r *stockRepository) AddPart(ctx context.Context, part *domain.Part) error {
	const query = `
        INSERT INTO stock (name, quantity, description, invoice_ref, added_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	addedAt := part.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().In(workhours.Location())
		part.AddedAt = addedAt
	}
	return r.pool.QueryRow(ctx, query,
		part.Name,
		part.Quantity,
		part.Description,
		part.InvoiceRef,
		workhours.FormatTimestamp(addedAt),
	).Scan(&part.ID)
}

func (r *stockRepository) UpdatePart(ctx context.Context, id int64, part *domain.Part) error {
	const query = `UPDATE stock SET name=$1, quantity=$2, description=$3, invoice_ref=$4 WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query, part.Name, part.Quantity, part.Description, part.InvoiceRef, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *stockRepository) DeletePart(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM stock WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *stockRepository) GetPartByName(ctx context.Context, name string) (*domain.Part, error) {
	return scanPartRow(r.pool.QueryRow(ctx,
		`SELECT id, name, quantity, description, invoice_ref, added_at FROM stock WHERE name=$1`, name))
}

func (r *stockRepository) ListParts(ctx context.Context) ([]domain.Part, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, quantity, description, invoice_ref, added_at FROM stock ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Part
	for rows.Next() {
		part, err := scanPartRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *part)
	}
	return result, rows.Err()
}

func (r *stockRepository) DecrementStock(ctx context.Context, partName string, qty int) (int, error) {
	const query = `
        UPDATE stock SET quantity = GREATEST(quantity - $1, 0)
        WHERE name=$2
        RETURNING quantity`
	var remaining int
	if err := r.pool.QueryRow(ctx, query, qty, partName).Scan(&remaining); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *stockRepository) RecordConsumption(ctx context.Context, consumption *domain.PartConsumption) error {
	const query = `
        INSERT INTO parts_used (ticket_id, part_name, used_at)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		consumption.TicketID,
		consumption.PartName,
		workhours.FormatTimestamp(consumption.UsedAt),
	).Scan(&consumption.ID)
}

func (r *stockRepository) ListConsumptionByTickets(ctx context.Context, ticketIDs []int64) ([]domain.PartConsumption, error) {
	if len(ticketIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, ticket_id, part_name, used_at FROM parts_used WHERE ticket_id = ANY($1) ORDER BY id`,
		ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PartConsumption
	for rows.Next() {
		var (
			usage  domain.PartConsumption
			usedAt string
		)
		if err := rows.Scan(&usage.ID, &usage.TicketID, &usage.PartName, &usedAt); err != nil {
			return nil, err
		}
		parsed, err := workhours.ParseTimestamp(usedAt)
		if err != nil {
			return nil, err
		}
		usage.UsedAt = parsed
		result = append(result, usage)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartRow(row rowScanner) (*domain.Part, error) {
	var (
		part    domain.Part
		addedAt string
	)
	if err := row.Scan(&part.ID, &part.Name, &part.Quantity, &part.Description, &part.InvoiceRef, &addedAt); err != nil {
		return nil, err
	}
	parsed, err := workhours.ParseTimestamp(addedAt)
	if err != nil {
		return nil, err
	}
	part.AddedAt = parsed
	return &part, nil
}
