package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
)

// TicketRepository encapsulates ticket persistence. Opening and closing
// timestamps are stored as DD/MM/YYYY HH:MM:SS text in the desk timezone;
// the round trip is lossless to the second.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByProtocol(ctx context.Context, protocol int64) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListOpen(ctx context.Context) ([]domain.Ticket, error)
	ListByAssetTag(ctx context.Context, assetTag string) ([]domain.Ticket, error)
	MaxProtocol(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, protocol, requester, ubs, sector, defect_type, problem, asset_tag, opened_at, closed_at, resolution`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (protocol, requester, ubs, sector, defect_type, problem, asset_tag, opened_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.Protocol,
		ticket.Requester,
		ticket.UBS,
		ticket.Sector,
		ticket.DefectType,
		ticket.Problem,
		ticket.AssetTag,
		workhours.FormatTimestamp(ticket.OpenedAt),
	).Scan(&ticket.ID)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET requester=$1, ubs=$2, sector=$3, defect_type=$4, problem=$5,
            asset_tag=$6, closed_at=$7, resolution=$8
        WHERE id=$9`
	var closedAt *string
	if ticket.ClosedAt != nil {
		s := workhours.FormatTimestamp(*ticket.ClosedAt)
		closedAt = &s
	}
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Requester,
		ticket.UBS,
		ticket.Sector,
		ticket.DefectType,
		ticket.Problem,
		ticket.AssetTag,
		closedAt,
		ticket.Resolution,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByProtocol(ctx context.Context, protocol int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE protocol=$1`, protocol)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.fetchMany(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY protocol`)
}

func (r *ticketRepository) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	return r.fetchMany(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE closed_at IS NULL ORDER BY protocol`)
}

func (r *ticketRepository) ListByAssetTag(ctx context.Context, assetTag string) ([]domain.Ticket, error) {
	return r.fetchMany(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE asset_tag=$1 ORDER BY protocol`, assetTag)
}

// MaxProtocol returns the highest protocol number ever issued, zero when
// no tickets exist.
func (r *ticketRepository) MaxProtocol(ctx context.Context) (int64, error) {
	var max int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(protocol), 0) FROM tickets`).Scan(&max)
	return max, err
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	return scanTicket(rows)
}

func (r *ticketRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(rows pgx.Rows) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		openedAt string
		closedAt *string
	)
	if err := rows.Scan(
		&ticket.ID,
		&ticket.Protocol,
		&ticket.Requester,
		&ticket.UBS,
		&ticket.Sector,
		&ticket.DefectType,
		&ticket.Problem,
		&ticket.AssetTag,
		&openedAt,
		&closedAt,
		&ticket.Resolution,
	); err != nil {
		return nil, err
	}

	opened, err := workhours.ParseTimestamp(openedAt)
	if err != nil {
		return nil, err
	}
	ticket.OpenedAt = opened
	if closedAt != nil {
		closed, err := workhours.ParseTimestamp(*closedAt)
		if err != nil {
			return nil, err
		}
		ticket.ClosedAt = &closed
	}
	return &ticket, nil
}
