package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/repository"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// StockService manages the spare-parts stock.
type StockService struct {
	stock repository.StockRepository
}

// NewStockService constructs the service.
func NewStockService(stock repository.StockRepository) *StockService {
	return &StockService{stock: stock}
}

// AddPart registers a new part. Quantity may be zero.
func (s *StockService) AddPart(ctx context.Context, session domain.Session, part *domain.Part) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	part.Name = strings.TrimSpace(part.Name)
	if part.Name == "" {
		return apperrors.NewValidationError("part name required", nil)
	}
	if part.Quantity < 0 {
		return apperrors.NewValidationError("quantity cannot be negative", nil)
	}
	if err := s.stock.AddPart(ctx, part); err != nil {
		return apperrors.NewPersistenceFailed("add part", part.Name, err)
	}
	return nil
}

// UpdatePart edits a part record.
func (s *StockService) UpdatePart(ctx context.Context, session domain.Session, id int64, part *domain.Part) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if part.Quantity < 0 {
		return apperrors.NewValidationError("quantity cannot be negative", nil)
	}
	if err := s.stock.UpdatePart(ctx, id, part); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("part", map[string]any{"part_id": id})
		}
		return apperrors.NewPersistenceFailed("update part", id, err)
	}
	return nil
}

// RemovePart deletes a part.
func (s *StockService) RemovePart(ctx context.Context, session domain.Session, id int64) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if err := s.stock.DeletePart(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("part", map[string]any{"part_id": id})
		}
		return apperrors.NewPersistenceFailed("remove part", id, err)
	}
	return nil
}

// ListParts returns the full stock.
func (s *StockService) ListParts(ctx context.Context) ([]domain.Part, error) {
	parts, err := s.stock.ListParts(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list parts", nil, err)
	}
	return parts, nil
}
