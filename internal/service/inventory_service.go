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

// InventoryService manages the equipment registry and its cross-links to
// tickets, parts and maintenance history.
type InventoryService struct {
	inventory   repository.InventoryRepository
	tickets     repository.TicketRepository
	stock       repository.StockRepository
	maintenance repository.MaintenanceRepository
}

// InventoryDependencies bundles repositories for the inventory service.
type InventoryDependencies struct {
	InventoryRepo   repository.InventoryRepository
	TicketRepo      repository.TicketRepository
	StockRepo       repository.StockRepository
	MaintenanceRepo repository.MaintenanceRepository
}

// NewInventoryService constructs the service.
func NewInventoryService(deps InventoryDependencies) *InventoryService {
	return &InventoryService{
		inventory:   deps.InventoryRepo,
		tickets:     deps.TicketRepo,
		stock:       deps.StockRepo,
		maintenance: deps.MaintenanceRepo,
	}
}

// Register adds a machine. Asset tags are unique.
func (s *InventoryService) Register(ctx context.Context, session domain.Session, machine *domain.Machine) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	machine.AssetTag = strings.TrimSpace(machine.AssetTag)
	if machine.AssetTag == "" || machine.Type == "" {
		return apperrors.NewValidationError("asset tag and type required", nil)
	}

	if _, err := s.inventory.FindByAssetTag(ctx, machine.AssetTag); err == nil {
		return apperrors.NewConflict("asset tag already registered", map[string]any{"asset_tag": machine.AssetTag})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewPersistenceFailed("inventory lookup", machine.AssetTag, err)
	}

	if machine.Status == "" {
		machine.Status = domain.MachineStatusActive
	}
	if machine.Ownership == "" {
		machine.Ownership = domain.OwnershipOwned
	}
	if err := s.inventory.Create(ctx, machine); err != nil {
		return apperrors.NewPersistenceFailed("register machine", machine.AssetTag, err)
	}
	return nil
}

// Update edits an existing machine record.
func (s *InventoryService) Update(ctx context.Context, session domain.Session, assetTag string, machine *domain.Machine) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if err := s.inventory.Update(ctx, assetTag, machine); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("machine", map[string]any{"asset_tag": assetTag})
		}
		return apperrors.NewPersistenceFailed("update machine", assetTag, err)
	}
	return nil
}

// Remove deletes a machine from the registry.
func (s *InventoryService) Remove(ctx context.Context, session domain.Session, assetTag string) error {
	if !session.IsAdmin {
		return apperrors.NewForbidden("admin required")
	}
	if err := s.inventory.Delete(ctx, assetTag); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("machine", map[string]any{"asset_tag": assetTag})
		}
		return apperrors.NewPersistenceFailed("remove machine", assetTag, err)
	}
	return nil
}

// Lookup resolves a machine by asset tag.
func (s *InventoryService) Lookup(ctx context.Context, assetTag string) (*domain.Machine, error) {
	machine, err := s.inventory.FindByAssetTag(ctx, assetTag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("machine", map[string]any{"asset_tag": assetTag})
		}
		return nil, apperrors.NewPersistenceFailed("inventory lookup", assetTag, err)
	}
	return machine, nil
}

// ListAll returns the full registry.
func (s *InventoryService) ListAll(ctx context.Context) ([]domain.Machine, error) {
	machines, err := s.inventory.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list inventory", nil, err)
	}
	return machines, nil
}

// MaintenanceHistory returns the repair log for a machine.
func (s *InventoryService) MaintenanceHistory(ctx context.Context, assetTag string) ([]domain.MaintenanceEntry, error) {
	entries, err := s.maintenance.ListByAssetTag(ctx, assetTag)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list maintenance history", assetTag, err)
	}
	return entries, nil
}

// PartsUsed returns every part consumed across a machine's tickets.
func (s *InventoryService) PartsUsed(ctx context.Context, assetTag string) ([]domain.PartConsumption, error) {
	tickets, err := s.tickets.ListByAssetTag(ctx, assetTag)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list tickets by asset", assetTag, err)
	}
	ids := make([]int64, 0, len(tickets))
	for i := range tickets {
		ids = append(ids, tickets[i].ID)
	}
	usages, err := s.stock.ListConsumptionByTickets(ctx, ids)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list part consumption", assetTag, err)
	}
	return usages, nil
}
