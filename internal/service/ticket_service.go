package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/events"
	"github.com/infocustec/ubs-helpdesk/internal/persistence"
	"github.com/infocustec/ubs-helpdesk/internal/repository"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// pgUniqueViolation is the Postgres error code raised when the protocol
// unique index rejects a concurrent insert.
const pgUniqueViolation = "23505"

// reportCacheKeys lists cache entries invalidated on any ticket mutation.
var reportCacheKeys = []string{"reports:summary"}

// TicketService owns the ticket lifecycle: open, close, reopen, and the
// derived working-time view.
type TicketService struct {
	tickets     repository.TicketRepository
	inventory   repository.InventoryRepository
	stock       repository.StockRepository
	maintenance repository.MaintenanceRepository
	dispatcher  events.Dispatcher
	cache       *persistence.ReportCache
	clock       workhours.Clock
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	InventoryRepo   repository.InventoryRepository
	StockRepo       repository.StockRepository
	MaintenanceRepo repository.MaintenanceRepository
	Dispatcher      events.Dispatcher
	Cache           *persistence.ReportCache
	Clock           workhours.Clock
	Logger          *zap.Logger
}

// OpenTicketInput describes ticket creation payload. UBS and Sector may be
// left blank when an asset tag is given; they are then filled from the
// inventory record.
type OpenTicketInput struct {
	UBS        string
	Sector     string
	DefectType string
	Problem    string
	AssetTag   *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = workhours.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		inventory:   deps.InventoryRepo,
		stock:       deps.StockRepo,
		maintenance: deps.MaintenanceRepo,
		dispatcher:  deps.Dispatcher,
		cache:       deps.Cache,
		clock:       clock,
		logger:      logger,
	}
}

// Open creates a ticket in the Open state and returns its protocol number.
// The requester is the session user. The protocol is allocated from the
// current maximum; a uniqueness race at insert time is retried once before
// surfacing as an allocation failure.
func (s *TicketService) Open(ctx context.Context, session domain.Session, input OpenTicketInput) (int64, error) {
	requester := strings.TrimSpace(session.Username)
	ubs := strings.TrimSpace(input.UBS)
	sector := strings.TrimSpace(input.Sector)
	defectType := strings.TrimSpace(input.DefectType)
	problem := strings.TrimSpace(input.Problem)

	if requester == "" {
		return 0, apperrors.NewValidationError("requester required", nil)
	}
	if defectType == "" || problem == "" {
		return 0, apperrors.NewValidationError("defect type and problem description required", nil)
	}

	var assetTag *string
	if input.AssetTag != nil {
		if tag := strings.TrimSpace(*input.AssetTag); tag != "" {
			assetTag = &tag
		}
	}

	if assetTag != nil {
		machine, err := s.lookupOrRegisterMachine(ctx, *assetTag, ubs, sector)
		if err != nil {
			return 0, err
		}
		if machine != nil {
			if ubs == "" {
				ubs = machine.UBS
			}
			if sector == "" {
				sector = machine.Sector
			}
		}
	}

	if ubs == "" || sector == "" {
		return 0, apperrors.NewValidationError("ubs and sector required", nil)
	}

	openedAt := s.clock.Now().Truncate(time.Second)
	ticket := &domain.Ticket{
		Requester:  requester,
		UBS:        ubs,
		Sector:     sector,
		DefectType: defectType,
		Problem:    problem,
		AssetTag:   assetTag,
		OpenedAt:   openedAt,
	}

	if err := s.allocateAndInsert(ctx, ticket); err != nil {
		return 0, err
	}

	s.invalidateReports(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketOpened,
		Protocol: ticket.Protocol,
		Actor:    requester,
		Payload: events.TicketOpenedPayload{
			UBS:        ticket.UBS,
			Sector:     ticket.Sector,
			DefectType: ticket.DefectType,
			AssetTag:   ticket.AssetTag,
		},
	})
	return ticket.Protocol, nil
}

// allocateAndInsert assigns the next protocol number and persists the
// ticket, retrying once when a concurrent creator wins the same number.
func (s *TicketService) allocateAndInsert(ctx context.Context, ticket *domain.Ticket) error {
	for attempt := 0; attempt < 2; attempt++ {
		max, err := s.tickets.MaxProtocol(ctx)
		if err != nil {
			return apperrors.NewAllocationFailed(err)
		}
		ticket.Protocol = max + 1

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			s.logger.Warn("protocol collision, retrying allocation",
				zap.Int64("protocol", ticket.Protocol))
			continue
		}
		return apperrors.NewPersistenceFailed("open ticket", ticket.Protocol, err)
	}
	return apperrors.NewAllocationFailed(errors.New("protocol number collided twice"))
}

// Close finalizes an open ticket: stamps the closing time, records the
// resolution, logs consumed parts against stock and appends a maintenance
// entry when the ticket references an inventory item. Parts bookkeeping is
// best effort; individual failures are logged and never roll back the
// close.
func (s *TicketService) Close(ctx context.Context, session domain.Session, ticketID int64, resolution string, partsUsed []string) error {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return apperrors.NewValidationError("resolution required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.NewPersistenceFailed("load ticket", ticketID, err)
	}
	if !ticket.IsOpen() {
		return apperrors.NewValidationError("ticket already closed", map[string]any{"ticket_id": ticketID})
	}

	closedAt := s.clock.Now().Truncate(time.Second)
	ticket.ClosedAt = &closedAt
	ticket.Resolution = &resolution

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.NewPersistenceFailed("close ticket", ticketID, err)
	}

	parts := cleanParts(partsUsed)
	for _, part := range parts {
		s.consumePart(ctx, ticket.ID, part, closedAt)
	}

	if ticket.AssetTag != nil {
		entry := &domain.MaintenanceEntry{
			AssetTag:    *ticket.AssetTag,
			Description: maintenanceDescription(resolution, parts),
			PerformedAt: closedAt,
		}
		if err := s.maintenance.Append(ctx, entry); err != nil {
			s.logger.Error("maintenance history append failed",
				zap.String("asset_tag", *ticket.AssetTag),
				zap.Int64("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}

	s.invalidateReports(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		Protocol: ticket.Protocol,
		Actor:    session.Username,
		Payload: events.TicketClosedPayload{
			Resolution: resolution,
			PartsUsed:  parts,
			WorkedTime: workhours.FormatDuration(workhours.Elapsed(ticket.OpenedAt, closedAt)),
		},
	})
	return nil
}

// Reopen returns a closed ticket to the Open state, clearing the closing
// timestamp and resolution. Reopening an already-open ticket is a no-op.
// With removeMaintenanceRecord, the maintenance entry written at the prior
// close is deleted.
func (s *TicketService) Reopen(ctx context.Context, session domain.Session, ticketID int64, removeMaintenanceRecord bool) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.NewPersistenceFailed("load ticket", ticketID, err)
	}
	if ticket.IsOpen() {
		s.logger.Info("ticket already open, nothing to reopen", zap.Int64("ticket_id", ticketID))
		return nil
	}

	priorClosedAt := *ticket.ClosedAt
	ticket.ClosedAt = nil
	ticket.Resolution = nil

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.NewPersistenceFailed("reopen ticket", ticketID, err)
	}

	historyRemoved := false
	if removeMaintenanceRecord && ticket.AssetTag != nil {
		if err := s.maintenance.Delete(ctx, *ticket.AssetTag, priorClosedAt); err != nil {
			s.logger.Error("maintenance history delete failed",
				zap.String("asset_tag", *ticket.AssetTag),
				zap.Int64("ticket_id", ticketID),
				zap.Error(err))
		} else {
			historyRemoved = true
		}
	}

	s.invalidateReports(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReopened,
		Protocol: ticket.Protocol,
		Actor:    session.Username,
		Payload:  events.TicketReopenedPayload{HistoryRemoved: historyRemoved},
	})
	return nil
}

// ComputeElapsed returns the working time accumulated by a ticket. Open
// tickets are measured against the current instant, so the value changes
// on every call.
func (s *TicketService) ComputeElapsed(ticket *domain.Ticket) time.Duration {
	end := s.clock.Now()
	if ticket.ClosedAt != nil {
		end = *ticket.ClosedAt
	}
	return workhours.Elapsed(ticket.OpenedAt, end)
}

// GetByProtocol fetches a ticket by its public handle.
func (s *TicketService) GetByProtocol(ctx context.Context, protocol int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByProtocol(ctx, protocol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"protocol": protocol})
		}
		return nil, apperrors.NewPersistenceFailed("load ticket", protocol, err)
	}
	return ticket, nil
}

// ListAll returns every ticket.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list tickets", nil, err)
	}
	return tickets, nil
}

// ListOpen returns tickets with no closing timestamp.
func (s *TicketService) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list open tickets", nil, err)
	}
	return tickets, nil
}

// ListByAssetTag returns the tickets ever raised against one machine.
func (s *TicketService) ListByAssetTag(ctx context.Context, assetTag string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByAssetTag(ctx, assetTag)
	if err != nil {
		return nil, apperrors.NewPersistenceFailed("list tickets by asset", assetTag, err)
	}
	return tickets, nil
}

// lookupOrRegisterMachine resolves an asset tag, auto-registering a
// placeholder inventory item when the tag is unknown.
func (s *TicketService) lookupOrRegisterMachine(ctx context.Context, assetTag, ubs, sector string) (*domain.Machine, error) {
	machine, err := s.inventory.FindByAssetTag(ctx, assetTag)
	if err == nil {
		return machine, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewPersistenceFailed("inventory lookup", assetTag, err)
	}

	placeholder := &domain.Machine{
		AssetTag:  assetTag,
		Type:      domain.EquipmentOther,
		Status:    domain.MachineStatusActive,
		UBS:       ubs,
		Sector:    sector,
		Ownership: domain.OwnershipOwned,
	}
	if err := s.inventory.Create(ctx, placeholder); err != nil {
		s.logger.Warn("placeholder inventory registration failed",
			zap.String("asset_tag", assetTag), zap.Error(err))
		return nil, nil
	}
	s.logger.Info("registered placeholder inventory item", zap.String("asset_tag", assetTag))
	return placeholder, nil
}

// consumePart records a consumption row and decrements stock. Either step
// failing is logged and skipped; the close itself stands.
func (s *TicketService) consumePart(ctx context.Context, ticketID int64, part string, usedAt time.Time) {
	usage := &domain.PartConsumption{
		TicketID: ticketID,
		PartName: part,
		UsedAt:   usedAt,
	}
	if err := s.stock.RecordConsumption(ctx, usage); err != nil {
		s.logger.Error("part consumption record failed",
			zap.Int64("ticket_id", ticketID),
			zap.String("part", part),
			zap.Error(err))
	}

	remaining, err := s.stock.DecrementStock(ctx, part, 1)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("part not found in stock", zap.String("part", part))
		} else {
			s.logger.Error("stock decrement failed", zap.String("part", part), zap.Error(err))
		}
		return
	}
	if remaining == 0 {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventStockDepleted,
			Payload: events.StockDepletedPayload{PartName: part},
		})
	}
}

func (s *TicketService) invalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, reportCacheKeys...); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func cleanParts(parts []string) []string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func maintenanceDescription(resolution string, parts []string) string {
	partsText := "Nenhuma"
	if len(parts) > 0 {
		partsText = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("Manutenção: %s. Peças utilizadas: %s.", resolution, partsText)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
