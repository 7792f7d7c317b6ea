package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/infocustec/ubs-helpdesk/internal/api/dto"
	"github.com/infocustec/ubs-helpdesk/internal/auth"
	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/service"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Open POST /tickets.
func (h *TicketsHandler) Open(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.OpenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	protocol, err := h.service.Open(c.UserContext(), session, service.OpenTicketInput{
		UBS:        req.UBS,
		Sector:     req.Sector,
		DefectType: req.DefectType,
		Problem:    req.Problem,
		AssetTag:   req.AssetTag,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.OpenTicketResponse{Protocol: protocol}})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Close(c.UserContext(), session, id, req.Resolution, req.PartsUsed); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": id, "status": domain.TicketStatusClosed}})
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReopenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Reopen(c.UserContext(), session, id, req.RemoveMaintenanceRecord); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_id": id, "status": domain.TicketStatusOpen}})
}

// GetByProtocol GET /tickets/protocol/:protocol.
func (h *TicketsHandler) GetByProtocol(c *fiber.Ctx) error {
	protocol, err := parseID(c, "protocol")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetByProtocol(c.UserContext(), protocol)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.render(ticket)})
}

// List GET /tickets. The open query flag restricts to open tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	var (
		tickets []domain.Ticket
		err     error
	)
	if c.QueryBool("open") {
		tickets, err = h.service.ListOpen(c.UserContext())
	} else {
		tickets, err = h.service.ListAll(c.UserContext())
	}
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.render(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListByAsset GET /tickets/asset/:tag.
func (h *TicketsHandler) ListByAsset(c *fiber.Ctx) error {
	tickets, err := h.service.ListByAssetTag(c.UserContext(), c.Params("tag"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.render(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DefectTypes GET /tickets/defect-types?equipment=....
func (h *TicketsHandler) DefectTypes(c *fiber.Ctx) error {
	equipment := c.Query("equipment")
	return c.JSON(fiber.Map{"data": domain.DefectTypesFor(equipment)})
}

func (h *TicketsHandler) render(ticket *domain.Ticket) dto.TicketResponse {
	worked := workhours.FormatDuration(h.service.ComputeElapsed(ticket))
	return dto.NewTicketResponse(ticket, worked)
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+param, nil)
	}
	return id, nil
}
