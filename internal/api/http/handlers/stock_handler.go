package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infocustec/ubs-helpdesk/internal/api/dto"
	"github.com/infocustec/ubs-helpdesk/internal/auth"
	"github.com/infocustec/ubs-helpdesk/internal/service"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// StockHandler manages spare-parts endpoints.
type StockHandler struct {
	service *service.StockService
}

// NewStockHandler constructs handler.
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{service: stockService}
}

// Add POST /stock.
func (h *StockHandler) Add(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.PartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	part := req.ToDomain()
	if err := h.service.AddPart(c.UserContext(), session, part); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewPartResponse(part)})
}

// Update PUT /stock/:id.
func (h *StockHandler) Update(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.UpdatePart(c.UserContext(), session, id, req.ToDomain()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"part_id": id}})
}

// Remove DELETE /stock/:id.
func (h *StockHandler) Remove(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.RemovePart(c.UserContext(), session, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List GET /stock.
func (h *StockHandler) List(c *fiber.Ctx) error {
	parts, err := h.service.ListParts(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		items = append(items, dto.NewPartResponse(&parts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
