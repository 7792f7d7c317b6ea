package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/infocustec/ubs-helpdesk/internal/api/dto"
	"github.com/infocustec/ubs-helpdesk/internal/auth"
	"github.com/infocustec/ubs-helpdesk/internal/service"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// InventoryHandler manages equipment registry endpoints.
type InventoryHandler struct {
	service *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: inventoryService}
}

// Register POST /inventory.
func (h *InventoryHandler) Register(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.MachineRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	machine := req.ToDomain()
	if err := h.service.Register(c.UserContext(), session, machine); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMachineResponse(machine)})
}

// Update PUT /inventory/:tag.
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.MachineRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Update(c.UserContext(), session, c.Params("tag"), req.ToDomain()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"asset_tag": c.Params("tag")}})
}

// Remove DELETE /inventory/:tag.
func (h *InventoryHandler) Remove(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.service.Remove(c.UserContext(), session, c.Params("tag")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get GET /inventory/:tag.
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	machine, err := h.service.Lookup(c.UserContext(), c.Params("tag"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMachineResponse(machine)})
}

// List GET /inventory.
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	machines, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.MachineResponse, 0, len(machines))
	for i := range machines {
		items = append(items, dto.NewMachineResponse(&machines[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MaintenanceHistory GET /inventory/:tag/maintenance.
func (h *InventoryHandler) MaintenanceHistory(c *fiber.Ctx) error {
	entries, err := h.service.MaintenanceHistory(c.UserContext(), c.Params("tag"))
	if err != nil {
		return err
	}
	items := make([]dto.MaintenanceEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewMaintenanceEntryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// PartsUsed GET /inventory/:tag/parts.
func (h *InventoryHandler) PartsUsed(c *fiber.Ctx) error {
	usages, err := h.service.PartsUsed(c.UserContext(), c.Params("tag"))
	if err != nil {
		return err
	}
	items := make([]dto.PartConsumptionResponse, 0, len(usages))
	for i := range usages {
		items = append(items, dto.NewPartConsumptionResponse(&usages[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
