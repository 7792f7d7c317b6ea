package handlers

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/infocustec/ubs-helpdesk/internal/api/dto"
	"github.com/infocustec/ubs-helpdesk/internal/auth"
	"github.com/infocustec/ubs-helpdesk/internal/domain"
	"github.com/infocustec/ubs-helpdesk/internal/service"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// AdminHandler exposes login, account management and the UBS/sector
// registries.
type AdminHandler struct {
	authService      *service.AuthService
	directoryService *service.DirectoryService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, directoryService *service.DirectoryService) *AdminHandler {
	return &AdminHandler{authService: authService, directoryService: directoryService}
}

// Login POST /auth/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	token, expiresAt, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: workhours.FormatTimestamp(expiresAt),
	}})
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.authService.CreateUser(c.UserContext(), session, req.Username, req.Password, req.IsAdmin); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusCreated)
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	users, err := h.authService.ListUsers(c.UserContext(), session)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.UserResponse{
			Username: users[i].Username,
			Role:     string(users[i].Role),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateRole PUT /admin/users/:username/role.
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	username := c.Params("username")
	if err := h.authService.UpdateRole(c.UserContext(), session, username, domain.UserRole(req.Role)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"username": username, "role": req.Role}})
}

// SetPassword PUT /admin/users/:username/password.
func (h *AdminHandler) SetPassword(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.authService.ForceSetPassword(c.UserContext(), session, c.Params("username"), req.Password); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveUser DELETE /admin/users/:username.
func (h *AdminHandler) RemoveUser(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.authService.RemoveUser(c.UserContext(), session, c.Params("username")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListUBS GET /directory/ubs.
func (h *AdminHandler) ListUBS(c *fiber.Ctx) error {
	names, err := h.directoryService.ListUBS(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": names})
}

// AddUBS POST /directory/ubs.
func (h *AdminHandler) AddUBS(c *fiber.Ctx) error {
	return h.addEntry(c, h.directoryService.AddUBS)
}

// RenameUBS PUT /directory/ubs/:name.
func (h *AdminHandler) RenameUBS(c *fiber.Ctx) error {
	return h.renameEntry(c, h.directoryService.RenameUBS)
}

// RemoveUBS DELETE /directory/ubs/:name.
func (h *AdminHandler) RemoveUBS(c *fiber.Ctx) error {
	return h.removeEntry(c, h.directoryService.RemoveUBS)
}

// ListSectors GET /directory/sectors.
func (h *AdminHandler) ListSectors(c *fiber.Ctx) error {
	names, err := h.directoryService.ListSectors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": names})
}

// AddSector POST /directory/sectors.
func (h *AdminHandler) AddSector(c *fiber.Ctx) error {
	return h.addEntry(c, h.directoryService.AddSector)
}

// RenameSector PUT /directory/sectors/:name.
func (h *AdminHandler) RenameSector(c *fiber.Ctx) error {
	return h.renameEntry(c, h.directoryService.RenameSector)
}

// RemoveSector DELETE /directory/sectors/:name.
func (h *AdminHandler) RemoveSector(c *fiber.Ctx) error {
	return h.removeEntry(c, h.directoryService.RemoveSector)
}

type entryOp func(ctx context.Context, session domain.Session, name string) error

// decodedParam reads a path parameter that may carry spaces or accented
// characters, as UBS and sector names do.
func decodedParam(c *fiber.Ctx, param string) (string, error) {
	name, err := url.PathUnescape(c.Params(param))
	if err != nil || name == "" {
		return "", apperrors.NewValidationError("invalid "+param, nil)
	}
	return name, nil
}

func (h *AdminHandler) addEntry(c *fiber.Ctx, op entryOp) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := op(c.UserContext(), session, req.Name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusCreated)
}

func (h *AdminHandler) renameEntry(c *fiber.Ctx, op func(ctx context.Context, session domain.Session, oldName, newName string) error) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	name, err := decodedParam(c, "name")
	if err != nil {
		return err
	}
	if err := op(c.UserContext(), session, name, req.NewName); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"name": req.NewName}})
}

func (h *AdminHandler) removeEntry(c *fiber.Ctx, op entryOp) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	name, err := decodedParam(c, "name")
	if err != nil {
		return err
	}
	if err := op(c.UserContext(), session, name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
