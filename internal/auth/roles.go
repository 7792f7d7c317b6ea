package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

// RequireAuthenticated ensures a session is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := SessionFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the session user holds the admin flag.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !session.IsAdmin {
			return apperrors.NewForbidden("admin required")
		}
		return c.Next()
	}
}
