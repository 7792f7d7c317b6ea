package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/infocustec/ubs-helpdesk/internal/domain"
	apperrors "github.com/infocustec/ubs-helpdesk/pkg/util"
)

const sessionKey = "session"

// AuthMiddleware resolves the bearer token into a Session stored on the
// request context.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle validates the Authorization header and attaches the session.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	claims, err := m.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	c.Locals(sessionKey, domain.Session{
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin,
	})
	return c.Next()
}

// SessionFromContext returns the session attached by Handle.
func SessionFromContext(c *fiber.Ctx) (domain.Session, bool) {
	session, ok := c.Locals(sessionKey).(domain.Session)
	return session, ok
}
