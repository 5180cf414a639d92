package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Nechnud/chat-app/internal/models"
)

const identityKey = "identity"

// Identity resolves the caller for every request. A missing or invalid token
// yields the visitor identity rather than an error; the policy gate decides
// what visitors may do.
func Identity(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(identityKey, resolve(m, c))
		return c.Next()
	}
}

func resolve(m *Manager, c *fiber.Ctx) models.Identity {
	tokenStr := c.Cookies("session")
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if t, err := ParseBearerToken(h); err == nil {
			tokenStr = t
		}
	}
	if tokenStr == "" {
		return models.Visitor()
	}
	claims, err := m.Verify(tokenStr)
	if err != nil {
		return models.Visitor()
	}
	return models.Identity{ID: claims.UserID, Username: claims.Username, Role: claims.Role}
}

// IdentityFrom returns the identity stored by the Identity middleware.
func IdentityFrom(c *fiber.Ctx) models.Identity {
	if ident, ok := c.Locals(identityKey).(models.Identity); ok {
		return ident
	}
	return models.Visitor()
}
