package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Nechnud/chat-app/internal/service"
)

// respondError maps the service rejection taxonomy onto HTTP statuses.
// Eligibility rejections stay generic so they leak no membership state.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Not allowed"})
	case errors.Is(err, service.ErrNotEligible):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "not eligible"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "invalid credentials"})
	case errors.Is(err, service.ErrPersistence):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "temporary storage failure"})
	default:
		s.log.Errorw("unhandled error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "internal error"})
	}
}
