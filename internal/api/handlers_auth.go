package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Nechnud/chat-app/internal/auth"
	"github.com/Nechnud/chat-app/internal/models"
)

const sessionCookie = "session"

type credentialsReq struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=200"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req credentialsReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Incorrect parameters"})
	}

	ident, err := s.authSvc.Register(c.Context(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.issueSession(c, ident)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req credentialsReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Incorrect parameters"})
	}

	ident, err := s.authSvc.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.issueSession(c, ident)
}

func (s *Server) issueSession(c *fiber.Ctx, ident models.Identity) error {
	token, err := s.tokens.Sign(ident)
	if err != nil {
		return s.respondError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  time.Now().Add(s.cfg.TokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"user": ident, "token": token})
}

// me returns the identity behind the current session.
func (s *Server) me(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	if ident.Role == models.RoleVisitor {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false})
	}
	return c.JSON(fiber.Map{"user": ident})
}

// logout clears the session cookie. Tokens are stateless, so discarding the
// cookie is the whole operation.
func (s *Server) logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true, "result": "Logged out"})
}
