package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Nechnud/chat-app/internal/auth"
)

type sendMessageReq struct {
	ChatID  int64  `json:"chatId" validate:"required,gt=0"`
	Content string `json:"content" validate:"required"`
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Incorrect parameters"})
	}

	ident := auth.IdentityFrom(c)
	msg, err := s.msgSvc.Ingest(c.Context(), ident, req.ChatID, req.Content)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": msg})
}

func (s *Server) history(c *fiber.Ctx) error {
	chatID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ident := auth.IdentityFrom(c)
	messages, svcErr := s.chatSvc.History(c.Context(), ident, chatID)
	if svcErr != nil {
		return s.respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"success": true, "result": messages})
}

func (s *Server) deleteMessage(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.chatSvc.DeleteMessage(c.Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": "Message deleted"})
}
