package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Nechnud/chat-app/internal/auth"
)

func (s *Server) users(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	users, err := s.userSvc.Users(c.Context(), ident, limit)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": users})
}

func (s *Server) searchUsers(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	users, err := s.userSvc.Search(c.Context(), ident, c.Query("searchValue"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": users})
}

func (s *Server) chats(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	chats, err := s.chatSvc.Chats(c.Context(), ident)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": chats})
}

type createChatReq struct {
	Subject string `json:"subject" validate:"required,max=200"`
}

func (s *Server) createChat(c *fiber.Ctx) error {
	var req createChatReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Incorrect parameters"})
	}

	ident := auth.IdentityFrom(c)
	chat, err := s.chatSvc.Create(c.Context(), ident, req.Subject)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": "Chat created", "chat": chat})
}

func (s *Server) invitableUsers(c *fiber.Ctx) error {
	chatID, err := queryID(c, "chatId")
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	ident := auth.IdentityFrom(c)
	users, svcErr := s.chatSvc.InvitableUsers(c.Context(), ident, chatID, limit)
	if svcErr != nil {
		return s.respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"success": true, "result": users})
}

func (s *Server) invite(c *fiber.Ctx) error {
	chatID, err := queryID(c, "chatId")
	if err != nil {
		return err
	}
	userID, err := queryID(c, "userId")
	if err != nil {
		return err
	}
	ident := auth.IdentityFrom(c)
	if err := s.chatSvc.Invite(c.Context(), ident, chatID, userID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": "Chat invite sent"})
}

func (s *Server) chatMembers(c *fiber.Ctx) error {
	chatID, err := queryID(c, "chatId")
	if err != nil {
		return err
	}
	ident := auth.IdentityFrom(c)
	members, svcErr := s.chatSvc.Members(c.Context(), ident, chatID)
	if svcErr != nil {
		return s.respondError(c, svcErr)
	}
	return c.JSON(fiber.Map{"success": true, "result": members})
}

func (s *Server) invites(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	invites, err := s.chatSvc.Invites(c.Context(), ident)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": invites})
}

func (s *Server) acceptInvite(c *fiber.Ctx) error {
	chatID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ident := auth.IdentityFrom(c)
	if err := s.chatSvc.AcceptInvite(c.Context(), ident, chatID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": "Chat invitation accepted"})
}

func (s *Server) toggleBan(c *fiber.Ctx) error {
	chatID, err := queryID(c, "chatId")
	if err != nil {
		return err
	}
	userID, err := queryID(c, "userId")
	if err != nil {
		return err
	}
	ident := auth.IdentityFrom(c)
	if err := s.chatSvc.ToggleBan(c.Context(), ident, chatID, userID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": "User banned/unbanned from chat"})
}

type disconnectReq struct {
	ChatID int64 `json:"chatId" validate:"required,gt=0"`
}

func (s *Server) announceDisconnect(c *fiber.Ctx) error {
	var req disconnectReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Incorrect parameters"})
	}
	s.chatSvc.AnnounceDisconnect(req.ChatID, auth.IdentityFrom(c))
	return c.SendString("ok")
}

func queryID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Incorrect parameters")
	}
	return id, nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Incorrect parameters")
	}
	return id, nil
}
