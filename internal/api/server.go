// Package api is the HTTP surface: routing, request parsing, the policy gate
// middleware, and the event-stream lifecycle.
package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Nechnud/chat-app/internal/acl"
	"github.com/Nechnud/chat-app/internal/auth"
	"github.com/Nechnud/chat-app/internal/config"
	"github.com/Nechnud/chat-app/internal/middleware"
	"github.com/Nechnud/chat-app/internal/service"
	"github.com/Nechnud/chat-app/internal/sse"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	log      *zap.SugaredLogger
	gate     *acl.Gate
	tokens   *auth.Manager
	validate *validator.Validate

	authSvc *service.AuthService
	userSvc *service.UserService
	chatSvc *service.ChatService
	msgSvc  *service.MessageService

	registry   *sse.Registry
	dispatcher *sse.Dispatcher
	limiter    *middleware.RateLimiter
}

// New wires the fiber app. The policy gate runs on every /api route before
// any handler touches shared state.
func New(
	cfg *config.Config,
	log *zap.SugaredLogger,
	gate *acl.Gate,
	tokens *auth.Manager,
	authSvc *service.AuthService,
	userSvc *service.UserService,
	chatSvc *service.ChatService,
	msgSvc *service.MessageService,
	registry *sse.Registry,
	dispatcher *sse.Dispatcher,
	limiter *middleware.RateLimiter,
) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:        app,
		cfg:        cfg,
		log:        log,
		gate:       gate,
		tokens:     tokens,
		validate:   validator.New(),
		authSvc:    authSvc,
		userSvc:    userSvc,
		chatSvc:    chatSvc,
		msgSvc:     msgSvc,
		registry:   registry,
		dispatcher: dispatcher,
		limiter:    limiter,
	}

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", auth.Identity(tokens))

	// The gate sits on each route, not on the group: inside a group
	// middleware c.Route().Path is the group's own path, while the policy
	// table keys on the matched pattern.
	aclGate := s.requireACL()

	api.Post("/register", aclGate, s.maybeLimit(), s.register)
	api.Post("/login", aclGate, s.maybeLimit(), s.login)
	api.Get("/login", aclGate, s.me)
	api.Post("/logout", aclGate, s.logout)

	api.Get("/users", aclGate, s.users)
	api.Get("/users/search", aclGate, s.searchUsers)

	api.Get("/chats", aclGate, s.chats)
	api.Post("/chat", aclGate, s.createChat)
	api.Get("/chat/invite/eligible", aclGate, s.invitableUsers)
	api.Post("/chat/invite", aclGate, s.invite)
	api.Get("/chat/users", aclGate, s.chatMembers)
	api.Get("/chat/invites", aclGate, s.invites)
	api.Put("/chat/invite/accept/:id", aclGate, s.acceptInvite)
	api.Put("/chat/ban", aclGate, s.toggleBan)
	api.Post("/chat/disconnect", aclGate, s.announceDisconnect)

	api.Post("/message", aclGate, s.sendMessage)
	api.Get("/messages/:id", aclGate, s.history)
	api.Delete("/message/:id", aclGate, s.deleteMessage)

	api.Get("/sse", aclGate, s.subscribe)

	return s
}

// requireACL denies any (role, route, method) triple the policy table does
// not explicitly allow. It must run after route matching so c.Route().Path
// is the pattern the table keys on. Checked per request; an "allowed" result
// is never cached across requests since the role can change between them.
func (s *Server) requireACL() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := auth.IdentityFrom(c)
		if !s.gate.Allowed(ident.Role, c.Route().Path, c.Method()) {
			return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Not allowed"})
		}
		return c.Next()
	}
}

// maybeLimit applies the redis rate limiter when one is configured.
func (s *Server) maybeLimit() fiber.Handler {
	if s.limiter == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return s.limiter.ByIP()
}

func (s *Server) Listen() error {
	return s.app.Listen(fmt.Sprintf(":%d", s.cfg.App.Port))
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
