package api

import (
	"bufio"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Nechnud/chat-app/internal/auth"
	"github.com/Nechnud/chat-app/internal/sse"
)

// subscribe opens the event stream for one chat. Lifecycle per connection:
// the policy gate has already run, so the handle is registered, the join is
// announced, and the connection then streams frames until the client goes
// away. Teardown is deferred inside the stream writer, so the
// unregister-then-announce sequence runs no matter which path ended the
// stream.
func (s *Server) subscribe(c *fiber.Ctx) error {
	ident := auth.IdentityFrom(c)
	chatID, err := queryID(c, "chatId")
	if err != nil {
		return err
	}

	sub := sse.NewSubscriber(chatID, ident.ID, s.cfg.SSE.BufferSize)
	s.registry.Register(sub)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// The joining client observes its own join through the same channel as
	// everyone else: the frame is buffered on the handle before the writer
	// below starts draining.
	s.dispatcher.Broadcast(chatID, sse.EventConnect, fiber.Map{
		"message": fmt.Sprintf("clients connected: %d", s.registry.Count(chatID)),
		"chatId":  chatID,
	})

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer s.teardown(sub)
		for {
			select {
			case frame := <-sub.Events():
				if _, err := w.Write(frame); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					// Client disconnected; the transport has no other
					// notification for us.
					return
				}
			case <-sub.Done():
				return
			}
		}
	}))
	return nil
}

// teardown runs the Streaming -> Closed transition: unregister, then
// announce the leave. Unregister reports whether the handle was still
// present, which makes the whole transition idempotent even if the writer
// exit races a registry shutdown.
func (s *Server) teardown(sub *sse.Subscriber) {
	if !s.registry.Unregister(sub) {
		return
	}
	s.dispatcher.Broadcast(sub.ChatID, sse.EventDisconnect, fiber.Map{
		"message": "client disconnected",
		"chatId":  sub.ChatID,
	})
}
