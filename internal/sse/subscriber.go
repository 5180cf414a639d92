// Package sse implements the server-push core: the connection registry that
// tracks open event streams per chat, and the dispatcher that fans events out
// to them.
package sse

import (
	"sync"

	"github.com/google/uuid"
)

// Subscriber is the handle for one open event-stream connection. The
// transport goroutine drains Events; everything else only offers frames or
// closes the handle.
type Subscriber struct {
	ID     string
	ChatID int64
	UserID int64

	events chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewSubscriber allocates a handle with the given event buffer size.
func NewSubscriber(chatID, userID int64, buffer int) *Subscriber {
	return &Subscriber{
		ID:     uuid.NewString(),
		ChatID: chatID,
		UserID: userID,
		events: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// Events is the stream of serialized frames for the transport writer.
func (s *Subscriber) Events() <-chan []byte {
	return s.events
}

// Done is closed exactly once, when the subscriber is shut down.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Close releases the handle. Safe to call any number of times.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// offer hands a frame to the subscriber without blocking. It reports false
// when the subscriber is closed or its buffer is full; the frame is then lost
// for this subscriber only.
func (s *Subscriber) offer(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- frame:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}
