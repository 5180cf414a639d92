package sse

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"
)

// Event kinds pushed over the stream.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventNewMessage = "new-message"
)

// Dispatcher serializes events and fans them out to every handle currently
// registered for a chat. Delivery is best effort, at most once per handle,
// with no retry and no acknowledgment.
type Dispatcher struct {
	registry *Registry
	log      *zap.SugaredLogger
}

func NewDispatcher(registry *Registry, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

// Broadcast sends one event to all current subscribers of the chat. A
// delivery failure on one handle is logged and never interrupts delivery to
// the rest; removing dead handles is the connection lifecycle's job, not
// ours.
func (d *Dispatcher) Broadcast(chatID int64, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		d.log.Errorw("encode event payload", "chat_id", chatID, "kind", kind, "error", err)
		return
	}
	frame := Frame(kind, data)
	for _, sub := range d.registry.Snapshot(chatID) {
		if !sub.offer(frame) {
			d.log.Warnw("event lost for subscriber",
				"chat_id", chatID, "kind", kind, "subscriber", sub.ID)
		}
	}
}

// Frame renders one wire unit of the streaming protocol:
//
//	event:<kind>\ndata:<json>\n\n
func Frame(kind string, data []byte) []byte {
	var b bytes.Buffer
	b.Grow(len(kind) + len(data) + 16)
	b.WriteString("event:")
	b.WriteString(kind)
	b.WriteString("\ndata:")
	b.Write(data)
	b.WriteString("\n\n")
	return b.Bytes()
}
