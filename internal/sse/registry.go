package sse

import "sync"

// Registry is the process-wide map from chat id to the set of open
// subscriber handles. It is the only shared mutable structure in the
// broadcast core; a single RWMutex guards it, since set mutations and
// snapshots are cheap.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int64]map[string]*Subscriber
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int64]map[string]*Subscriber)}
}

// Register adds the subscriber to its chat's set. Registering the same
// handle twice is a no-op; two handles owned by the same client are two
// entries, and broadcasts are attempted per handle.
func (r *Registry) Register(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[sub.ChatID]
	if !ok {
		room = make(map[string]*Subscriber)
		r.rooms[sub.ChatID] = room
	}
	room[sub.ID] = sub
}

// Unregister removes and closes the subscriber. It reports whether the
// handle was still registered, so callers can make disconnect side effects
// run exactly once. Empty rooms are pruned to keep the key space bounded.
func (r *Registry) Unregister(sub *Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[sub.ChatID]
	if !ok {
		return false
	}
	if _, ok := room[sub.ID]; !ok {
		return false
	}
	delete(room, sub.ID)
	if len(room) == 0 {
		delete(r.rooms, sub.ChatID)
	}
	sub.Close()
	return true
}

// Snapshot returns a consistent point-in-time copy of the chat's handle set.
// Mutations made after the snapshot do not affect the returned slice.
func (r *Registry) Snapshot(chatID int64) []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[chatID]
	if len(room) == 0 {
		return nil
	}
	subs := make([]*Subscriber, 0, len(room))
	for _, sub := range room {
		subs = append(subs, sub)
	}
	return subs
}

// Count returns the number of open handles for the chat.
func (r *Registry) Count(chatID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[chatID])
}

// Shutdown closes every handle and empties the registry. Used on process
// shutdown; no disconnect events are emitted for the closed handles since
// subsequent Unregister calls find nothing to remove.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for chatID, room := range r.rooms {
		for _, sub := range room {
			sub.Close()
		}
		delete(r.rooms, chatID)
	}
}
