// Package notify fans display snapshots out to connected listeners.
package notify

import (
	"sync"

	"github.com/google/uuid"

	"github.com/zulandar/gatedesk/internal/models"
)

// subscriberBuffer is the per-listener channel depth. A listener that falls
// further behind than this loses events; the next broadcast carries the full
// current state, so nothing needs replaying.
const subscriberBuffer = 8

// Hub broadcasts display snapshots to subscribers. Delivery is
// fire-and-forget: sends never block the broadcaster.
type Hub struct {
	mu   sync.Mutex
	subs map[string]chan models.DisplaySnapshot
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan models.DisplaySnapshot)}
}

// Subscribe registers a new listener and returns its ID and event channel.
// The caller must Unsubscribe with the same ID when done.
func (h *Hub) Subscribe() (string, <-chan models.DisplaySnapshot) {
	ch := make(chan models.DisplaySnapshot, subscriberBuffer)
	id := uuid.NewString()

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe removes the listener and closes its channel. Unknown IDs are
// ignored, so calling twice is safe.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Broadcast sends the snapshot to every subscriber without blocking.
// Subscribers with a full channel are skipped.
func (h *Hub) Broadcast(snap models.DisplaySnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
