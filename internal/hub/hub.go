// Package hub provides the in-process fan-out of advisory realtime
// events to connected clients.  The hub is a transient pub/sub fabric:
// events are best-effort UI-refresh hints with at-most-once delivery,
// no persistence and no replay.  Seat-availability truth always lives
// in the booking store, so a dropped or duplicated event can only
// delay a refresh, never corrupt a booking.
package hub

import (
	"sync"
	"time"
)

// Event types delivered to subscribers.
const (
	EventSeatUpdate    = "seatUpdate"
	EventBookingUpdate = "bookingUpdate"
	EventNotification  = "notification"
)

// Event is one ephemeral message pushed to all connected clients.
// Clients filter for events relevant to them; the hub does not route
// per user.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// subscriberBuffer is the per-subscriber channel depth.  When a
// subscriber falls this far behind, further events are dropped for it
// rather than blocking the publisher.
const subscriberBuffer = 64

// Subscriber is one connected client's event stream.  C receives
// events published after Subscribe was called and is closed by
// Unsubscribe.
type Subscriber struct {
	C  chan Event
	id uint64
}

// Hub broadcasts events to all current subscribers.  All methods are
// safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscriber
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[uint64]*Subscriber)}
}

// Subscribe registers a new client stream.  The returned subscriber
// only sees events published after this call.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	s := &Subscriber{C: make(chan Event, subscriberBuffer), id: h.nextID}
	h.subs[s.id] = s
	return s
}

// Unsubscribe removes a subscriber and closes its channel.  Calling it
// for an already removed subscriber is a no-op.
func (h *Hub) Unsubscribe(s *Subscriber) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.id]; !ok {
		return
	}
	delete(h.subs, s.id)
	close(s.C)
}

// Publish delivers an event to every current subscriber.  It never
// blocks: a subscriber whose buffer is full misses the event.  With no
// subscribers it is a cheap no-op.
func (h *Hub) Publish(eventType string, payload interface{}) {
	ev := Event{Type: eventType, Payload: payload, At: time.Now().UTC()}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		select {
		case s.C <- ev:
		default:
			// Subscriber too slow; drop the event for it.
		}
	}
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
