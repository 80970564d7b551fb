// Package notify fans events out to connected restaurant dashboards.
//
// The hub is an explicitly constructed service: created once at startup and
// handed to whoever publishes or subscribes, never a package-level
// singleton. Delivery is best-effort and at-most-once: a subscriber that
// cannot keep up has events dropped for it, and publishers never block on
// delivery.
package notify

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/comanda-app/comanda/internal/models"
)

var eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "comanda_events_dropped_total",
	Help: "Dashboard events dropped because a subscriber's buffer was full.",
})

// subscriberBuffer is how many undelivered events a subscriber may lag
// behind before events start dropping for it.
const subscriberBuffer = 16

// Hub is a concurrency-safe broadcast registry.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan models.Event
	nextID int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan models.Event)}
}

// Subscribe registers a new listener. The returned cancel function removes
// the subscription and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe() (<-chan models.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan models.Event, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber without blocking.
// Failures are counted and logged, never surfaced to the caller.
func (h *Hub) Publish(event string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := models.Event{Name: event, Data: data}
	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			eventsDropped.Inc()
			slog.Warn("dropping event for slow subscriber", "event", event, "subscriber", id)
		}
	}
}

// Subscribers returns the number of currently registered listeners.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
