// Package notify implements the dashboard's realtime fan-out: an
// explicitly constructed observer hub and a periodic stats broadcaster.
// Delivery is at-most-once: every observer gets a buffered channel and a
// slow consumer's events are dropped rather than blocking the writer.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event is one dashboard push message.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// Hub is a mutex-guarded observer registry. The zero value is not usable;
// construct with NewHub.
type Hub struct {
	mu        sync.Mutex
	observers map[string]chan Event
	buffer    int
}

// NewHub constructs a Hub. buffer is the per-observer channel depth;
// values below 1 get a sane default.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 16
	}
	return &Hub{observers: make(map[string]chan Event), buffer: buffer}
}

// Subscribe registers a new observer and returns its ID and event channel.
// The observer immediately receives connection_success, and every observer
// gets a user_count_update.
func (h *Hub) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	h.observers[id] = ch
	n := len(h.observers)
	h.mu.Unlock()

	// The welcome event goes only to the new observer; the channel is
	// empty so this cannot block.
	ch <- Event{Name: "connection_success", Payload: map[string]any{"sid": id}}
	h.Broadcast("user_count_update", map[string]any{"count": n})
	return id, ch
}

// Unsubscribe removes an observer and closes its channel. Remaining
// observers get a user_count_update.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.observers[id]
	if ok {
		delete(h.observers, id)
	}
	n := len(h.observers)
	h.mu.Unlock()

	if !ok {
		return
	}
	close(ch)
	h.Broadcast("user_count_update", map[string]any{"count": n})
}

// Count returns the number of connected observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Broadcast sends an event to every observer. Sends are non-blocking:
// an observer whose buffer is full loses the event, and the writer never
// waits or fails.
func (h *Hub) Broadcast(event string, payload any) {
	e := Event{Name: event, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.observers {
		select {
		case ch <- e:
		default:
			log.Debug().Str("observer", id).Str("event", event).Msg("observer buffer full, event dropped")
		}
	}
}

// StatsFunc produces the payload for periodic stats_update events.
type StatsFunc func() any

// Broadcaster pushes a stats_update to the hub on a fixed interval until
// its Run context is cancelled.
type Broadcaster struct {
	Hub      *Hub
	Interval time.Duration
	Stats    StatsFunc
}

// NewBroadcaster constructs a Broadcaster; interval values below 1s get
// the default 30s.
func NewBroadcaster(h *Hub, interval time.Duration, stats StatsFunc) *Broadcaster {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	return &Broadcaster{Hub: h, Interval: interval, Stats: stats}
}

// Run blocks, emitting stats_update every interval, until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if b.Hub.Count() == 0 {
				continue
			}
			b.Hub.Broadcast("stats_update", b.Stats())
		}
	}
}
