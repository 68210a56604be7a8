// Package bus is the in-process progress event bus. Components publish
// typed lifecycle events; subscribers (websocket hub, SSE clients, TUI
// monitor) receive them synchronously in registration order. A fixed-size
// ring buffer keeps the most recent events for replay; the oldest entry is
// evicted once capacity is reached. Emission order is strict FIFO and the
// buffer is never exposed for mutation.
package bus

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the replay buffer size used by New.
const DefaultCapacity = 1000

// Event type catalog. Prefix filtering matches on the segment before ':'.
const (
	ExtractionStart    = "extraction:start"
	ExtractionProgress = "extraction:progress"
	ExtractionComplete = "extraction:complete"
	ExtractionError    = "extraction:error"

	MigrationStart    = "migration:start"
	MigrationProgress = "migration:progress"
	MigrationComplete = "migration:complete"
	MigrationError    = "migration:error"

	AgentStart    = "agent:start"
	AgentProgress = "agent:progress"
	AgentComplete = "agent:complete"
	AgentError    = "agent:error"

	SystemHealth = "system:health"
	SystemInfo   = "system:info"

	Connected = "connected"
)

var catalog = map[string]bool{
	ExtractionStart: true, ExtractionProgress: true, ExtractionComplete: true, ExtractionError: true,
	MigrationStart: true, MigrationProgress: true, MigrationComplete: true, MigrationError: true,
	AgentStart: true, AgentProgress: true, AgentComplete: true, AgentError: true,
	SystemHealth: true, SystemInfo: true, Connected: true,
}

// KnownType reports whether t is part of the event catalog.
func KnownType(t string) bool { return catalog[t] }

// Event is a single published lifecycle event.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives published events. Panics inside a handler are recovered
// and logged; they never prevent delivery to later subscribers.
type Handler func(Event)

type subscriber struct {
	id int
	fn Handler
}

// Bus is the progress event bus.
type Bus struct {
	mu       sync.Mutex
	subs     []subscriber
	nextID   int
	buffer   []Event
	next     int
	count    int
	capacity int
	logger   *slog.Logger
}

// New creates a bus with the default replay capacity.
func New(logger *slog.Logger) *Bus {
	return NewWithCapacity(logger, DefaultCapacity)
}

// NewWithCapacity creates a bus with an explicit replay capacity.
func NewWithCapacity(logger *slog.Logger, capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		buffer:   make([]Event, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Capacity returns the replay buffer capacity.
func (b *Bus) Capacity() int { return b.capacity }

// Emit publishes an event to every subscriber and appends it to the replay
// buffer. Delivery is synchronous and in registration order.
func (b *Bus) Emit(eventType string, data any) {
	if !KnownType(eventType) {
		b.logger.Warn("emitting event outside catalog", "type", eventType)
	}

	b.mu.Lock()
	ev := Event{Type: eventType, Data: data, Timestamp: time.Now()}
	b.buffer[b.next] = ev
	b.next = (b.next + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(s, ev)
	}
}

func (b *Bus) deliver(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "type", ev.Type, "panic", r)
		}
	}()
	s.fn(ev)
}

// Subscribe registers a handler and returns its unsubscribe function.
func (b *Bus) Subscribe(fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// History returns the most recent count events, oldest first. count <= 0
// means everything retained. typePrefix filters by event type: "migration"
// matches every migration:* event, a full type matches only itself.
func (b *Bus) History(count int, typePrefix string) []Event {
	b.mu.Lock()
	all := make([]Event, 0, b.count)
	start := b.next - b.count
	if start < 0 {
		start += b.capacity
	}
	for i := 0; i < b.count; i++ {
		all = append(all, b.buffer[(start+i)%b.capacity])
	}
	b.mu.Unlock()

	if typePrefix != "" {
		filtered := all[:0]
		for _, ev := range all {
			if matchType(ev.Type, typePrefix) {
				filtered = append(filtered, ev)
			}
		}
		all = filtered
	}

	if count > 0 && len(all) > count {
		all = all[len(all)-count:]
	}
	return all
}

func matchType(eventType, prefix string) bool {
	return eventType == prefix || strings.HasPrefix(eventType, prefix+":")
}
