// Package ws pushes progress bus events to dashboard WebSocket clients.
// The hub fans every bus event out to all connected clients; slow clients
// are dropped rather than allowed to stall the broadcast loop.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/s4bridge/s4bridge/internal/bus"
)

// replayOnConnect is how many recent events a new client receives.
const replayOnConnect = 50

// Hub manages WebSocket connections and broadcasts bus events to all clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *slog.Logger
	events     *bus.Bus
	mu         sync.RWMutex
}

// Client represents a single WebSocket connection.
type Client struct {
	hub  *Hub
	send chan []byte
	conn wsConn
}

// NewHub creates a hub that relays events from the given bus.
func NewHub(events *bus.Bus, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		events:     events,
	}
}

// Run subscribes to the bus and starts the hub's event loop. The hub
// lives for the process lifetime; call Run in its own goroutine.
func (h *Hub) Run() {
	if h.events != nil {
		h.events.Subscribe(func(ev bus.Event) {
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("encoding bus event", "type", ev.Type, "error", err)
				return
			}
			h.Broadcast(data)
		})
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// replay queues the most recent bus events onto a freshly registered
// client, oldest first, so a dashboard opening mid-run catches up.
func (h *Hub) replay(c *Client, count int) {
	if h.events == nil {
		return
	}
	for _, ev := range h.events.History(count, "") {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		select {
		case c.send <- data:
		default:
			return
		}
	}
}
