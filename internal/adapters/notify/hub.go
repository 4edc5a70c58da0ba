// Package notify pushes console change notifications to connected
// renderers over WebSocket. Renderers refetch the view on each message.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AchilleasB/membership-console/internal/core/ports"
)

const MessageConsoleUpdated = "console_updated"

// Message is the notification broadcast after every console state change.
type Message struct {
	Type   string    `json:"type"`
	Screen string    `json:"screen"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.ChangeNotifier = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "notify"),
		now:     time.Now,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// NotifyChange broadcasts a console_updated message.
func (h *Hub) NotifyChange(screen, action string) {
	h.Broadcast(Message{
		Type:   MessageConsoleUpdated,
		Screen: screen,
		Action: action,
		At:     h.now().UTC(),
	})
}

// Broadcast never blocks: a client whose buffer is full misses the message
// and picks up the state with the next one.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("client buffer full, dropping message", "type", msg.Type, "action", msg.Action)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
