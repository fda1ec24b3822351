package notification

import (
	"sync"
)

// Conn is the subset of a websocket connection the hub writes to.
// Satisfied by *websocket.Conn.
type Conn interface {
	WriteJSON(v interface{}) error
}

// client pairs a connection with a write lock. Websocket connections allow
// only one concurrent writer, and pushes can originate from a request
// goroutine and the reminder job at the same time.
type client struct {
	conn Conn
	mu   sync.Mutex
}

// Hub fans live notifications out to connected clients, keyed by user ID.
// A user may hold several connections (multiple tabs).
type Hub struct {
	mu    sync.RWMutex
	conns map[string][]*client
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string][]*client)}
}

func (h *Hub) Register(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], &client{conn: conn})
}

func (h *Hub) Unregister(userID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := h.conns[userID][:0]
	for _, c := range h.conns[userID] {
		if c.conn != conn {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(h.conns, userID)
	} else {
		h.conns[userID] = remaining
	}
}

// Push sends a JSON payload to every open connection for the user. Writes are
// serialized per connection. Failed writes are ignored; the read loop cleans
// dead connections up.
func (h *Hub) Push(userID string, payload interface{}) {
	h.mu.RLock()
	clients := append([]*client(nil), h.conns[userID]...)
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteJSON(payload)
		c.mu.Unlock()
	}
}
