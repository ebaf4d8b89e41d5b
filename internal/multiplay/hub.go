package multiplay

import (
	"encoding/json"
	"errors"
	"sync"
)

var ErrConnectionGone = errors.New("connection no longer registered")

// Hub tracks live websocket clients by connection id and addresses outbound
// sends to them. It is the Sender the protocol handler fans out through.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Send marshals msg and queues it on the connection's buffered writer. It
// never blocks: a full buffer drops this delivery only.
func (h *Hub) Send(connID string, msg Outbound) error {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return ErrConnectionGone
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return client.enqueue(data)
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every live connection. Used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
}
