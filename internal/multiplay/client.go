package multiplay

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound buffer per connection; sync_event delivery to a follower whose
	// buffer is full is dropped rather than blocking the fan-out.
	sendBufferSize = 256
)

var ErrSendBufferFull = errors.New("send buffer full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

// Client owns one websocket connection: a read pump feeding the protocol
// handler in arrival order, and a write pump draining the buffered send
// queue.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	hub     *Hub
	handler *Handler
	onClose func()
}

// ServeWS upgrades the request, registers the connection, and starts its
// pumps. onClose, if non-nil, runs once after the connection is torn down.
func ServeWS(hub *Hub, handler *Handler, w http.ResponseWriter, r *http.Request, onClose func()) (string, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return "", err
	}

	client := &Client{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		hub:     hub,
		handler: handler,
		onClose: onClose,
	}

	hub.add(client)
	handler.HandleConnect(client.id)

	go client.writePump()
	go client.readPump()

	return client.id, nil
}

func (c *Client) enqueue(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c.id)
		c.handler.HandleDisconnect(c.id)
		c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("multiplay: read error", "connId", c.id, "error", err)
			}
			return
		}
		c.handler.HandleMessage(c.id, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
