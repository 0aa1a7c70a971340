// Package ws pushes assignment notifications to connected drivers over websockets.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"order-service/internal/logx"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Client is one driver connection.
type Client struct {
	id       string
	driverID int64
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

// Hub tracks driver connections. A driver may hold several connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[string]*Client
	stopped bool
	logger  logx.Logger
}

// NewHub creates a Hub.
func NewHub(logger logx.Logger) *Hub {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Hub{clients: make(map[int64]map[string]*Client), logger: logger}
}

// Run blocks until ctx is done, then drops every connection and refuses new ones.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.mu.Lock()
	h.stopped = true
	for _, conns := range h.clients {
		for _, c := range conns {
			close(c.send)
		}
	}
	h.clients = make(map[int64]map[string]*Client)
	h.mu.Unlock()
	h.logger.Info("websocket hub stopped")
}

func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	if h.clients[c.driverID] == nil {
		h.clients[c.driverID] = make(map[string]*Client)
	}
	h.clients[c.driverID][c.id] = c
	h.logger.Info("driver connected", logx.DriverID(c.driverID), logx.String("conn_id", c.id))
	return true
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.clients[c.driverID]
	if _, ok := conns[c.id]; !ok {
		return
	}
	delete(conns, c.id)
	if len(conns) == 0 {
		delete(h.clients, c.driverID)
	}
	close(c.send)
	h.logger.Info("driver disconnected", logx.DriverID(c.driverID), logx.String("conn_id", c.id))
}

// SendToDriver queues msg on every connection of the driver and reports how many accepted it.
// Slow connections drop the message.
func (h *Hub) SendToDriver(driverID int64, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.clients[driverID] {
		select {
		case c.send <- msg:
			n++
		default:
			h.logger.Warn("websocket send dropped", logx.DriverID(driverID), logx.String("conn_id", c.id))
		}
	}
	return n
}

// Connected reports whether the driver has at least one live connection.
func (h *Hub) Connected(driverID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[driverID]) > 0
}

// ServeDriver upgrades the request and attaches the connection to driverID. The caller has
// already authenticated the request.
func (h *Hub) ServeDriver(w http.ResponseWriter, r *http.Request, driverID int64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logx.DriverID(driverID), logx.Err(err))
		return
	}
	c := &Client{
		id:       uuid.NewString(),
		driverID: driverID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		hub:      h,
	}
	if !h.add(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only keeps the connection alive; drivers do not send commands over it.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", logx.DriverID(c.driverID), logx.Err(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
