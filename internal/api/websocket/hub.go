package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/oshokin/emf-schedule/internal/logger"
)

// Message types sent to clients.
const (
	TypeEvent           = "event"
	TypeScheduleChanged = "schedule_changed"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Per-client and hub queue sizes.
	sendBuffer      = 64
	broadcastBuffer = 256
)

// ErrBroadcastFull is returned when the hub cannot queue another message.
var ErrBroadcastFull = errors.New("broadcast queue full")

// Message is the envelope every client receives.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Hub maintains connected clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	// done is closed once Run returns.
	done     chan struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewHub creates a hub. Call Run to start delivering messages.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Displays are served from arbitrary origins on the event network.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run delivers messages until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	ctx = logger.WithName(ctx, "websocket-hub")

	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()

			logger.InfoKV(ctx, "WebSocket client connected", "client_id", client.id, "total_clients", total)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()

			logger.InfoKV(ctx, "WebSocket client disconnected", "client_id", client.id, "total_clients", total)
		case message := <-h.broadcast:
			h.deliver(ctx, message)
		}
	}
}

func (h *Hub) deliver(ctx context.Context, message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client is not keeping up.
			logger.WarnKV(ctx, "Dropping slow WebSocket client", "client_id", client.id)
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Broadcast queues a message of the given type for every client.
func (h *Hub) Broadcast(messageType string, data any) error {
	message := Message{
		Type:      messageType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	select {
	case h.broadcast <- message:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		logger.WarnKV(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	case <-r.Context().Done():
		_ = conn.Close()
		return
	}

	// The request context is cancelled once the handler returns.
	ctx := logger.WithName(context.WithoutCancel(r.Context()), "websocket-client")
	ctx = logger.WithKV(ctx, "client_id", client.id)

	go client.writePump(ctx)
	go client.readPump(ctx)
}

// Client is one connected display.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// readPump drains incoming frames so control messages are processed.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}

		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.WarnKV(ctx, "WebSocket read failed", "error", err)
			}

			return
		}
	}
}

// writePump sends queued messages and keep-alive pings.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				logger.ErrorKV(ctx, "Failed to encode WebSocket message", "type", message.Type, "error", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.DebugKV(ctx, "WebSocket write failed", "error", err)
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
