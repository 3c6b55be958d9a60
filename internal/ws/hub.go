// Package ws streams registry, scene and favorites events to WebSocket
// clients so they can follow device state without polling the API.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/ledsyncd/internal/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512

	sendBufferSize = 64
)

// SnapshotType is the type of the first message each client receives.
const SnapshotType events.EventType = "snapshot"

// SnapshotFunc returns the current registry state sent to a client when it connects.
type SnapshotFunc func() any

// Client is one WebSocket subscriber.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	filter []string
}

// wants reports whether the client subscribed to t. An empty filter accepts
// everything; entries ending in "." match every type with that prefix.
func (c *Client) wants(t events.EventType) bool {
	if len(c.filter) == 0 {
		return true
	}
	for _, f := range c.filter {
		if string(t) == f || (strings.HasSuffix(f, ".") && strings.HasPrefix(string(t), f)) {
			return true
		}
	}
	return false
}

// Hub fans bus events out to every connected client.
type Hub struct {
	logger   *slog.Logger
	snapshot SnapshotFunc

	mu      sync.RWMutex
	clients map[*Client]struct{}

	events     chan events.Event
	register   chan *Client
	unregister chan *Client
	unsub      func()
}

// NewHub subscribes to bus. snapshot may be nil.
func NewHub(logger *slog.Logger, bus *events.Bus, snapshot SnapshotFunc) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		logger:     logger.With("component", "ws"),
		snapshot:   snapshot,
		clients:    make(map[*Client]struct{}),
		events:     make(chan events.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		unsub:      func() {},
	}
	if bus != nil {
		h.unsub = bus.Subscribe(func(e events.Event) {
			// The bus calls subscribers synchronously; never block the producer.
			select {
			case h.events <- e:
			default:
				h.logger.Warn("event queue full, dropping event", "type", e.Type)
			}
		})
	}
	return h
}

// Run delivers events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.unsub()
	h.logger.Info("hub started")

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.sendSnapshot(c)
			h.logger.Info("client connected", "clients", count, "filter", c.filter)

		case c := <-h.unregister:
			h.drop(c)

		case e := <-h.events:
			h.deliver(e)
		}
	}
}

func (h *Hub) deliver(e events.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("failed to marshal event", "type", e.Type, "error", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		if !c.wants(e.Type) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("client too slow, disconnecting", "type", e.Type)
		h.drop(c)
	}
}

func (h *Hub) sendSnapshot(c *Client) {
	if h.snapshot == nil {
		return
	}
	msg, err := json.Marshal(events.NewEvent(SnapshotType, h.snapshot()))
	if err != nil {
		h.logger.Error("failed to marshal snapshot", "error", err)
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client disconnected", "clients", count)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewClient attaches conn to the hub. filter lists the event types the client
// wants; see Client.wants.
func (h *Hub) NewClient(conn *websocket.Conn, filter []string) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		filter: filter,
	}
}

// writePump copies queued messages to the connection and keeps it alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
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

// readPump discards client frames but must run so control frames are handled.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-ctx.Done():
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("read error", "error", err)
			}
			return
		}
	}
}
