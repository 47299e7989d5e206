package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"

	"github.com/example/presence-relay/modules/relay"
)

// sendBufferSize is the per-session outbound queue depth. When a client's
// queue is full, events for it are dropped: delivery is best-effort
// at-most-once and one slow reader must not stall the rest of the room.
const sendBufferSize = 64

// Conn is the subset of the WebSocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client is one registered session with its dedicated write pump. All writes
// to a connection go through the send channel, so a connection is only ever
// written from a single goroutine and per-session event order is preserved.
type client struct {
	sessionID string
	conn      Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *client) writePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// envelope is the outbound wire format.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub addresses outbound events to live sessions. It implements
// relay.EventSink: the relay decides who receives what, the hub only knows
// how to reach a session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  types.Logger
	done    chan struct{}
}

// Compile-time interface check.
var _ relay.EventSink = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Run blocks until the context is cancelled, then closes every client's send
// queue so the write pumps drain and exit.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	for sessionID, c := range h.clients {
		c.close()
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()

	close(h.done)
}

// Wait blocks until Run has finished shutting down.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a session and starts its write pump.
func (h *Hub) Register(sessionID string, conn Conn) {
	c := &client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[sessionID] = c
	h.mu.Unlock()

	go c.writePump()
}

// Unregister removes a session and stops its write pump. Unknown sessions are
// a no-op.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	c, exists := h.clients[sessionID]
	if exists {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()

	if exists {
		c.close()
	}
}

// ClientCount returns the number of registered sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send delivers an event to a single session. Sends to unknown sessions are
// dropped silently.
func (h *Hub) Send(sessionID, event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	c := h.clients[sessionID]
	h.mu.RUnlock()

	if c != nil {
		h.enqueue(c, data)
	}
}

// SendAll delivers an event to every registered session.
func (h *Hub) SendAll(event string, payload any) {
	data, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.enqueue(c, data)
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(envelope{Type: event, Payload: payload})
	if err != nil {
		h.logger.Error("Failed to marshal outbound event", "event", event, "error", err)
		return nil, false
	}
	return data, true
}

func (h *Hub) enqueue(c *client, data []byte) {
	defer func() {
		// The send queue may be closed concurrently by Unregister; a dropped
		// event on a closing session is within the delivery contract.
		_ = recover()
	}()
	select {
	case c.send <- data:
	default:
		h.logger.Debug("Dropped event for slow session", "sessionID", c.sessionID)
	}
}
