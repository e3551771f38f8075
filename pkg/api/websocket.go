package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192
	sendBufferSize = 256
)

// Subscription channels.
const (
	ChannelMetrics   = "metrics"
	ChannelTurns     = "turns"
	ChannelResources = "resources"
)

// Event types.
const (
	EventTypeTurn           = "turn"
	EventTypeMetrics        = "metrics"
	EventTypeResourceUpdate = "resource_update"
	EventTypeSubscribe      = "subscribe"
	EventTypeUnsubscribe    = "unsubscribe"
	EventTypePing           = "ping"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

func validChannel(ch string) bool {
	switch ch {
	case ChannelMetrics, ChannelTurns, ChannelResources:
		return true
	}
	return false
}

// WSMessage is the WebSocket envelope in both directions.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
	Channels  []string    `json:"channels,omitempty"`
}

// TurnEventData is pushed on the turns channel after each chat turn.
type TurnEventData struct {
	SessionID string        `json:"sessionId"`
	Turn      *session.Turn `json:"turn"`
}

// MetricsEventData is pushed on the metrics channel whenever a session's
// memory or simulator changes.
type MetricsEventData struct {
	SessionID string          `json:"sessionId"`
	Metrics   session.Metrics `json:"metrics"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SetUpgraderCheckOrigin replaces the upgrade origin check.
func SetUpgraderCheckOrigin(fn func(*http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// makeOriginChecker accepts requests without an Origin header and those
// whose origin is listed. "*" accepts everything.
func makeOriginChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool)
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client is one WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// sendMu guards send against a close from the hub.
	sendMu sync.Mutex
	closed bool

	subscriptions map[string]bool
	subMu         sync.RWMutex
}

// NewClient creates a client bound to hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		subscriptions: make(map[string]bool),
	}
}

// Subscribe adds channel subscriptions.
func (c *Client) Subscribe(channels ...string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range channels {
		c.subscriptions[ch] = true
	}
}

// Unsubscribe removes channel subscriptions.
func (c *Client) Unsubscribe(channels ...string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range channels {
		delete(c.subscriptions, ch)
	}
}

// IsSubscribed reports whether the client listens on channel.
func (c *Client) IsSubscribed(channel string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return c.subscriptions[channel]
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("invalid_json", "Failed to parse message")
		return
	}

	switch msg.Type {
	case EventTypeSubscribe, EventTypeUnsubscribe:
		c.handleSubscription(msg)
	case EventTypePing:
		c.enqueue(&WSMessage{Type: EventTypePong, Timestamp: timestamp()})
	default:
		c.sendError("unknown_type", "Unknown message type: "+msg.Type)
	}
}

// handleSubscription applies a subscribe or unsubscribe request and
// acknowledges it with the channels that were accepted.
func (c *Client) handleSubscription(msg WSMessage) {
	if len(msg.Channels) == 0 {
		c.sendError("invalid_subscribe", "No channels specified")
		return
	}

	valid := make([]string, 0, len(msg.Channels))
	for _, ch := range msg.Channels {
		if validChannel(ch) {
			valid = append(valid, ch)
		} else {
			log.Printf("[ws] unknown channel: %s", ch)
		}
	}
	if len(valid) == 0 {
		c.sendError("invalid_subscribe", "No known channels specified")
		return
	}

	if msg.Type == EventTypeSubscribe {
		c.Subscribe(valid...)
	} else {
		c.Unsubscribe(valid...)
	}
	c.enqueue(&WSMessage{Type: msg.Type, Channels: valid, Timestamp: timestamp()})
}

func (c *Client) sendError(code, message string) {
	c.enqueue(&WSMessage{
		Type:      EventTypeError,
		Data:      map[string]string{"code": code, "message": message},
		Timestamp: timestamp(),
	})
}

// enqueue drops the message when the send buffer is full.
func (c *Client) enqueue(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend queues data without blocking. It reports false when the buffer
// is full or the hub has already closed the client.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel once, ending writePump.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
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

// -----------------------------------------------------------------------------
// Hub
// -----------------------------------------------------------------------------

// Hub tracks connected clients and fans events out to subscribers.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	// mu protects clients
	mu sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. Call Run before accepting connections.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client connected (total: %d)", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client disconnected (total: %d)", n)
		}
	}
}

// Stop shuts the hub down. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastToChannel sends msg to every client subscribed to channel.
// Clients whose buffers are full miss the message.
func (h *Hub) BroadcastToChannel(channel string, msg *WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.IsSubscribed(channel) {
			continue
		}
		client.trySend(data)
	}
	return nil
}

// BroadcastTurn publishes a completed chat turn.
func (h *Hub) BroadcastTurn(sessionID string, turn *session.Turn) error {
	return h.BroadcastToChannel(ChannelTurns, &WSMessage{
		Type:      EventTypeTurn,
		Data:      &TurnEventData{SessionID: sessionID, Turn: turn},
		Timestamp: timestamp(),
	})
}

// PublishTurn broadcasts a turn event followed by the metrics it produced.
// Failures are logged.
func (h *Hub) PublishTurn(sessionID string, turn *session.Turn) {
	if err := h.BroadcastTurn(sessionID, turn); err != nil {
		log.Printf("[ws] turn broadcast failed: %v", err)
	}
	if err := h.BroadcastMetrics(sessionID, turn.Metrics); err != nil {
		log.Printf("[ws] metrics broadcast failed: %v", err)
	}
}

// BroadcastMetrics publishes a session's current metrics.
func (h *Hub) BroadcastMetrics(sessionID string, m session.Metrics) error {
	return h.BroadcastToChannel(ChannelMetrics, &WSMessage{
		Type:      EventTypeMetrics,
		Data:      &MetricsEventData{SessionID: sessionID, Metrics: m},
		Timestamp: timestamp(),
	})
}

// BroadcastResources publishes a host resource sample.
func (h *Hub) BroadcastResources(snap *ResourceSnapshot) error {
	return h.BroadcastToChannel(ChannelResources, &WSMessage{
		Type:      EventTypeResourceUpdate,
		Data:      snap,
		Timestamp: timestamp(),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// -----------------------------------------------------------------------------
// HTTP Handler
// -----------------------------------------------------------------------------

// WebSocketHandler upgrades /ws requests and registers the client.
type WebSocketHandler struct {
	hub *Hub
}

// NewWebSocketHandler creates a handler for hub.
func NewWebSocketHandler(hub *Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// RegisterRoutes registers GET /ws.
func (h *WebSocketHandler) RegisterRoutes(router *Router) {
	router.GET("/ws", h.ServeHTTP)
}

// ServeHTTP implements http.Handler.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
