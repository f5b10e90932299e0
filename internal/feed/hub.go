package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"launch-curve/internal/events"
	"launch-curve/internal/observability"
)

// HubConfig configures feed connection behavior.
type HubConfig struct {
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// SendBuffer is the per-client outbound queue size. Slow clients
	// that fall behind the buffer are disconnected.
	SendBuffer int
	// MaxMessageSize bounds inbound command frames.
	MaxMessageSize int64
}

// DefaultHubConfig returns default feed configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval:   30 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		SendBuffer:     64,
		MaxMessageSize: 4096,
	}
}

// Hub fans committed trades and graduations out to connected WebSocket
// clients and dispatches their inbound commands to the engine.
type Hub struct {
	config   HubConfig
	engine   CommandTarget
	logger   *zap.Logger
	metrics  *observability.Metrics
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a feed hub dispatching commands to target.
func NewHub(target CommandTarget, config HubConfig, logger *zap.Logger, metrics *observability.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		config:  config,
		engine:  target,
		logger:  logger.Named("feed"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed is same-origin agnostic: auth happens upstream.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Attach subscribes the hub to bus events for broadcast.
func (h *Hub) Attach(bus *events.Bus) []*events.Subscription {
	return []*events.Subscription{
		bus.SubscribeFunc(events.TradeExecuted, func(_ context.Context, ev events.Event) error {
			if e, ok := ev.(*events.TradeExecutedEvent); ok && e.Trade != nil {
				h.broadcast(tradeMessage(e.Trade))
			}
			return nil
		}),
		bus.SubscribeFunc(events.TokenGraduated, func(_ context.Context, ev events.Event) error {
			if e, ok := ev.(*events.TokenGraduatedEvent); ok && e.Graduation != nil {
				h.broadcast(graduationMessage(e.Graduation))
			}
			return nil
		}),
	}
}

// ServeHTTP upgrades the request and runs the client until disconnect.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.FeedClientsConnected.Set(float64(count))
	}
	h.logger.Info("feed client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.FeedClientsConnected.Set(float64(count))
	}
	c.conn.Close()
}

// readPump reads inbound commands and answers them on the client's send
// queue. Runs on the connection's goroutine.
func (h *Hub) readPump(c *client) {
	defer h.removeClient(c)

	c.conn.SetReadLimit(h.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("feed read error", zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))

		var cmd Command
		var resp *Response
		if err := json.Unmarshal(data, &cmd); err != nil {
			resp = &Response{Type: MessageTypeResponse, OK: false, Error: "malformed command"}
		} else {
			resp = h.dispatch(&cmd)
		}
		h.sendTo(c, resp)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if h.metrics != nil {
					h.metrics.FeedSendErrors.Inc()
				}
				return
			}
			if h.metrics != nil {
				h.metrics.FeedMessagesSent.Inc()
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// broadcast queues a message on every connected client. Clients whose
// queue is full are dropped rather than allowed to stall the feed.
func (h *Hub) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	var stalled []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.logger.Warn("dropping stalled feed client", zap.String("remote", c.conn.RemoteAddr().String()))
		h.removeClient(c)
	}
}

func (h *Hub) sendTo(c *client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal response", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		if h.metrics != nil {
			h.metrics.FeedSendErrors.Inc()
		}
	}
}

// Close disconnects all clients and stops accepting new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.removeClient(c)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
