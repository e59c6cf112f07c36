package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"knowhere/internal/middleware"
	"knowhere/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per signed-in user.
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	// ErrServerFull is returned when the hub holds maxTotalConns clients.
	ErrServerFull = errors.New("server connection limit reached")
	// ErrUserLimit is returned when one user holds maxConnsPerUser clients.
	ErrUserLimit = errors.New("user connection limit reached")
)

// Envelope is what a websocket client receives. Channel is "engagement" for
// the public stream and "personal" for events on the reader's own articles.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   json.RawMessage `json:"event"`
}

// Hub maps connected clients by user id; anonymous readers share the "" key.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "engagement" }

// Register adds a connection for userID, or returns an error if limits are exceeded.
func (h *Hub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if userID != "" && len(m) >= maxConnsPerUser {
		return nil, ErrUserLimit
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// Unregister removes client and closes its send channel. Unknown clients are ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	h.totalConns--
	observability.WebSocketConnections.Dec()
	close(client.Send)
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// SendToUser sends message to every connection of userID.
func (h *Hub) SendToUser(userID string, message []byte) {
	if userID == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		c.TrySend(message)
	}
}

// StartWiring subscribes n to the engagement channels and forwards every
// event to the matching clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(channel, payload string) {
		h.Dispatch(ctx, channel, payload)
	})
}

// Dispatch delivers one raw event published on channel to the matching clients.
func (h *Hub) Dispatch(ctx context.Context, channel, payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		middleware.Logger.Warn("dropping malformed engagement event",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
		return
	}

	_, span := observability.GetTraceLayer().TraceWebSocket(ctx, h.Name(), ev.Type)
	defer span.End()

	if channel == EngagementChannel {
		h.BroadcastAll(envelope("engagement", payload))
		return
	}
	if userID, ok := userFromChannel(channel); ok {
		h.SendToUser(userID, envelope("personal", payload))
		return
	}
	middleware.Logger.Warn("invalid engagement channel", slog.String("channel", channel))
}

func envelope(channel, payload string) []byte {
	// payload was validated by Dispatch, so Marshal cannot fail on it.
	body, _ := json.Marshal(Envelope{Channel: channel, Event: json.RawMessage(payload)})
	return body
}

// Shutdown closes every client's send channel; each write pump then sends a
// close frame and exits.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.conns {
		for c := range clients {
			close(c.Send)
			observability.WebSocketConnections.Dec()
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
