package ws

import (
	"encoding/json"
	"sync"
	"time"

	"streaksage/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var connectedClients = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "streaksage_ws_clients",
		Help: "Currently connected live update clients",
	},
)

func init() {
	prometheus.MustRegister(connectedClients)
}

// Hub fans events out to every connected client. A client whose send
// buffer is full is dropped instead of blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	seq     int64
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		now:     time.Now,
	}
}

// Register adds c and queues its ready greeting.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	c.ID = h.seq
	h.clients[c] = struct{}{}
	connectedClients.Inc()
	logger.Debug("ws client registered", "client", c.ID, "clients", len(h.clients))

	if msg, err := h.encode(MsgReady, map[string]int64{"client": c.ID}); err == nil {
		c.Send <- msg
	}
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	connectedClients.Dec()
}

// sendTo queues msg for c unless c is gone or its buffer is full.
func (h *Hub) sendTo(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) encode(eventType string, data any) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Data: data, At: h.now().UTC()})
}

// Publish broadcasts an event to all clients without blocking.
func (h *Hub) Publish(eventType string, data any) {
	msg, err := h.encode(eventType, data)
	if err != nil {
		logger.Error("ws encode event", "type", eventType, "err", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		logger.Warn("ws dropping slow client", "client", c.ID)
		h.remove(c)
	}
	h.mu.Unlock()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.remove(c)
	}
}
