package hub

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/client"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/metrics"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

// Hub maintains the set of active clients and fans out topic messages to them.
// It only notifies; it does not coordinate writers across tabs or processes.
type Hub struct {
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	broadcast  chan models.ServerMessage
	register   chan *client.Client
	unregister chan *client.Client
	done       chan struct{}

	totalConnections int64
	totalMessages    int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.ServerMessage, 256),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("hub started")
	defer close(h.done)

	go h.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues payload for every client subscribed to topic.
// Messages are dropped when the broadcast buffer is full.
func (h *Hub) Publish(topic, msgType string, payload interface{}) {
	msg := models.ServerMessage{
		Type:      msgType,
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- msg:
	default:
		log.Warn().Str("topic", topic).Msg("broadcast buffer full, dropping message")
	}
}

// PublishView announces a refreshed standings view
func (h *Hub) PublishView(view models.NormalizedView) {
	h.Publish(models.TopicStandings, models.MessageTypeViewUpdate, view)
}

// PublishLedger announces a ledger change
func (h *Hub) PublishLedger(snapshot models.LedgerSnapshot) {
	h.Publish(models.TopicIntake, models.MessageTypeLedgerUpdate, snapshot)
}

func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.incrementTotalConnections()
	metrics.ActiveClients.Set(float64(len(h.clients)))

	log.Debug().Str("client_id", c.ID).Int("total", len(h.clients)).Msg("client connected")
}

func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		metrics.ActiveClients.Set(float64(len(h.clients)))
		log.Debug().Str("client_id", c.ID).Int("total", len(h.clients)).Msg("client disconnected")
	}
}

// deliver sends msg to every interested client; clients with a full buffer are dropped
func (h *Hub) deliver(msg models.ServerMessage) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	sent := 0
	for _, c := range clients {
		if !c.Wants(msg.Topic) {
			continue
		}

		if c.TrySend(msg) {
			sent++
			continue
		}

		log.Warn().Str("client_id", c.ID).Msg("client buffer full, disconnecting")
		go h.Unregister(c)
	}

	if sent > 0 {
		h.incrementTotalMessages()
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.metricsMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     h.GetClientCount(),
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	log.Info().Int("clients", len(h.clients)).Msg("shutting down hub")

	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	metrics.ActiveClients.Set(0)
}

func (h *Hub) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := h.GetMetrics()
			log.Debug().
				Interface("active_clients", m["active_clients"]).
				Interface("total_connections", m["total_connections"]).
				Interface("total_messages", m["total_messages"]).
				Msg("hub metrics")
		}
	}
}

func (h *Hub) incrementTotalConnections() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalConnections++
}

func (h *Hub) incrementTotalMessages() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalMessages++
}
