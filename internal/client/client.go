package client

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// knownTopics are the topics a client may subscribe to
var knownTopics = map[string]bool{
	models.TopicStandings: true,
	models.TopicIntake:    true,
}

// Client represents a WebSocket client connection
type Client struct {
	ID          string
	conn        *websocket.Conn
	Send        chan models.ServerMessage // Exported for hub access
	hub         Hub
	connectedAt time.Time

	topics   map[string]bool
	topicsMu sync.RWMutex

	messagesSent     int64
	messagesReceived int64
	mu               sync.Mutex
}

// Hub defines the interface for the broadcast hub
type Hub interface {
	Unregister(client *Client)
}

// NewClient creates a new client subscribed to every topic
func NewClient(id string, conn *websocket.Conn, hub Hub) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		Send:        make(chan models.ServerMessage, sendBufferSize),
		hub:         hub,
		connectedAt: time.Now(),
	}
}

// ReadPump reads subscription changes and heartbeats until the connection closes
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg models.ClientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Debug().Err(err).Str("client_id", c.ID).Msg("unexpected close")
				}
				return
			}

			c.updateReceived()
			c.HandleMessage(msg)
		}
	}
}

// WritePump writes queued messages and keepalive pings
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				log.Debug().Err(err).Str("client_id", c.ID).Msg("write failed")
				return
			}

			c.updateSent()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without blocking.
// Returns false if the buffer is full.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Subscribe replaces the topic set. An empty set receives every topic.
func (c *Client) Subscribe(topics []string) {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}

	c.topicsMu.Lock()
	c.topics = set
	c.topicsMu.Unlock()
}

// Wants reports whether the client receives messages on topic
func (c *Client) Wants(topic string) bool {
	c.topicsMu.RLock()
	defer c.topicsMu.RUnlock()

	if len(c.topics) == 0 {
		return true
	}
	return c.topics[topic]
}

// Topics returns the subscribed topics, sorted; nil means all
func (c *Client) Topics() []string {
	c.topicsMu.RLock()
	defer c.topicsMu.RUnlock()

	if len(c.topics) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Stats returns connection statistics
func (c *Client) Stats() models.ConnectionStats {
	c.mu.Lock()
	sent, received := c.messagesSent, c.messagesReceived
	c.mu.Unlock()

	return models.ConnectionStats{
		ClientID:         c.ID,
		ConnectedAt:      c.connectedAt,
		MessagesSent:     sent,
		MessagesReceived: received,
		Topics:           c.Topics(),
	}
}

// HandleMessage applies one client message
func (c *Client) HandleMessage(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribe:
		for _, t := range msg.Topics {
			if !knownTopics[t] {
				c.sendError("unknown_topic", fmt.Sprintf("unknown topic: %s", t))
				return
			}
		}
		c.Subscribe(msg.Topics)
		log.Debug().Str("client_id", c.ID).Strs("topics", msg.Topics).Msg("client subscribed")
	case models.MessageTypeUnsubscribe:
		c.Subscribe(nil)
	case models.MessageTypeHeartbeat:
		c.TrySend(models.ServerMessage{
			Type:      models.MessageTypeHeartbeat,
			Payload:   c.Stats(),
			Timestamp: time.Now(),
		})
	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (c *Client) sendError(code, message string) {
	c.TrySend(models.ServerMessage{
		Type: models.MessageTypeError,
		Payload: models.ErrorMessage{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}

func (c *Client) updateSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesSent++
}

func (c *Client) updateReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesReceived++
}
