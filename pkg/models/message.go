package models

import "time"

// Message types for WebSocket communication
const (
	MessageTypeViewUpdate   = "view_update"
	MessageTypeLedgerUpdate = "ledger_update"
	MessageTypeSubscribe    = "subscribe"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeHeartbeat    = "heartbeat"
	MessageTypeError        = "error"
)

// Topics a client can subscribe to
const (
	TopicStandings = "standings"
	TopicIntake    = "intake"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	ClientID         string    `json:"client_id"`
	ConnectedAt      time.Time `json:"connected_at"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesReceived int64     `json:"messages_received"`
	Topics           []string  `json:"topics"`
}

// ErrorMessage is sent to a websocket client on a bad request
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
