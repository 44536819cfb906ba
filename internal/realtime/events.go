package realtime

import "encoding/json"

type EventType string

const (
	EventRequestStatusChanged EventType = "request:statusChanged"
	EventRequestAssigned      EventType = "request:assigned"
	EventChatMessage          EventType = "chat:message"
	EventChatRead             EventType = "chat:read"

	// EventReconnected is synthesized locally after a successful
	// reconnect so subscribers can re-fetch what they missed.
	EventReconnected EventType = "channel:reconnected"
)

// Event is the wire shape pushed by the backend. Payload stays raw;
// each subscriber decodes the shape it knows.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StatusChangedPayload accompanies request:statusChanged.
type StatusChangedPayload struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// AssignedPayload accompanies request:assigned.
type AssignedPayload struct {
	RequestID    string `json:"request_id"`
	MechanicID   string `json:"mechanic_id"`
	MechanicName string `json:"mechanic_name"`
}

// ChatReadPayload accompanies chat:read.
type ChatReadPayload struct {
	ChatID     string   `json:"chat_id"`
	UserID     string   `json:"user_id"`
	MessageIDs []string `json:"message_ids"`
}
