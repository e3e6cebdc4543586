package models

import "encoding/json"

// Socket event names shared by the hub and the client transport.
const (
	EventJoinRoom       = "joinRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventError          = "error"
)

// Envelope is one websocket frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoomPayload subscribes the connection to a chat room.
type JoinRoomPayload struct {
	ChatID string `json:"chatId"`
}

// SendMessagePayload is an outbound chat message. ClientID is echoed back
// in the matching receiveMessage.
type SendMessagePayload struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
	ClientID string `json:"clientId,omitempty"`
}

// SocketError reports a rejected frame back to the sender.
type SocketError struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// NewEnvelope marshals data under the given event name.
func NewEnvelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}
