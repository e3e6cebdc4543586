package models

import "time"

// Chat is the server-side conversation between exactly two participants.
type Chat struct {
	ID           string    `bson:"id" json:"chatId"`
	PairKey      string    `bson:"pair_key" json:"-"`
	Participants []string  `bson:"participants" json:"participants"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// HasParticipant reports whether id is one of the two chat members.
func (c Chat) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Message is a server-confirmed chat message. ClientID is the correlation id
// generated by the sender and echoed back unchanged.
type Message struct {
	ID        string    `bson:"id" json:"_id"`
	ChatID    string    `bson:"chat_id" json:"chatId"`
	SenderID  string    `bson:"sender_id" json:"senderId"`
	Content   string    `bson:"content" json:"message"`
	ClientID  string    `bson:"client_id,omitempty" json:"clientId,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// GetOrCreateChatRequest names the remote participant; the local one comes from the token.
type GetOrCreateChatRequest struct {
	ParticipantID string `json:"participantId" binding:"required"`
}

// GetOrCreateChatResponse carries the resolved chat id.
type GetOrCreateChatResponse struct {
	ChatID string `json:"chatId"`
}
