package chatRepo

import (
	"context"
	"errors"

	"guruconnect/models"
)

// ErrChatNotFound is returned when no chat has the requested id.
var ErrChatNotFound = errors.New("chat not found")

// ChatRepository persists chats (one per unordered participant pair) and their messages.
type ChatRepository interface {
	// GetOrCreate returns the chat stored under pairKey, creating it on first use.
	GetOrCreate(ctx context.Context, pairKey string, participants []string) (*models.Chat, error)
	GetByID(ctx context.Context, chatID string) (*models.Chat, error)
	InsertMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns the chat history oldest first.
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
}
