package chatRepo

import (
	"context"
	"sync"

	"guruconnect/models"

	"github.com/google/uuid"
)

// MemoryChatRepo keeps chats in process memory. Used by tests and local runs without MongoDB.
type MemoryChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*models.Chat // by pair key
	messages map[string][]models.Message
}

func NewMemoryChatRepo() *MemoryChatRepo {
	return &MemoryChatRepo{chats: map[string]*models.Chat{}, messages: map[string][]models.Message{}}
}

func (m *MemoryChatRepo) GetOrCreate(ctx context.Context, pairKey string, participants []string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.chats[pairKey]; ok {
		return c, nil
	}
	c := &models.Chat{ID: uuid.New().String(), PairKey: pairKey, Participants: participants}
	m.chats[pairKey] = c
	return c, nil
}

func (m *MemoryChatRepo) GetByID(ctx context.Context, chatID string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.chats {
		if c.ID == chatID {
			return c, nil
		}
	}
	return nil, ErrChatNotFound
}

func (m *MemoryChatRepo) InsertMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], *msg)
	return nil
}

func (m *MemoryChatRepo) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.messages[chatID]...), nil
}
