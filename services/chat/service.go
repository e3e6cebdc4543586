package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	chatRepo "guruconnect/database/repository/chat"
	"guruconnect/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ChatService resolves chats per participant pair and persists their messages.
type ChatService interface {
	GetOrCreate(ctx context.Context, a, b string) (*models.Chat, error)
	// Authorize returns the chat when caller is one of its participants.
	Authorize(ctx context.Context, chatID, caller string) (*models.Chat, error)
	History(ctx context.Context, chatID, caller string) ([]models.Message, error)
	PostMessage(ctx context.Context, chatID, senderID, content, clientID string) (*models.Message, error)
	// PostSystemMessage persists a server-authored notice into an existing chat.
	PostSystemMessage(ctx context.Context, chatID, content string) (*models.Message, error)
}

// SystemSenderID marks messages written by the server rather than a participant.
const SystemSenderID = "system"

// PairKey is the order-independent key of a participant pair.
func PairKey(a, b string) string {
	ids := sortedPair(a, b)
	return ids[0] + ":" + ids[1]
}

func sortedPair(a, b string) []string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids
}

// DefaultChatService implements ChatService.
type DefaultChatService struct {
	repo   chatRepo.ChatRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewChatService(repo chatRepo.ChatRepository, logger *zap.Logger) *DefaultChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultChatService{repo: repo, logger: logger, now: time.Now}
}

func (s *DefaultChatService) GetOrCreate(ctx context.Context, a, b string) (*models.Chat, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" || a == b {
		return nil, ErrSelfChat
	}
	key := PairKey(a, b)
	chat, err := s.repo.GetOrCreate(ctx, key, sortedPair(a, b))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("chat resolved", zap.String("chatId", chat.ID), zap.String("pair", key))
	return chat, nil
}

func (s *DefaultChatService) Authorize(ctx context.Context, chatID, caller string) (*models.Chat, error) {
	chat, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chatRepo.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if !chat.HasParticipant(caller) {
		return nil, ErrNotParticipant
	}
	return chat, nil
}

// History returns every message of the chat in server order.
func (s *DefaultChatService) History(ctx context.Context, chatID, caller string) ([]models.Message, error) {
	if _, err := s.Authorize(ctx, chatID, caller); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, chatID)
}

// PostMessage persists a message with a server id and timestamp. The
// client's correlation id is stored as-is so the sender can reconcile.
func (s *DefaultChatService) PostMessage(ctx context.Context, chatID, senderID, content, clientID string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.Authorize(ctx, chatID, senderID); err != nil {
		return nil, err
	}
	return s.persist(ctx, chatID, senderID, content, clientID)
}

func (s *DefaultChatService) PostSystemMessage(ctx context.Context, chatID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.repo.GetByID(ctx, chatID); err != nil {
		if errors.Is(err, chatRepo.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return s.persist(ctx, chatID, SystemSenderID, content, "")
}

func (s *DefaultChatService) persist(ctx context.Context, chatID, senderID, content, clientID string) (*models.Message, error) {
	msg := &models.Message{
		// ObjectID hex sorts by creation, which keeps equal timestamps in insert order.
		ID:        primitive.NewObjectID().Hex(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		ClientID:  clientID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	return msg, nil
}
