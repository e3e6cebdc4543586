package chatRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guruconnect/database"
	"guruconnect/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoChatRepo implements ChatRepository using MongoDB.
type MongoChatRepo struct {
	chatColl    *mongo.Collection
	messageColl *mongo.Collection
}

// NewMongoChatRepo constructs a new instance of MongoChatRepo.
func NewMongoChatRepo(logger *zap.Logger) ChatRepository {
	db := database.DB()
	repo := &MongoChatRepo{
		chatColl:    db.Collection("chats"),
		messageColl: db.Collection("messages"),
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Error("failed to create chat indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoChatRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.chatColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "pair_key", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return err
	}
	_, err := r.messageColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "id", Value: 1}},
	})
	return err
}

// GetOrCreate upserts on pair_key so concurrent first opens converge on one chat.
func (r *MongoChatRepo) GetOrCreate(ctx context.Context, pairKey string, participants []string) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"pair_key": pairKey}
	update := bson.M{"$setOnInsert": bson.M{
		"id":           uuid.New().String(),
		"pair_key":     pairKey,
		"participants": participants,
		"created_at":   time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var chat models.Chat
	err := r.chatColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&chat)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// Lost the upsert race; the winner's document is now readable.
		err = r.chatColl.FindOne(ctx, filter).Decode(&chat)
	}
	if err != nil {
		return nil, fmt.Errorf("get-or-create chat failed: %w", err)
	}
	return &chat, nil
}

func (r *MongoChatRepo) GetByID(ctx context.Context, chatID string) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var chat models.Chat
	if err := r.chatColl.FindOne(ctx, bson.M{"id": chatID}).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("error fetching chat %s: %w", chatID, err)
	}
	return &chat, nil
}

func (r *MongoChatRepo) InsertMessage(ctx context.Context, msg *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.messageColl.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert message failed: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.messageColl.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer cursor.Close(ctx)

	msgs := make([]models.Message, 0)
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("error decoding messages: %w", err)
	}
	return msgs, nil
}
