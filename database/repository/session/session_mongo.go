package sessionRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guruconnect/database"
	"guruconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	slotIndexName    = "uniq_tutor_date_time"
	paymentIndexName = "uniq_payment_reference"
)

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo constructs a new instance of MongoSessionRepo.
func NewMongoSessionRepo(logger *zap.Logger) SessionRepository {
	repo := &MongoSessionRepo{coll: database.DB().Collection("sessions")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Error("failed to create session indexes", zap.Error(err))
	}
	return repo
}

// ensureIndexes makes the store the arbiter of double bookings.
func (r *MongoSessionRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "tutor_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time_label", Value: 1}},
			Options: options.Index().
				SetName(slotIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.SessionStatusBooked}),
		},
		{
			Keys:    bson.D{{Key: "payment_reference", Value: 1}},
			Options: options.Index().SetName(paymentIndexName).SetUnique(true),
		},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "date", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

// Create inserts a session and translates unique index violations.
func (r *MongoSessionRepo) Create(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), paymentIndexName) {
				return ErrDuplicatePayment
			}
			return ErrSlotTaken
		}
		return fmt.Errorf("insert session failed: %w", err)
	}
	return nil
}

func (r *MongoSessionRepo) GetByPaymentReference(ctx context.Context, ref string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Session
	if err := r.coll.FindOne(ctx, bson.M{"payment_reference": ref}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("error fetching session by payment reference: %w", err)
	}
	return &s, nil
}

// ListByParticipant returns sessions where the participant is student or tutor, soonest first.
func (r *MongoSessionRepo) ListByParticipant(ctx context.Context, participantID string) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"student_id": participantID},
		bson.M{"tutor_id": participantID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := make([]models.Session, 0)
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("error decoding sessions: %w", err)
	}
	return sessions, nil
}
