package tutorRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guruconnect/database"
	"guruconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoTutorRepo implements TutorRepository using MongoDB.
type MongoTutorRepo struct {
	coll *mongo.Collection
}

// NewMongoTutorRepo creates a new instance of TutorRepository using MongoDB.
func NewMongoTutorRepo(logger *zap.Logger) TutorRepository {
	repo := &MongoTutorRepo{coll: database.DB().Collection("tutors")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Error("failed to create tutor indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoTutorRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetByID retrieves a tutor document by ID.
func (r *MongoTutorRepo) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tutor models.Tutor
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&tutor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("error fetching tutor with id %s: %w", id, err)
	}
	return &tutor, nil
}

// Create inserts a new tutor document.
func (r *MongoTutorRepo) Create(ctx context.Context, tutor *models.Tutor) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tutor.UpdatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, tutor); err != nil {
		return fmt.Errorf("failed to create tutor: %w", err)
	}
	return nil
}

// SetAvailability replaces the availability array of a tutor.
func (r *MongoTutorRepo) SetAvailability(ctx context.Context, id string, availability []models.AvailabilityEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"availability": availability, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update availability for tutor %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrTutorNotFound
	}
	return nil
}
