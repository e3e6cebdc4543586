package database

import (
	"context"
	"fmt"
	"time"

	"guruconnect/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	connectAttempts = 3
	connectTimeout  = 10 * time.Second
)

// MongoClient is the process-wide client; repositories read it through DB().
var MongoClient *mongo.Client

// Connect dials uri and pings the primary, retrying a few times while the
// database container is still coming up.
func Connect(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("guruconnect").
		SetServerSelectionTimeout(connectTimeout)

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		client, err := mongo.Connect(attemptCtx, opts)
		if err == nil {
			err = client.Ping(attemptCtx, nil)
			if err != nil {
				_ = client.Disconnect(context.Background())
			}
		}
		cancel()
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warn("mongo not reachable yet", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, fmt.Errorf("connect to mongo after %d attempts: %w", connectAttempts, lastErr)
}

// InitDB connects using the configured DATABASE_URL and stores the client globally.
func InitDB(ctx context.Context, logger *zap.Logger) error {
	client, err := Connect(ctx, config.AppConfig.DatabaseURL, logger)
	if err != nil {
		return err
	}
	MongoClient = client
	logger.Info("connected to MongoDB", zap.String("database", databaseName()))
	return nil
}

// DB returns the application database handle.
func DB() *mongo.Database {
	return MongoClient.Database(databaseName())
}

func databaseName() string {
	if name := config.AppConfig.DatabaseName; name != "" {
		return name
	}
	return "guruconnect"
}
