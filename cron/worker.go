package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guruconnect/config"
	"guruconnect/models"
	"guruconnect/services/chat"
	"guruconnect/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Publisher broadcasts a persisted chat message to connected participants.
type Publisher interface {
	Publish(ctx context.Context, msg models.Message) error
}

// ReminderHandler posts the one-hour session reminder into the student/tutor chat.
type ReminderHandler struct {
	Chats     chat.ChatService
	Publisher Publisher
	Logger    *zap.Logger
}

// ReminderText is the body of the system chat message for a session.
func ReminderText(p models.ReminderPayload) string {
	return fmt.Sprintf("Reminder: your session on %s at %s starts in one hour.", p.Date, p.TimeLabel)
}

func (h *ReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		logger.Error("invalid reminder payload", zap.Error(err))
		// Malformed payloads never succeed on retry.
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	room, err := h.Chats.GetOrCreate(ctx, p.StudentID, p.TutorID)
	if err != nil {
		logger.Error("reminder chat lookup failed", zap.String("sessionId", p.SessionID), zap.Error(err))
		return err
	}

	msg, err := h.Chats.PostSystemMessage(ctx, room.ID, ReminderText(p))
	if err != nil {
		logger.Error("reminder post failed", zap.String("sessionId", p.SessionID), zap.Error(err))
		return err
	}

	if h.Publisher != nil {
		if err := h.Publisher.Publish(ctx, *msg); err != nil {
			// Persisted already; participants will see it in history.
			logger.Warn("reminder broadcast failed", zap.String("chatId", room.ID), zap.Error(err))
		}
	}
	logger.Info("session reminder sent", zap.String("sessionId", p.SessionID), zap.String("chatId", room.ID))
	return nil
}

// QueueRedisOpt is the asynq connection for the reminder queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReminderWorker runs the async worker in background until ctx is done.
func InitReminderWorker(ctx context.Context, handler *ReminderHandler, logger *zap.Logger) {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeSessionReminder, handler)

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Start(mux); err != nil {
				logger.Error("reminder worker failed to start",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
				if attempts == maxAttempts {
					logger.Error("reminder worker gave up; reminders are disabled")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
				continue
			}
			break
		}

		<-ctx.Done()
		srv.Shutdown()
	}()
}

// monitorRedisConnection pings the queue Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	opt := QueueRedisOpt()
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("reminder queue redis unreachable", zap.Error(err))
			}
		}
	}
}
