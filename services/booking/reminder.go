package booking

import (
	"context"
	"fmt"
	"time"

	"guruconnect/models"
	"guruconnect/services/tasks"

	"github.com/hibiken/asynq"
)

// ReminderScheduler enqueues a reminder for a committed session.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, session models.Session, fireAt time.Time) error
}

// AsynqReminderScheduler enqueues reminders on the asynq Redis queue.
type AsynqReminderScheduler struct {
	client *asynq.Client
}

func NewAsynqReminderScheduler(client *asynq.Client) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{client: client}
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, session models.Session, fireAt time.Time) error {
	task, opts, err := tasks.NewReminderTask(models.ReminderPayload{
		SessionID: session.ID,
		TutorID:   session.TutorID,
		StudentID: session.StudentID,
		Date:      session.Date,
		TimeLabel: session.TimeLabel,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}
	// One reminder per session even if the commit is replayed.
	opts = append(opts, asynq.TaskID("reminder:"+session.ID))
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}
