package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"guruconnect/models"

	"github.com/hibiken/asynq"
)

const TypeSessionReminder = "session:reminder"

// ReminderLead is how long before the session the reminder fires.
const ReminderLead = time.Hour

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSessionReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}

	return task, opts, nil
}

// Accepted leading clock formats of a time label.
var clockLayouts = []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// SessionStart best-effort parses the start of a time label ("10:00",
// "5 PM - 6 PM") on date. Labels are display strings, so failure is normal
// and only means no reminder can be scheduled.
func SessionStart(date, label string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, err
	}
	head := strings.TrimSpace(strings.SplitN(label, "-", 2)[0])
	head = strings.ToUpper(head)
	for _, layout := range clockLayouts {
		if clock, err := time.Parse(layout, head); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time label %q", label)
}
