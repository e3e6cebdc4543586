package models

import "time"

// AvailabilityEntry is one recurring slot in a tutor's weekly schedule.
// Time is a display label ("10:00", "5 PM - 6 PM") and is never parsed.
type AvailabilityEntry struct {
	Day  string `bson:"day" json:"day"`   // canonical weekday name, e.g. "Monday"
	Time string `bson:"time" json:"time"` // opaque time label
}

// Tutor is the read-only view of a guru profile used by the booking core.
type Tutor struct {
	ID           string              `bson:"id" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Subject      string              `bson:"subject,omitempty" json:"subject,omitempty"`
	Price        float64             `bson:"price" json:"price"`
	Availability []AvailabilityEntry `bson:"availability" json:"availability"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// ResolvedSlot is a recurring slot pinned to its next concrete calendar date.
type ResolvedSlot struct {
	Weekday   string    `json:"weekday"`
	TimeLabel string    `json:"timeLabel"`
	Date      time.Time `json:"date"`
}

// IsComplete reports whether both the day and the time have been chosen.
func (s ResolvedSlot) IsComplete() bool {
	return s.Weekday != "" && s.TimeLabel != "" && !s.Date.IsZero()
}

// DateString renders the concrete date in wire format.
func (s ResolvedSlot) DateString() string {
	if s.Date.IsZero() {
		return ""
	}
	return s.Date.Format("2006-01-02")
}
