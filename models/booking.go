package models

import "time"

// SessionDurationMinutes is the fixed length of a booked session.
const SessionDurationMinutes = 60

const (
	SessionStatusBooked    = "booked"
	SessionStatusCancelled = "cancelled"
)

// BookingRequest is the body of "create session order".
type BookingRequest struct {
	TutorID          string  `json:"tutorId" binding:"required"`
	StudentID        string  `json:"studentId"`
	Weekday          string  `json:"weekday" binding:"required"`
	TimeLabel        string  `json:"timeLabel" binding:"required"`
	Date             string  `json:"date" binding:"required"` // "2006-01-02"
	DurationMinutes  int     `json:"durationMinutes"`
	Price            float64 `json:"price"`
	PaymentReference string  `json:"paymentReference" binding:"required"`
}

// Session is a committed booking between a student and a tutor.
type Session struct {
	ID               string    `bson:"id" json:"id"`
	TutorID          string    `bson:"tutor_id" json:"tutorId"`
	StudentID        string    `bson:"student_id" json:"studentId"`
	Weekday          string    `bson:"weekday" json:"weekday"`
	TimeLabel        string    `bson:"time_label" json:"timeLabel"`
	Date             string    `bson:"date" json:"date"`
	DurationMinutes  int       `bson:"duration_minutes" json:"durationMinutes"`
	Price            float64   `bson:"price" json:"price"`
	PaymentReference string    `bson:"payment_reference" json:"paymentReference"`
	Status           string    `bson:"status" json:"status"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
}

// CreateSessionResponse is returned on a successful commit.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// ReminderPayload is the asynq payload of a session reminder.
type ReminderPayload struct {
	SessionID string `json:"sessionId"`
	TutorID   string `json:"tutorId"`
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
	TimeLabel string `json:"timeLabel"`
}
