package booking

import (
	"context"

	"guruconnect/models"
)

// BookingService commits paid sessions. The store is the arbiter of slot conflicts.
type BookingService interface {
	// CreateSession commits one session for studentID and returns its id.
	CreateSession(ctx context.Context, studentID string, req models.BookingRequest) (string, error)
	// ListSessions returns sessions where the participant is either side.
	ListSessions(ctx context.Context, participantID string) ([]models.Session, error)
	Pricer
}

// Pricer reports what one session with a tutor costs.
type Pricer interface {
	PriceFor(ctx context.Context, tutorID string) (float64, error)
}
