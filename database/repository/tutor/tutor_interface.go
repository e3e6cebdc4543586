package tutorRepo

import (
	"context"
	"errors"

	"guruconnect/models"
)

// ErrTutorNotFound is returned when no tutor has the requested id.
var ErrTutorNotFound = errors.New("tutor not found")

// TutorRepository defines read access to tutor profiles and write access to their weekly availability.
type TutorRepository interface {
	// GetByID retrieves a tutor by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Tutor, error)
	// Create inserts a new tutor profile.
	Create(ctx context.Context, tutor *models.Tutor) error
	// SetAvailability replaces the weekly availability of a tutor.
	SetAvailability(ctx context.Context, id string, availability []models.AvailabilityEntry) error
}
