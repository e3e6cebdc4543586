package sessionRepo

import (
	"context"
	"errors"

	"guruconnect/models"
)

var (
	// ErrSlotTaken is returned when the tutor already has a live session at that date and time.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrDuplicatePayment is returned when the payment reference was already used.
	ErrDuplicatePayment = errors.New("payment reference already used")
	// ErrSessionNotFound is returned when no session matches.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepository persists committed sessions. Uniqueness of (tutor, date, time)
// and of the payment reference is enforced by the store, not by callers.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByPaymentReference(ctx context.Context, ref string) (*models.Session, error)
	ListByParticipant(ctx context.Context, participantID string) ([]models.Session, error)
}
