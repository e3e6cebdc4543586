package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyBooked means another student holds the tutor's slot on that date.
	ErrAlreadyBooked = errors.New("session already booked")
	// ErrTutorNotFound means the booking names an unknown tutor.
	ErrTutorNotFound = errors.New("tutor not found")
	// ErrPaymentReused means the payment reference already paid for a different session.
	ErrPaymentReused = errors.New("payment reference already used")
	// ErrBookingInProgress means a commit with the same payment reference is running.
	ErrBookingInProgress = errors.New("booking already in progress")
)

// ValidationError reports a malformed booking request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{
		Field:   field,
		Message: msg,
	}
}
