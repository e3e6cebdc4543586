package client

import (
	"context"
	"errors"
	"sync"

	"guruconnect/models"

	"go.uber.org/zap"
)

// BookingStatus is how one booking attempt ended.
type BookingStatus int

const (
	BookingCreated BookingStatus = iota + 1
	BookingConflict
	BookingFailed
	BookingCancelled
)

// User-facing messages.
const (
	MsgBooked             = "Session booked successfully!"
	MsgAlreadyBooked      = "Session already booked!"
	MsgBookingFailed      = "Booking failed. Please try again."
	MsgIncompleteSelected = "Please select a day and a time."
	MsgOrderFailed        = "Could not start the payment. Please try again."
	MsgPaymentFailed      = "Payment failed. Please try again."
	MsgBookingInProgress  = "A booking is already in progress."
)

// BookingResult tells the UI what to show. CloseForm is true only when the
// session was created; every other outcome leaves the slot picker usable.
type BookingResult struct {
	Status    BookingStatus
	SessionID string
	Message   string
	CloseForm bool
	Err       error
}

// BookingOrchestrator turns a paid slot selection into exactly one booking submission.
type BookingOrchestrator struct {
	identity Identity
	api      API
	payments *PaymentOrchestrator
	logger   *zap.Logger

	mu   sync.Mutex
	busy bool
}

func NewBookingOrchestrator(identity Identity, api API, payments *PaymentOrchestrator, logger *zap.Logger) *BookingOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingOrchestrator{identity: identity, api: api, payments: payments, logger: logger}
}

// SubmitBooking sends one booking request. The backend decides conflicts;
// failures are never retried here since a blind retry after payment could double book.
func (b *BookingOrchestrator) SubmitBooking(ctx context.Context, tutorID string, slot models.ResolvedSlot, price float64, paymentRef string) BookingResult {
	req := models.BookingRequest{
		TutorID:          tutorID,
		StudentID:        b.identity.UserID,
		Weekday:          slot.Weekday,
		TimeLabel:        slot.TimeLabel,
		Date:             slot.DateString(),
		DurationMinutes:  models.SessionDurationMinutes,
		Price:            price,
		PaymentReference: paymentRef,
	}
	log := b.logger.With(zap.String("tutorId", tutorID), zap.String("date", req.Date), zap.String("time", req.TimeLabel))

	sessionID, err := b.api.CreateSession(ctx, req)
	switch {
	case err == nil:
		log.Info("session booked", zap.String("sessionId", sessionID))
		return BookingResult{Status: BookingCreated, SessionID: sessionID, Message: MsgBooked, CloseForm: true}
	case IsAlreadyBooked(err):
		log.Info("slot already booked")
		return BookingResult{Status: BookingConflict, Message: MsgAlreadyBooked,
			Err: newError(KindAlreadyBooked, "slot already booked", err)}
	default:
		log.Warn("booking submission failed", zap.Error(err))
		return BookingResult{Status: BookingFailed, Message: MsgBookingFailed,
			Err: newError(KindNetwork, "booking submission failed", err)}
	}
}

// Busy reports whether a Book call is between payment and its submission result.
func (b *BookingOrchestrator) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

func (b *BookingOrchestrator) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return false
	}
	b.busy = true
	return true
}

func (b *BookingOrchestrator) release() {
	b.mu.Lock()
	b.busy = false
	b.mu.Unlock()
}

// Book checks the selection, takes payment and submits the booking once the
// payment succeeds. An incomplete selection fails before any network call.
// Only one Book runs at a time, submission included.
func (b *BookingOrchestrator) Book(ctx context.Context, tutorID string, slot models.ResolvedSlot, price float64, payer models.PayerInfo) BookingResult {
	if !slot.IsComplete() {
		return BookingResult{Status: BookingFailed, Message: MsgIncompleteSelected,
			Err: newError(KindIncompleteSelection, "day and time are required", nil)}
	}
	if !b.acquire() {
		return BookingResult{Status: BookingFailed, Message: MsgBookingInProgress,
			Err: newError(KindBusy, "a booking is already in progress", nil)}
	}
	defer b.release()

	out, err := b.payments.Pay(ctx, tutorID, price, payer)
	if err != nil {
		msg := MsgBookingFailed
		if errors.Is(err, ErrOrderCreationFailed) {
			msg = MsgOrderFailed
		}
		return BookingResult{Status: BookingFailed, Message: msg, Err: err}
	}

	switch out.Status {
	case PaymentSucceeded:
		return b.SubmitBooking(ctx, tutorID, slot, price, out.Reference)
	case PaymentCancelled:
		// Silent: the user dismissed the payment sheet.
		return BookingResult{Status: BookingCancelled, Err: newError(KindPaymentCancelled, "payment dismissed", nil)}
	default:
		return BookingResult{Status: BookingFailed, Message: MsgPaymentFailed,
			Err: newError(KindPaymentFailed, out.Reason, nil)}
	}
}
