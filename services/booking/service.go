package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sessionRepo "guruconnect/database/repository/session"
	tutorRepo "guruconnect/database/repository/tutor"
	"guruconnect/models"
	"guruconnect/services/availability"
	"guruconnect/services/payment"
	"guruconnect/services/tasks"
	"guruconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Tutors    tutorRepo.TutorRepository
	Sessions  sessionRepo.SessionRepository
	Payments  payment.PaymentService
	Locker    Locker
	Reminders ReminderScheduler // optional
	Resolver  *availability.Resolver
	Logger    *zap.Logger

	// DefaultPrice applies to tutors without a price of their own.
	DefaultPrice float64
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultBookingService) resolver() *availability.Resolver {
	if s.Resolver == nil {
		return availability.NewResolver(nil)
	}
	return s.Resolver
}

func (s *DefaultBookingService) priceOf(tutor *models.Tutor) float64 {
	if tutor.Price > 0 {
		return tutor.Price
	}
	return s.DefaultPrice
}

// PriceFor returns the session price of tutorID, or ErrTutorNotFound.
func (s *DefaultBookingService) PriceFor(ctx context.Context, tutorID string) (float64, error) {
	tutor, err := s.loadTutor(ctx, tutorID)
	if err != nil {
		return 0, err
	}
	price := s.priceOf(tutor)
	if price <= 0 {
		return 0, fmt.Errorf("tutor %s has no session price", tutorID)
	}
	return price, nil
}

func (s *DefaultBookingService) loadTutor(ctx context.Context, tutorID string) (*models.Tutor, error) {
	tutor, err := s.Tutors.GetByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, tutorRepo.ErrTutorNotFound) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("load tutor: %w", err)
	}
	return tutor, nil
}

// validate checks everything that can be checked without touching the store.
func (s *DefaultBookingService) validate(req *models.BookingRequest) (time.Time, error) {
	req.TutorID = strings.TrimSpace(req.TutorID)
	req.PaymentReference = strings.TrimSpace(req.PaymentReference)
	if req.TutorID == "" {
		return time.Time{}, NewValidationError("tutorId", "is required")
	}
	if req.TimeLabel == "" {
		return time.Time{}, NewValidationError("timeLabel", "is required")
	}
	if req.PaymentReference == "" {
		return time.Time{}, NewValidationError("paymentReference", "is required")
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = models.SessionDurationMinutes
	}
	if req.DurationMinutes != models.SessionDurationMinutes {
		return time.Time{}, NewValidationError("durationMinutes", fmt.Sprintf("must be %d", models.SessionDurationMinutes))
	}
	if req.Price <= 0 {
		return time.Time{}, NewValidationError("price", "must be positive")
	}

	weekday, err := availability.ParseWeekday(req.Weekday)
	if err != nil {
		return time.Time{}, NewValidationError("weekday", err.Error())
	}
	today := s.resolver().Today()
	date, err := time.ParseInLocation(utils.DateLayout, req.Date, today.Location())
	if err != nil {
		return time.Time{}, NewValidationError("date", "must be formatted as YYYY-MM-DD")
	}
	if date.Weekday() != weekday {
		return time.Time{}, NewValidationError("date", fmt.Sprintf("%s is not a %s", req.Date, req.Weekday))
	}
	if date.Before(today) {
		return time.Time{}, NewValidationError("date", "is in the past")
	}
	return date, nil
}

// CreateSession commits one session per payment reference. Replaying the
// same reference for the same slot returns the original session id.
func (s *DefaultBookingService) CreateSession(ctx context.Context, studentID string, req models.BookingRequest) (string, error) {
	log := s.logger().With(zap.String("studentId", studentID), zap.String("tutorId", req.TutorID))

	if studentID == "" {
		return "", NewValidationError("studentId", "is required")
	}
	if req.StudentID != "" && req.StudentID != studentID {
		return "", NewValidationError("studentId", "does not match the authenticated caller")
	}
	if _, err := s.validate(&req); err != nil {
		return "", err
	}

	tutor, err := s.loadTutor(ctx, req.TutorID)
	if err != nil {
		return "", err
	}
	if tutor.ID == studentID {
		return "", NewValidationError("tutorId", "cannot book a session with yourself")
	}
	if !availability.Offers(tutor.Availability, req.Weekday, req.TimeLabel) {
		return "", NewValidationError("timeLabel", fmt.Sprintf("tutor does not offer %s at %s", req.Weekday, req.TimeLabel))
	}
	price := s.priceOf(tutor)
	if !payment.SameAmount(req.Price, price) {
		return "", NewValidationError("price", fmt.Sprintf("must be %.2f", price))
	}

	release, ok, err := s.Locker.Acquire(ctx, req.PaymentReference, utils.BookingLockTTL)
	if err != nil {
		return "", fmt.Errorf("acquire booking lock: %w", err)
	}
	if !ok {
		return "", ErrBookingInProgress
	}
	defer release()

	if id, done, err := s.replay(ctx, studentID, req); done {
		return id, err
	}

	if err := s.Payments.VerifyPayment(ctx, req.PaymentReference, price); err != nil {
		log.Warn("payment verification rejected booking", zap.String("paymentReference", req.PaymentReference), zap.Error(err))
		return "", err
	}

	session := models.Session{
		ID:               uuid.New().String(),
		TutorID:          req.TutorID,
		StudentID:        studentID,
		Weekday:          req.Weekday,
		TimeLabel:        req.TimeLabel,
		Date:             req.Date,
		DurationMinutes:  req.DurationMinutes,
		Price:            price,
		PaymentReference: req.PaymentReference,
		Status:           models.SessionStatusBooked,
		CreatedAt:        time.Now(),
	}
	if err := s.Sessions.Create(ctx, &session); err != nil {
		switch {
		case errors.Is(err, sessionRepo.ErrSlotTaken):
			log.Info("slot already booked", zap.String("date", req.Date), zap.String("time", req.TimeLabel))
			return "", ErrAlreadyBooked
		case errors.Is(err, sessionRepo.ErrDuplicatePayment):
			if id, done, err := s.replay(ctx, studentID, req); done {
				return id, err
			}
			return "", ErrPaymentReused
		default:
			return "", fmt.Errorf("commit session: %w", err)
		}
	}

	log.Info("session booked", zap.String("sessionId", session.ID), zap.String("date", session.Date), zap.String("time", session.TimeLabel))
	s.scheduleReminder(ctx, session)
	return session.ID, nil
}

// replay reports done=true when the payment reference already produced a session.
func (s *DefaultBookingService) replay(ctx context.Context, studentID string, req models.BookingRequest) (string, bool, error) {
	existing, err := s.Sessions.GetByPaymentReference(ctx, req.PaymentReference)
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			return "", false, nil
		}
		return "", true, fmt.Errorf("lookup payment reference: %w", err)
	}
	if existing.StudentID == studentID && existing.TutorID == req.TutorID &&
		existing.Date == req.Date && existing.TimeLabel == req.TimeLabel {
		return existing.ID, true, nil
	}
	return "", true, ErrPaymentReused
}

func (s *DefaultBookingService) scheduleReminder(ctx context.Context, session models.Session) {
	if s.Reminders == nil {
		return
	}
	now := s.resolver().Clock.Now()
	start, err := tasks.SessionStart(session.Date, session.TimeLabel, now.Location())
	if err != nil {
		s.logger().Debug("no reminder for unparseable time label", zap.String("sessionId", session.ID), zap.Error(err))
		return
	}
	fireAt := start.Add(-tasks.ReminderLead)
	if fireAt.Before(now) {
		return
	}
	if err := s.Reminders.ScheduleReminder(ctx, session, fireAt); err != nil {
		s.logger().Warn("failed to schedule session reminder", zap.String("sessionId", session.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) ListSessions(ctx context.Context, participantID string) ([]models.Session, error) {
	return s.Sessions.ListByParticipant(ctx, participantID)
}
