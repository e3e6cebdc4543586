package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sessionRepo "guruconnect/database/repository/session"
	tutorRepo "guruconnect/database/repository/tutor"
	"guruconnect/models"
	"guruconnect/services/availability"
	"guruconnect/services/payment"
)

type memSessions struct {
	mu       sync.Mutex
	sessions []models.Session
}

func (m *memSessions) Create(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.sessions {
		if e.PaymentReference == s.PaymentReference {
			return sessionRepo.ErrDuplicatePayment
		}
		if e.Status == models.SessionStatusBooked && e.TutorID == s.TutorID && e.Date == s.Date && e.TimeLabel == s.TimeLabel {
			return sessionRepo.ErrSlotTaken
		}
	}
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *memSessions) GetByPaymentReference(ctx context.Context, ref string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.sessions {
		if e.PaymentReference == ref {
			s := e
			return &s, nil
		}
	}
	return nil, sessionRepo.ErrSessionNotFound
}

func (m *memSessions) ListByParticipant(ctx context.Context, id string) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, e := range m.sessions {
		if e.StudentID == id || e.TutorID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubPayments struct {
	verifyErr error
	verified  int
	amount    float64
}

func (p *stubPayments) CreateOrder(ctx context.Context, amount float64) (*models.PaymentOrder, error) {
	return &models.PaymentOrder{OrderID: "order_1", Amount: amount, Currency: "inr"}, nil
}

func (p *stubPayments) VerifyPayment(ctx context.Context, ref string, amount float64) error {
	p.verified++
	p.amount = amount
	return p.verifyErr
}

// receiptGateway settles every reference for a fixed amount.
type receiptGateway struct {
	paid float64
}

func (g *receiptGateway) CreateOrder(ctx context.Context, amount float64, currency string) (*models.PaymentOrder, error) {
	return &models.PaymentOrder{OrderID: "pi_1", Amount: amount, Currency: currency}, nil
}

func (g *receiptGateway) Verify(ctx context.Context, ref string) (*models.PaymentReceipt, error) {
	return &models.PaymentReceipt{Reference: ref, Amount: g.paid, Currency: "inr"}, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *memLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return func() {}, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true, nil
}

type recordingReminders struct {
	fireAt []time.Time
}

func (r *recordingReminders) ScheduleReminder(ctx context.Context, s models.Session, fireAt time.Time) error {
	r.fireAt = append(r.fireAt, fireAt)
	return nil
}

// Wednesday 2026-10-21 09:00 UTC.
var wednesday = time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC)

func newTestService() (*DefaultBookingService, *memSessions, *stubPayments, *recordingReminders) {
	tutors := tutorRepo.NewMemoryTutorRepo(models.Tutor{
		ID: "guru-1", Name: "Asha", Price: 500, Availability: []models.AvailabilityEntry{
			{Day: "Monday", Time: "10:00"},
			{Day: "Wednesday", Time: "18:00"},
		},
	})
	sessions := &memSessions{}
	payments := &stubPayments{}
	reminders := &recordingReminders{}
	svc := &DefaultBookingService{
		Tutors:    tutors,
		Sessions:  sessions,
		Payments:  payments,
		Locker:    &memLocker{},
		Reminders: reminders,
		Resolver:  availability.NewResolver(availability.FixedClock(wednesday)),
	}
	return svc, sessions, payments, reminders
}

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		TutorID:          "guru-1",
		Weekday:          "Monday",
		TimeLabel:        "10:00",
		Date:             "2026-10-26",
		DurationMinutes:  60,
		Price:            500,
		PaymentReference: "pi_1",
	}
}

func TestCreateSession_Created(t *testing.T) {
	svc, sessions, payments, reminders := newTestService()
	id, err := svc.CreateSession(context.Background(), "student-1", validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" || len(sessions.sessions) != 1 {
		t.Fatalf("expected one committed session, got %d (id %q)", len(sessions.sessions), id)
	}
	if payments.verified != 1 {
		t.Fatalf("expected payment to be verified once, got %d", payments.verified)
	}
	if len(reminders.fireAt) != 1 || !reminders.fireAt[0].Equal(time.Date(2026, 10, 26, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected reminder one hour before start, got %v", reminders.fireAt)
	}
}

func TestCreateSession_AlreadyBooked(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.CreateSession(context.Background(), "student-1", validRequest()); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second := validRequest()
	second.PaymentReference = "pi_2"
	if _, err := svc.CreateSession(context.Background(), "student-2", second); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
}

func TestCreateSession_ReplayIsIdempotent(t *testing.T) {
	svc, sessions, _, _ := newTestService()
	first, err := svc.CreateSession(context.Background(), "student-1", validRequest())
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	again, err := svc.CreateSession(context.Background(), "student-1", validRequest())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first != again || len(sessions.sessions) != 1 {
		t.Fatalf("replay must return the same session, got %q vs %q (%d stored)", first, again, len(sessions.sessions))
	}
}

func TestCreateSession_PaymentReusedForOtherSlot(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.CreateSession(context.Background(), "student-1", validRequest()); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	other := validRequest()
	other.Weekday, other.TimeLabel, other.Date = "Wednesday", "18:00", "2026-10-21"
	if _, err := svc.CreateSession(context.Background(), "student-1", other); !errors.Is(err, ErrPaymentReused) {
		t.Fatalf("expected ErrPaymentReused, got %v", err)
	}
}

func TestCreateSession_PaymentNotSettled(t *testing.T) {
	svc, sessions, payments, _ := newTestService()
	payments.verifyErr = payment.ErrPaymentNotSettled
	if _, err := svc.CreateSession(context.Background(), "student-1", validRequest()); !errors.Is(err, payment.ErrPaymentNotSettled) {
		t.Fatalf("expected ErrPaymentNotSettled, got %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("nothing should be committed without payment")
	}
}

func TestCreateSession_LockHeld(t *testing.T) {
	svc, _, _, _ := newTestService()
	release, ok, _ := svc.Locker.Acquire(context.Background(), "pi_1", time.Second)
	if !ok {
		t.Fatalf("could not pre-acquire lock")
	}
	defer release()
	if _, err := svc.CreateSession(context.Background(), "student-1", validRequest()); !errors.Is(err, ErrBookingInProgress) {
		t.Fatalf("expected ErrBookingInProgress, got %v", err)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *models.BookingRequest)
		field  string
	}{
		{"invalid weekday", func(r *models.BookingRequest) { r.Weekday = "Funday" }, "weekday"},
		{"date not on weekday", func(r *models.BookingRequest) { r.Date = "2026-10-27" }, "date"},
		{"date in past", func(r *models.BookingRequest) { r.Date = "2026-10-19" }, "date"},
		{"bad date", func(r *models.BookingRequest) { r.Date = "26/10/2026" }, "date"},
		{"wrong duration", func(r *models.BookingRequest) { r.DurationMinutes = 90 }, "durationMinutes"},
		{"free session", func(r *models.BookingRequest) { r.Price = 0 }, "price"},
		{"missing payment", func(r *models.BookingRequest) { r.PaymentReference = " " }, "paymentReference"},
		{"slot not offered", func(r *models.BookingRequest) { r.TimeLabel = "11:00" }, "timeLabel"},
		{"student mismatch", func(r *models.BookingRequest) { r.StudentID = "someone-else" }, "studentId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, payments, _ := newTestService()
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreateSession(context.Background(), "student-1", req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, vErr.Field)
			}
			if payments.verified != 0 {
				t.Fatalf("payment must not be verified for invalid requests")
			}
		})
	}
}

func TestCreateSession_SameDayAllowed(t *testing.T) {
	svc, _, _, reminders := newTestService()
	req := validRequest()
	req.Weekday, req.TimeLabel, req.Date = "Wednesday", "18:00", "2026-10-21"
	if _, err := svc.CreateSession(context.Background(), "student-1", req); err != nil {
		t.Fatalf("same-day booking should be accepted: %v", err)
	}
	if len(reminders.fireAt) != 1 {
		t.Fatalf("expected reminder at 17:00 today")
	}
}

func TestCreateSession_UnknownTutor(t *testing.T) {
	svc, _, _, _ := newTestService()
	req := validRequest()
	req.TutorID = "ghost"
	if _, err := svc.CreateSession(context.Background(), "student-1", req); !errors.Is(err, ErrTutorNotFound) {
		t.Fatalf("expected ErrTutorNotFound, got %v", err)
	}
}

func TestCreateSession_RejectsPriceMismatch(t *testing.T) {
	svc, sessions, payments, _ := newTestService()
	req := validRequest()
	req.Price = 0.01

	_, err := svc.CreateSession(context.Background(), "student-1", req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "price" {
		t.Fatalf("expected a price validation error, got %v", err)
	}
	if len(sessions.sessions) != 0 || payments.verified != 0 {
		t.Fatalf("nothing may be verified or stored for a wrong price")
	}
}

func TestCreateSession_VerifiesTheTutorPrice(t *testing.T) {
	svc, sessions, payments, _ := newTestService()
	if _, err := svc.CreateSession(context.Background(), "student-1", validRequest()); err != nil {
		t.Fatal(err)
	}
	if payments.amount != 500 || sessions.sessions[0].Price != 500 {
		t.Fatalf("expected verification and storage at 500, got %v / %v", payments.amount, sessions.sessions[0].Price)
	}
}

func TestCreateSession_RejectsUnderpaidPayment(t *testing.T) {
	svc, sessions, _, _ := newTestService()
	svc.Payments = payment.NewPaymentService(&receiptGateway{paid: 0.01}, "inr", false, nil)

	if _, err := svc.CreateSession(context.Background(), "student-1", validRequest()); !errors.Is(err, payment.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("an underpaid booking must not be stored")
	}
}

func TestPriceFor_FallsBackToDefault(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.DefaultPrice = 300
	svc.Tutors = tutorRepo.NewMemoryTutorRepo(
		models.Tutor{ID: "guru-1", Price: 500},
		models.Tutor{ID: "guru-2"},
	)

	cases := map[string]float64{"guru-1": 500, "guru-2": 300}
	for id, want := range cases {
		got, err := svc.PriceFor(context.Background(), id)
		if err != nil || got != want {
			t.Fatalf("%s: expected %v, got %v (%v)", id, want, got, err)
		}
	}
	if _, err := svc.PriceFor(context.Background(), "nobody"); !errors.Is(err, ErrTutorNotFound) {
		t.Fatalf("expected ErrTutorNotFound, got %v", err)
	}
}
