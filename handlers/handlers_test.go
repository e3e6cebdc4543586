package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chatRepo "guruconnect/database/repository/chat"
	tutorRepo "guruconnect/database/repository/tutor"
	"guruconnect/middleware"
	"guruconnect/models"
	"guruconnect/services/availability"
	"guruconnect/services/booking"
	"guruconnect/services/chat"
	"guruconnect/services/payment"
	"guruconnect/utils"

	"github.com/gin-gonic/gin"
)

// asParticipant stands in for JWTAuthMiddleware.
func asParticipant(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set(middleware.ParticipantIDKey, id)
		}
		c.Next()
	}
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stubBooking struct {
	err      error
	id       string
	lastUser string
}

func (s *stubBooking) CreateSession(ctx context.Context, studentID string, req models.BookingRequest) (string, error) {
	s.lastUser = studentID
	return s.id, s.err
}

func (s *stubBooking) ListSessions(ctx context.Context, participantID string) ([]models.Session, error) {
	return nil, s.err
}

func (s *stubBooking) PriceFor(ctx context.Context, tutorID string) (float64, error) {
	if tutorID != "guru-1" {
		return 0, booking.ErrTutorNotFound
	}
	return 500, nil
}

func bookingBody() models.BookingRequest {
	return models.BookingRequest{
		TutorID: "guru-1", Weekday: "Monday", TimeLabel: "10:00", Date: "2026-10-26",
		DurationMinutes: 60, Price: 500, PaymentReference: "pi_1",
	}
}

func TestCreateSession_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"created", nil, http.StatusOK, ""},
		{"already booked", booking.ErrAlreadyBooked, http.StatusConflict, CodeAlreadyBooked},
		{"in progress", booking.ErrBookingInProgress, http.StatusConflict, "BOOKING_IN_PROGRESS"},
		{"validation", booking.NewValidationError("date", "bad"), http.StatusBadRequest, "INVALID_BOOKING"},
		{"unknown tutor", booking.ErrTutorNotFound, http.StatusNotFound, ""},
		{"unpaid", payment.ErrPaymentNotSettled, http.StatusPaymentRequired, "PAYMENT_NOT_SETTLED"},
		{"underpaid", payment.ErrAmountMismatch, http.StatusPaymentRequired, "PAYMENT_AMOUNT_MISMATCH"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubBooking{err: tt.err, id: "session-1"}
			r := gin.New()
			r.POST("/api/sessions", asParticipant("student-1"), NewBookingHandler(svc).CreateSession)

			w := do(r, http.MethodPost, "/api/sessions", bookingBody())
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.err == nil {
				var resp models.CreateSessionResponse
				_ = json.Unmarshal(w.Body.Bytes(), &resp)
				if resp.SessionID != "session-1" || svc.lastUser != "student-1" {
					t.Fatalf("unexpected response %+v for user %q", resp, svc.lastUser)
				}
				return
			}
			var resp utils.ErrorResponse
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Code != tt.code {
				t.Fatalf("expected code %q, got %q", tt.code, resp.Code)
			}
		})
	}
}

func TestCreateSession_RejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubBooking{id: "session-1"}
	r := gin.New()
	r.POST("/api/sessions", asParticipant("student-1"), NewBookingHandler(svc).CreateSession)

	w := do(r, http.MethodPost, "/api/sessions", map[string]string{"tutorId": "guru-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if svc.lastUser != "" {
		t.Fatalf("service must not be called for an incomplete body")
	}
}

type stubPayments struct {
	err error
}

func (s *stubPayments) CreateOrder(ctx context.Context, amount float64) (*models.PaymentOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	if amount <= 0 {
		return nil, payment.ErrInvalidAmount
	}
	return &models.PaymentOrder{OrderID: "pi_1", Amount: amount, Currency: "inr"}, nil
}

func (s *stubPayments) VerifyPayment(ctx context.Context, ref string, amount float64) error {
	return nil
}

func TestCreatePaymentOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		svc     *stubPayments
		tutorID string
		amount  float64
		status  int
	}{
		{"ok", &stubPayments{}, "guru-1", 500, http.StatusOK},
		{"priced by server", &stubPayments{}, "guru-1", 0, http.StatusOK},
		{"negative", &stubPayments{}, "guru-1", -5, http.StatusBadRequest},
		{"wrong amount", &stubPayments{}, "guru-1", 0.01, http.StatusBadRequest},
		{"missing tutor", &stubPayments{}, "", 500, http.StatusBadRequest},
		{"unknown tutor", &stubPayments{}, "guru-9", 500, http.StatusNotFound},
		{"gateway down", &stubPayments{err: payment.ErrGateway}, "guru-1", 500, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/api/payments/orders", NewPaymentHandler(tt.svc, &stubBooking{}).CreateOrder)
			w := do(r, http.MethodPost, "/api/payments/orders", models.CreateOrderRequest{TutorID: tt.tutorID, Amount: tt.amount})
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK {
				var order models.PaymentOrder
				_ = json.Unmarshal(w.Body.Bytes(), &order)
				if order.OrderID != "pi_1" || order.Amount != 500 {
					t.Fatalf("unexpected order %+v", order)
				}
			}
		})
	}
}

func chatRouter(svc chat.ChatService, caller string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(svc)
	r := gin.New()
	r.POST("/api/chats", asParticipant(caller), h.GetOrCreate)
	r.GET("/api/chats/:chatId/messages", asParticipant(caller), h.History)
	return r
}

func TestChatHandlers(t *testing.T) {
	svc := chat.NewChatService(chatRepo.NewMemoryChatRepo(), nil)

	w := do(chatRouter(svc, "student-1"), http.MethodPost, "/api/chats", models.GetOrCreateChatRequest{ParticipantID: "guru-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var created models.GetOrCreateChatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	// The other side resolves the same chat.
	w = do(chatRouter(svc, "guru-1"), http.MethodPost, "/api/chats", models.GetOrCreateChatRequest{ParticipantID: "student-1"})
	var again models.GetOrCreateChatResponse
	_ = json.Unmarshal(w.Body.Bytes(), &again)
	if created.ChatID == "" || created.ChatID != again.ChatID {
		t.Fatalf("expected the same chat id, got %q and %q", created.ChatID, again.ChatID)
	}

	if _, err := svc.PostMessage(context.Background(), created.ChatID, "guru-1", "Hi", "c-1"); err != nil {
		t.Fatal(err)
	}
	w = do(chatRouter(svc, "student-1"), http.MethodGet, "/api/chats/"+created.ChatID+"/messages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var history []models.Message
	_ = json.Unmarshal(w.Body.Bytes(), &history)
	if len(history) != 1 || history[0].Content != "Hi" || history[0].ClientID != "c-1" {
		t.Fatalf("unexpected history %+v", history)
	}

	w = do(chatRouter(svc, "mallory"), http.MethodGet, "/api/chats/"+created.ChatID+"/messages", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	w = do(chatRouter(svc, "student-1"), http.MethodGet, "/api/chats/missing/messages", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w = do(chatRouter(svc, "student-1"), http.MethodPost, "/api/chats", models.GetOrCreateChatRequest{ParticipantID: "student-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self chat, got %d", w.Code)
	}
}

func tutorRouter(caller string) (*gin.Engine, *tutorRepo.MemoryTutorRepo) {
	gin.SetMode(gin.TestMode)
	repo := tutorRepo.NewMemoryTutorRepo(models.Tutor{
		ID: "guru-1", Price: 500, Availability: []models.AvailabilityEntry{
			{Day: "Monday", Time: "10:00"},
			{Day: "Wednesday", Time: "18:00"},
			{Day: "Monday", Time: "14:00"},
		},
	})
	// Wednesday 2026-10-21.
	resolver := availability.NewResolver(availability.FixedClock(time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC)))
	h := NewTutorHandler(repo, resolver)
	r := gin.New()
	r.GET("/api/tutors/:id/availability", h.GetAvailability)
	r.GET("/api/tutors/:id/slots", h.GetSlots)
	r.PUT("/api/tutors/:id/availability", asParticipant(caller), h.SetAvailability)
	return r, repo
}

func TestTutorAvailability(t *testing.T) {
	r, _ := tutorRouter("")

	w := do(r, http.MethodGet, "/api/tutors/guru-1/availability", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Weekdays []string `json:"weekdays"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Weekdays) != 2 || body.Weekdays[0] != "Monday" || body.Weekdays[1] != "Wednesday" {
		t.Fatalf("unexpected weekdays %v", body.Weekdays)
	}

	if w := do(r, http.MethodGet, "/api/tutors/nobody/availability", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTutorSlots(t *testing.T) {
	r, _ := tutorRouter("")

	w := do(r, http.MethodGet, "/api/tutors/guru-1/slots?day=Monday", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var slots struct {
		Date  string   `json:"date"`
		Times []string `json:"times"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &slots)
	if slots.Date != "2026-10-26" {
		t.Fatalf("expected next Monday 2026-10-26, got %s", slots.Date)
	}
	if len(slots.Times) != 2 || slots.Times[0] != "10:00" || slots.Times[1] != "14:00" {
		t.Fatalf("unexpected times %v", slots.Times)
	}

	if w := do(r, http.MethodGet, "/api/tutors/guru-1/slots?day=Funday", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an invalid weekday, got %d", w.Code)
	}
}

func TestSetAvailability(t *testing.T) {
	r, repo := tutorRouter("guru-1")
	body := gin.H{"availability": []models.AvailabilityEntry{{Day: "Friday", Time: "09:00"}}}

	if w := do(r, http.MethodPut, "/api/tutors/guru-1/availability", body); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	tutor, _ := repo.GetByID(context.Background(), "guru-1")
	if len(tutor.Availability) != 1 || tutor.Availability[0].Day != "Friday" {
		t.Fatalf("availability not replaced: %+v", tutor.Availability)
	}

	bad := gin.H{"availability": []models.AvailabilityEntry{{Day: "friday", Time: "09:00"}}}
	if w := do(r, http.MethodPut, "/api/tutors/guru-1/availability", bad); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	other, _ := tutorRouter("student-1")
	if w := do(other, http.MethodPut, "/api/tutors/guru-1/availability", body); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
