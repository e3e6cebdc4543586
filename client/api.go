package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"guruconnect/models"
)

// API is the backend surface the core consumes.
type API interface {
	CreatePaymentOrder(ctx context.Context, req models.CreateOrderRequest) (*models.PaymentOrder, error)
	CreateSession(ctx context.Context, req models.BookingRequest) (string, error)
	GetOrCreateChat(ctx context.Context, participantID string) (string, error)
	// FetchHistory treats any non-200 response as an empty history.
	FetchHistory(ctx context.Context, chatID string) ([]models.Message, error)
}

// StatusError is a non-success HTTP response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// alreadyBookedCode is the error code the backend sends with a 409 on a taken slot.
const alreadyBookedCode = "ALREADY_BOOKED"

// IsAlreadyBooked reports whether err is the backend's slot-taken conflict.
func IsAlreadyBooked(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == http.StatusConflict && se.Code == alreadyBookedCode
}

// HTTPAPI talks to the backend REST endpoints with a bearer token.
type HTTPAPI struct {
	baseURL  string
	identity Identity
	http     *http.Client
}

func NewHTTPAPI(cfg Config, identity Identity) *HTTPAPI {
	cfg = cfg.withDefaults()
	return &HTTPAPI{
		baseURL:  cfg.BaseURL,
		identity: identity,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (a *HTTPAPI) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.identity.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.identity.Token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Message string `json:"message"`
			Code    string `json:"code"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Code: payload.Code, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *HTTPAPI) CreatePaymentOrder(ctx context.Context, req models.CreateOrderRequest) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := a.do(ctx, http.MethodPost, "/api/payments/orders", req, &order); err != nil {
		return nil, err
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("payment order without id")
	}
	return &order, nil
}

func (a *HTTPAPI) CreateSession(ctx context.Context, req models.BookingRequest) (string, error) {
	var resp models.CreateSessionResponse
	if err := a.do(ctx, http.MethodPost, "/api/sessions", req, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

func (a *HTTPAPI) GetOrCreateChat(ctx context.Context, participantID string) (string, error) {
	var resp models.GetOrCreateChatResponse
	if err := a.do(ctx, http.MethodPost, "/api/chats", models.GetOrCreateChatRequest{ParticipantID: participantID}, &resp); err != nil {
		return "", err
	}
	if resp.ChatID == "" {
		return "", fmt.Errorf("chat response without id")
	}
	return resp.ChatID, nil
}

func (a *HTTPAPI) FetchHistory(ctx context.Context, chatID string) ([]models.Message, error) {
	var messages []models.Message
	err := a.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID)+"/messages", nil, &messages)
	if err != nil {
		if _, ok := err.(*StatusError); ok {
			return []models.Message{}, nil
		}
		return nil, err
	}
	return messages, nil
}
