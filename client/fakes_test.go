package client

import (
	"context"
	"errors"
	"sync"

	"guruconnect/models"
)

type fakeAPI struct {
	mu sync.Mutex

	order      *models.PaymentOrder
	orderErr   error
	sessionID  string
	sessionErr error
	chatID     string
	chatErr    error
	history    []models.Message
	historyErr error

	orderCalls   int
	sessionCalls int
	chatCalls    int
	historyCalls int
	lastBooking  models.BookingRequest
	lastOrder    models.CreateOrderRequest
	calls        []string

	// sessionEntered and sessionGate, when set, hold CreateSession open.
	sessionEntered chan struct{}
	sessionGate    chan struct{}
}

func (f *fakeAPI) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) CreatePaymentOrder(ctx context.Context, req models.CreateOrderRequest) (*models.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls++
	f.lastOrder = req
	f.record("order")
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if f.order != nil {
		return f.order, nil
	}
	return &models.PaymentOrder{OrderID: "pi_1", Amount: req.Amount, Currency: "inr"}, nil
}

func (f *fakeAPI) CreateSession(ctx context.Context, req models.BookingRequest) (string, error) {
	if f.sessionEntered != nil {
		close(f.sessionEntered)
	}
	if f.sessionGate != nil {
		<-f.sessionGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls++
	f.lastBooking = req
	f.record("session")
	return f.sessionID, f.sessionErr
}

func (f *fakeAPI) GetOrCreateChat(ctx context.Context, participantID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatCalls++
	f.record("chat")
	return f.chatID, f.chatErr
}

func (f *fakeAPI) FetchHistory(ctx context.Context, chatID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls++
	f.record("history")
	return append([]models.Message(nil), f.history...), f.historyErr
}

func (f *fakeAPI) setHistory(h []models.Message) {
	f.mu.Lock()
	f.history = h
	f.mu.Unlock()
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeTransport struct {
	mu       sync.Mutex
	joined   []string
	sent     []models.SendMessagePayload
	sendErr  error
	incoming chan models.Message
	closed   bool
	once     sync.Once
	log      func(string)

	// onSend runs after a successful SendMessage, before it returns.
	onSend func(models.SendMessagePayload)
}

func newFakeTransport(log func(string)) *fakeTransport {
	return &fakeTransport{incoming: make(chan models.Message, 16), log: log}
}

func (t *fakeTransport) JoinRoom(chatID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	t.joined = append(t.joined, chatID)
	if t.log != nil {
		t.log("join")
	}
	return nil
}

func (t *fakeTransport) SendMessage(p models.SendMessagePayload) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTransportClosed
	}
	if t.sendErr != nil {
		t.mu.Unlock()
		return t.sendErr
	}
	t.sent = append(t.sent, p)
	hook := t.onSend
	t.mu.Unlock()
	if hook != nil {
		hook(p)
	}
	return nil
}

func (t *fakeTransport) Incoming() <-chan models.Message { return t.incoming }

func (t *fakeTransport) Close() error {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
		close(t.incoming)
	})
	return nil
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// deliver simulates the server pushing a message; it reports false after Close.
func (t *fakeTransport) deliver(m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.incoming <- m
	return true
}

func (t *fakeTransport) lastSent() models.SendMessagePayload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sent[len(t.sent)-1]
}

type fakeDialer struct {
	mu         sync.Mutex
	err        error
	transports []*fakeTransport
	api        *fakeAPI
}

func (d *fakeDialer) Dial(ctx context.Context) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.api != nil {
		d.api.mu.Lock()
		d.api.record("connect")
		d.api.mu.Unlock()
	}
	if d.err != nil {
		return nil, d.err
	}
	var log func(string)
	if d.api != nil {
		api := d.api
		log = func(s string) {
			api.mu.Lock()
			api.record(s)
			api.mu.Unlock()
		}
	}
	t := newFakeTransport(log)
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.transports)
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transports[len(d.transports)-1]
}

var errBoom = errors.New("boom")
