package client

import (
	"context"
	"fmt"
	"sync"

	"guruconnect/models"

	"go.uber.org/zap"
)

// PaymentStatus is the terminal state of one handshake.
type PaymentStatus int

const (
	PaymentSucceeded PaymentStatus = iota + 1
	PaymentFailed
	PaymentCancelled
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentSucceeded:
		return "Success"
	case PaymentFailed:
		return "Failure"
	case PaymentCancelled:
		return "Cancelled"
	default:
		return "Pending"
	}
}

// PaymentOutcome is what the handshake resolved to. Reference is set only on success.
type PaymentOutcome struct {
	Status    PaymentStatus
	Reference string
	Reason    string
}

// PaymentResolution accepts exactly one outcome. Later calls are ignored and report false.
type PaymentResolution struct {
	once sync.Once
	ch   chan PaymentOutcome
}

func newPaymentResolution() *PaymentResolution {
	return &PaymentResolution{ch: make(chan PaymentOutcome, 1)}
}

func (r *PaymentResolution) resolve(out PaymentOutcome) bool {
	honored := false
	r.once.Do(func() {
		r.ch <- out
		honored = true
	})
	return honored
}

// Succeed resolves with the gateway's payment reference. An empty reference counts as a failure.
func (r *PaymentResolution) Succeed(reference string) bool {
	if reference == "" {
		return r.resolve(PaymentOutcome{Status: PaymentFailed, Reason: "gateway returned an empty payment reference"})
	}
	return r.resolve(PaymentOutcome{Status: PaymentSucceeded, Reference: reference})
}

// Fail resolves with the gateway's failure reason.
func (r *PaymentResolution) Fail(reason string) bool {
	return r.resolve(PaymentOutcome{Status: PaymentFailed, Reason: reason})
}

// Cancel resolves as dismissed by the payer.
func (r *PaymentResolution) Cancel() bool {
	return r.resolve(PaymentOutcome{Status: PaymentCancelled})
}

// Handshake drives the external payment UI for one order. It must eventually
// call one of res's methods; it may do so from any goroutine.
type Handshake interface {
	Present(ctx context.Context, order models.PaymentOrder, payer models.PayerInfo, res *PaymentResolution)
}

// HandshakeFunc adapts a function to Handshake.
type HandshakeFunc func(ctx context.Context, order models.PaymentOrder, payer models.PayerInfo, res *PaymentResolution)

func (f HandshakeFunc) Present(ctx context.Context, order models.PaymentOrder, payer models.PayerInfo, res *PaymentResolution) {
	f(ctx, order, payer, res)
}

// PaymentOrchestrator mints an order and runs one handshake at a time.
type PaymentOrchestrator struct {
	api       API
	handshake Handshake
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight bool
	// OnInFlight, when set, observes every change of the in-flight flag.
	OnInFlight func(bool)
}

func NewPaymentOrchestrator(api API, handshake Handshake, logger *zap.Logger) *PaymentOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentOrchestrator{api: api, handshake: handshake, logger: logger}
}

// InFlight reports whether an attempt is between order creation and its outcome.
func (p *PaymentOrchestrator) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

func (p *PaymentOrchestrator) setInFlight(v bool) bool {
	p.mu.Lock()
	if v && p.inFlight {
		p.mu.Unlock()
		return false
	}
	p.inFlight = v
	hook := p.OnInFlight
	p.mu.Unlock()
	if hook != nil {
		hook(v)
	}
	return true
}

// CreateOrder mints a payment order for one session with tutorID. The server
// prices the order and rejects an amount that differs from its price.
// Failures are terminal; nothing is retried.
func (p *PaymentOrchestrator) CreateOrder(ctx context.Context, tutorID string, amount float64) (*models.PaymentOrder, error) {
	order, err := p.api.CreatePaymentOrder(ctx, models.CreateOrderRequest{TutorID: tutorID, Amount: amount})
	if err != nil {
		p.logger.Warn("payment order creation failed", zap.String("tutorId", tutorID), zap.Float64("amount", amount), zap.Error(err))
		return nil, newError(KindOrderCreationFailed, "could not create payment order", err)
	}
	return order, nil
}

// PresentPayment runs the handshake and returns its first outcome. A panic
// inside the handshake or a cancelled ctx also resolves the attempt.
func (p *PaymentOrchestrator) PresentPayment(ctx context.Context, order models.PaymentOrder, payer models.PayerInfo) PaymentOutcome {
	res := newPaymentResolution()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("payment handshake panicked", zap.String("orderId", order.OrderID), zap.Any("panic", r))
				res.Fail(fmt.Sprintf("payment handshake crashed: %v", r))
			}
		}()
		p.handshake.Present(ctx, order, payer, res)
	}()

	select {
	case out := <-res.ch:
		return out
	case <-ctx.Done():
		// Claim the resolution so a late gateway callback is ignored.
		res.Cancel()
		return <-res.ch
	}
}

// Pay creates an order for a session with tutorID and presents it. The
// in-flight flag covers both steps and is released on every path.
func (p *PaymentOrchestrator) Pay(ctx context.Context, tutorID string, amount float64, payer models.PayerInfo) (PaymentOutcome, error) {
	if !p.setInFlight(true) {
		return PaymentOutcome{}, newError(KindPaymentFailed, "a payment is already in progress", nil)
	}
	defer p.setInFlight(false)

	order, err := p.CreateOrder(ctx, tutorID, amount)
	if err != nil {
		return PaymentOutcome{}, err
	}

	out := p.PresentPayment(ctx, *order, payer)
	p.logger.Info("payment handshake finished",
		zap.String("orderId", order.OrderID), zap.Stringer("status", out.Status), zap.String("reason", out.Reason))
	return out, nil
}
