package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"guruconnect/models"

	"go.uber.org/zap"
)

// PaymentService mints orders for the client handshake and verifies
// references before a booking is committed.
type PaymentService interface {
	CreateOrder(ctx context.Context, amount float64) (*models.PaymentOrder, error)
	// VerifyPayment checks that ref settled for exactly amount in the configured currency.
	VerifyPayment(ctx context.Context, ref string, amount float64) error
}

// DefaultPaymentService implements PaymentService on top of a Gateway.
type DefaultPaymentService struct {
	gateway    Gateway
	currency   string
	skipVerify bool
	logger     *zap.Logger
}

// NewPaymentService wires a gateway. With skipVerify set every reference is
// accepted, which is only meant for local development.
func NewPaymentService(gateway Gateway, currency string, skipVerify bool, logger *zap.Logger) *DefaultPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "inr"
	}
	return &DefaultPaymentService{
		gateway:    gateway,
		currency:   currency,
		skipVerify: skipVerify,
		logger:     logger,
	}
}

func (s *DefaultPaymentService) CreateOrder(ctx context.Context, amount float64) (*models.PaymentOrder, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	order, err := s.gateway.CreateOrder(ctx, amount, s.currency)
	if err != nil {
		s.logger.Error("payment order creation failed", zap.Float64("amount", amount), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	s.logger.Info("payment order created", zap.String("orderId", order.OrderID), zap.Float64("amount", order.Amount))
	return order, nil
}

func (s *DefaultPaymentService) VerifyPayment(ctx context.Context, ref string, amount float64) error {
	if s.skipVerify {
		s.logger.Debug("payment verification skipped", zap.String("paymentReference", ref))
		return nil
	}
	receipt, err := s.gateway.Verify(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrPaymentNotSettled) {
			return err
		}
		s.logger.Error("payment verification failed", zap.String("paymentReference", ref), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if !SameAmount(receipt.Amount, amount) || !strings.EqualFold(receipt.Currency, s.currency) {
		s.logger.Warn("payment does not match session price",
			zap.String("paymentReference", ref),
			zap.Float64("paid", receipt.Amount), zap.String("paidCurrency", receipt.Currency),
			zap.Float64("expected", amount), zap.String("expectedCurrency", s.currency))
		return fmt.Errorf("%w: paid %.2f %s, expected %.2f %s", ErrAmountMismatch,
			receipt.Amount, receipt.Currency, amount, s.currency)
	}
	return nil
}
