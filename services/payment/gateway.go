package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"guruconnect/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Gateway mints orders and reports whether a payment settled.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency string) (*models.PaymentOrder, error)
	// Verify returns the receipt of ref, or ErrPaymentNotSettled unless it succeeded.
	Verify(ctx context.Context, ref string) (*models.PaymentReceipt, error)
}

// StripeGateway backs orders with Stripe PaymentIntents. stripe.Key must be set.
type StripeGateway struct{}

// NewStripeGateway returns a Stripe-backed gateway.
func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

// toMinorUnits converts a decimal amount into the smallest currency unit.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// SameAmount compares two decimal amounts in minor units.
func SameAmount(a, b float64) bool {
	return toMinorUnits(a) == toMinorUnits(b)
}

func (g *StripeGateway) CreateOrder(ctx context.Context, amount float64, currency string) (*models.PaymentOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("purpose", "guru_session")

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &models.PaymentOrder{
		OrderID:      pi.ID,
		Amount:       float64(pi.Amount) / 100,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) Verify(ctx context.Context, ref string) (*models.PaymentReceipt, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(ref, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentNotSettled, pi.Status)
	}
	return &models.PaymentReceipt{
		Reference: pi.ID,
		Amount:    float64(pi.AmountReceived) / 100,
		Currency:  string(pi.Currency),
	}, nil
}
