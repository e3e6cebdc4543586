package payment

import "errors"

var (
	// ErrInvalidAmount rejects zero or negative order amounts.
	ErrInvalidAmount = errors.New("invalid payment amount")
	// ErrPaymentNotSettled means the gateway has not captured the payment.
	ErrPaymentNotSettled = errors.New("payment not settled")
	// ErrAmountMismatch means the settled payment does not cover the session price.
	ErrAmountMismatch = errors.New("payment amount does not match session price")
	// ErrGateway wraps any failure talking to the payment provider.
	ErrGateway = errors.New("payment gateway error")
)
