package models

// CreateOrderRequest is the body of "create payment order". The server
// prices the order from the tutor; Amount, when sent, must match that price.
type CreateOrderRequest struct {
	TutorID string  `json:"tutorId" binding:"required"`
	Amount  float64 `json:"amount,omitempty"`
}

// PaymentOrder is an order minted by the payment gateway. It is consumed
// once by the client-side handshake.
type PaymentOrder struct {
	OrderID      string  `json:"orderId"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	ClientSecret string  `json:"clientSecret,omitempty"`
}

// PaymentReceipt is what the gateway reports for a settled payment.
type PaymentReceipt struct {
	Reference string
	Amount    float64
	Currency  string
}

// PayerInfo is prefilled into the external payment UI.
type PayerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
