// Package client is the student/tutor side of booking and chat: slot
// selection, payment, booking submission and the live conversation.
package client

import (
	"guruconnect/models"
	"guruconnect/services/availability"

	"go.uber.org/zap"
)

// Client wires the components for one signed-in identity.
type Client struct {
	Identity Identity
	API      API
	Payments *PaymentOrchestrator
	Booking  *BookingOrchestrator
	resolver *availability.Resolver
	dialer   Dialer
	logger   *zap.Logger
}

// New builds a Client against cfg. The handshake drives the payment UI.
func New(cfg Config, identity Identity, handshake Handshake, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := NewHTTPAPI(cfg, identity)
	payments := NewPaymentOrchestrator(api, handshake, logger)
	return &Client{
		Identity: identity,
		API:      api,
		Payments: payments,
		Booking:  NewBookingOrchestrator(identity, api, payments, logger),
		resolver: availability.NewResolver(nil),
		dialer:   NewWSDialer(cfg, identity, logger),
		logger:   logger,
	}
}

// NewSelection starts a day/time picker over a tutor's schedule.
func (c *Client) NewSelection(schedule []models.AvailabilityEntry) *Selection {
	return NewSelection(schedule, c.resolver)
}

// NewChat returns a session manager for one conversation panel.
func (c *Client) NewChat() *SessionManager {
	return NewSessionManager(c.Identity, c.API, c.dialer, c.logger)
}
