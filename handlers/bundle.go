// File: guruconnect/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Tutor endpoints
	GetAvailability gin.HandlerFunc
	GetSlots        gin.HandlerFunc
	SetAvailability gin.HandlerFunc

	// Payment endpoints
	CreatePaymentOrder gin.HandlerFunc

	// Booking endpoints
	CreateSession gin.HandlerFunc
	ListSessions  gin.HandlerFunc

	// Chat endpoints
	GetOrCreateChat gin.HandlerFunc
	ChatHistory     gin.HandlerFunc

	// Realtime
	ServeWS gin.HandlerFunc

	// Health
	Health gin.HandlerFunc
}
