package handlers

import (
	"errors"
	"net/http"

	"guruconnect/middleware"
	"guruconnect/models"
	"guruconnect/services/booking"
	"guruconnect/services/payment"
	"guruconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CodeAlreadyBooked is the error code the client switches on to keep the booking UI open.
const CodeAlreadyBooked = "ALREADY_BOOKED"

type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// CreateSession commits a paid session for the authenticated student.
func (h *BookingHandler) CreateSession(c *gin.Context) {
	logger := utils.LoggerFrom(c)

	studentID, ok := middleware.ParticipantID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Participant not authenticated", "")
		return
	}

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	sessionID, err := h.Service.CreateSession(c.Request.Context(), studentID, req)
	if err != nil {
		var vErr *booking.ValidationError
		switch {
		case errors.Is(err, booking.ErrAlreadyBooked):
			utils.JSONErrorCode(c, http.StatusConflict, CodeAlreadyBooked, "Session already booked!", "")
		case errors.Is(err, booking.ErrBookingInProgress):
			utils.JSONErrorCode(c, http.StatusConflict, "BOOKING_IN_PROGRESS", "A booking with this payment is already in progress", "")
		case errors.Is(err, booking.ErrPaymentReused):
			utils.JSONErrorCode(c, http.StatusConflict, "PAYMENT_REUSED", "Payment reference already used for another session", "")
		case errors.As(err, &vErr):
			utils.JSONErrorCode(c, http.StatusBadRequest, "INVALID_BOOKING", "Invalid booking request", vErr.Error())
		case errors.Is(err, booking.ErrTutorNotFound):
			utils.JSONError(c, http.StatusNotFound, "Tutor not found", "")
		case errors.Is(err, payment.ErrAmountMismatch):
			utils.JSONErrorCode(c, http.StatusPaymentRequired, "PAYMENT_AMOUNT_MISMATCH", "Payment does not match the session price", "")
		case errors.Is(err, payment.ErrPaymentNotSettled):
			utils.JSONErrorCode(c, http.StatusPaymentRequired, "PAYMENT_NOT_SETTLED", "Payment has not been completed", "")
		case errors.Is(err, payment.ErrGateway):
			utils.JSONError(c, http.StatusBadGateway, "Payment provider unavailable", "")
		default:
			logger.Error("Failed to create session", zap.String("studentId", studentID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to create session", "")
		}
		return
	}

	c.JSON(http.StatusOK, models.CreateSessionResponse{SessionID: sessionID})
}

// ListSessions returns sessions where the caller is the student or the tutor.
func (h *BookingHandler) ListSessions(c *gin.Context) {
	participantID, ok := middleware.ParticipantID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Participant not authenticated", "")
		return
	}

	sessions, err := h.Service.ListSessions(c.Request.Context(), participantID)
	if err != nil {
		utils.LoggerFrom(c).Error("Failed to list sessions", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list sessions", "")
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
