package handlers

import (
	"errors"
	"net/http"

	"guruconnect/models"
	"guruconnect/services/booking"
	"guruconnect/services/payment"
	"guruconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Service payment.PaymentService
	Prices  booking.Pricer
}

func NewPaymentHandler(svc payment.PaymentService, prices booking.Pricer) *PaymentHandler {
	return &PaymentHandler{Service: svc, Prices: prices}
}

// CreateOrder mints a gateway order for one session with the tutor, priced server-side.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if req.Amount < 0 {
		utils.JSONError(c, http.StatusBadRequest, "Amount must be positive", "")
		return
	}

	price, err := h.Prices.PriceFor(c.Request.Context(), req.TutorID)
	if err != nil {
		if errors.Is(err, booking.ErrTutorNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Tutor not found", "")
			return
		}
		utils.LoggerFrom(c).Error("Failed to price session", zap.String("tutorId", req.TutorID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to price session", "")
		return
	}
	if req.Amount != 0 && !payment.SameAmount(req.Amount, price) {
		utils.JSONErrorCode(c, http.StatusBadRequest, "PRICE_MISMATCH", "Amount does not match the session price", "")
		return
	}

	order, err := h.Service.CreateOrder(c.Request.Context(), price)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			utils.JSONError(c, http.StatusBadRequest, "Amount must be positive", "")
			return
		}
		utils.LoggerFrom(c).Error("Failed to create payment order", zap.Float64("amount", price), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Failed to create payment order", "")
		return
	}

	c.JSON(http.StatusOK, order)
}
