package handlers

import (
	"errors"
	"net/http"

	"guruconnect/middleware"
	"guruconnect/models"
	"guruconnect/services/chat"
	"guruconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	Service chat.ChatService
}

func NewChatHandler(svc chat.ChatService) *ChatHandler {
	return &ChatHandler{Service: svc}
}

// GetOrCreate returns the chat between the caller and participantId.
func (h *ChatHandler) GetOrCreate(c *gin.Context) {
	callerID, ok := middleware.ParticipantID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Participant not authenticated", "")
		return
	}

	var req models.GetOrCreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	room, err := h.Service.GetOrCreate(c.Request.Context(), callerID, req.ParticipantID)
	if err != nil {
		if errors.Is(err, chat.ErrSelfChat) {
			utils.JSONError(c, http.StatusBadRequest, "A chat needs two distinct participants", "")
			return
		}
		utils.LoggerFrom(c).Error("Failed to open chat", zap.String("participantId", req.ParticipantID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to open chat", "")
		return
	}

	c.JSON(http.StatusOK, models.GetOrCreateChatResponse{ChatID: room.ID})
}

// History returns every message of the chat, oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	callerID, ok := middleware.ParticipantID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Participant not authenticated", "")
		return
	}

	messages, err := h.Service.History(c.Request.Context(), c.Param("chatId"), callerID)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrNotParticipant):
			utils.JSONError(c, http.StatusForbidden, "Not a participant of this chat", "")
		case errors.Is(err, chat.ErrChatNotFound):
			utils.JSONError(c, http.StatusNotFound, "Chat not found", "")
		default:
			utils.LoggerFrom(c).Error("Failed to load chat history", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to load chat history", "")
		}
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}
