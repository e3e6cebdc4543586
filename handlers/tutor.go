package handlers

import (
	"errors"
	"net/http"

	tutorRepo "guruconnect/database/repository/tutor"
	"guruconnect/middleware"
	"guruconnect/models"
	"guruconnect/services/availability"
	"guruconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TutorHandler struct {
	Repo     tutorRepo.TutorRepository
	Resolver *availability.Resolver
}

func NewTutorHandler(repo tutorRepo.TutorRepository, resolver *availability.Resolver) *TutorHandler {
	if resolver == nil {
		resolver = availability.NewResolver(nil)
	}
	return &TutorHandler{Repo: repo, Resolver: resolver}
}

func (h *TutorHandler) loadTutor(c *gin.Context) (*models.Tutor, bool) {
	tutor, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, tutorRepo.ErrTutorNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Tutor not found", "")
			return nil, false
		}
		utils.LoggerFrom(c).Error("Failed to load tutor", zap.String("tutorId", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load tutor", "")
		return nil, false
	}
	return tutor, true
}

// GetAvailability returns the weekly schedule and its distinct weekdays in first-seen order.
func (h *TutorHandler) GetAvailability(c *gin.Context) {
	tutor, ok := h.loadTutor(c)
	if !ok {
		return
	}
	entries := tutor.Availability
	if entries == nil {
		entries = []models.AvailabilityEntry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"tutorId":      tutor.ID,
		"price":        tutor.Price,
		"availability": entries,
		"weekdays":     availability.DistinctWeekdays(entries),
	})
}

// GetSlots resolves ?day= to its next date and lists the times offered that day.
func (h *TutorHandler) GetSlots(c *gin.Context) {
	day := c.Query("day")
	date, err := h.Resolver.NextDate(day)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid weekday", err.Error())
		return
	}
	tutor, ok := h.loadTutor(c)
	if !ok {
		return
	}
	times, err := availability.TimesForWeekday(tutor.Availability, day)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid weekday", err.Error())
		return
	}
	if times == nil {
		times = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"day":   day,
		"date":  date.Format(utils.DateLayout),
		"times": times,
	})
}

// SetAvailability replaces the caller's own weekly schedule.
func (h *TutorHandler) SetAvailability(c *gin.Context) {
	callerID, ok := middleware.ParticipantID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Participant not authenticated", "")
		return
	}
	tutorID := c.Param("id")
	if callerID != tutorID {
		utils.JSONError(c, http.StatusForbidden, "Tutors may only edit their own availability", "")
		return
	}

	var body struct {
		Availability []models.AvailabilityEntry `json:"availability"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if err := availability.ValidateSchedule(body.Availability); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid availability", err.Error())
		return
	}

	if err := h.Repo.SetAvailability(c.Request.Context(), tutorID, body.Availability); err != nil {
		if errors.Is(err, tutorRepo.ErrTutorNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Tutor not found", "")
			return
		}
		utils.LoggerFrom(c).Error("Failed to update availability", zap.String("tutorId", tutorID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update availability", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability updated", "weekdays": availability.DistinctWeekdays(body.Availability)})
}
