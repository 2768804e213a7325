package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/internal/common/middleware"
	"attendly/internal/recommend"
)

// RecommendHandler exposes room ranking and attendance prediction.
type RecommendHandler struct {
	service *recommend.Service
}

// NewRecommendHandler creates the handler.
func NewRecommendHandler(service *recommend.Service) *RecommendHandler {
	return &RecommendHandler{service: service}
}

// RankRooms scores candidate rooms for a meeting
// POST /recommendations/rooms
func (h *RecommendHandler) RankRooms(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	var req recommend.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	ranked, err := h.service.RankRooms(c.Request.Context(), userID, req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": ranked})
}

// PredictAttendance guesses the user's likely status per weekday from history
// GET /recommendations/attendance
func (h *RecommendHandler) PredictAttendance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	prediction, err := h.service.PredictAttendance(c.Request.Context(), userID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": prediction})
}
