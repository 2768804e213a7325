package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/internal/attendance/models"
	"attendly/internal/attendance/services"
	"attendly/internal/common/middleware"
	"attendly/internal/common/validation"
)

// AttendanceHandler exposes check-in, check-out and eligibility endpoints.
type AttendanceHandler struct {
	checkins *services.CheckInService
}

// NewAttendanceHandler creates the handler.
func NewAttendanceHandler(checkins *services.CheckInService) *AttendanceHandler {
	return &AttendanceHandler{checkins: checkins}
}

// CheckIn records today's attendance after verification
// POST /attendance/check-in
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	var attempt models.CheckInAttempt
	if err := c.ShouldBindJSON(&attempt); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	attempt.UserID = userID

	record, err := h.checkins.CheckIn(c.Request.Context(), &attempt)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// CheckOut stamps the checkout time on today's record
// POST /attendance/check-out
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	record, err := h.checkins.CheckOut(c.Request.Context(), userID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// WFHEligibility reports whether the user could check in as WFH today.
// Advisory only; the authoritative check runs at check-in.
// GET /attendance/wfh-eligibility
func (h *AttendanceHandler) WFHEligibility(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	decision, err := h.checkins.WFHEligibility(c.Request.Context(), userID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// History lists the user's attendance records for a month
// GET /attendance/history/:month
func (h *AttendanceHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	month := c.Param("month")
	if err := validation.ValidateMonth(month); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	records, err := h.checkins.MonthHistory(c.Request.Context(), userID, month)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "records": records})
}
