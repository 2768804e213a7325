package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendly/internal/booking/services"
	"attendly/internal/common/middleware"
	"attendly/internal/common/validation"
)

// BookingHandler exposes reservation endpoints.
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler creates the handler.
func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// BookRoom creates a room reservation
// POST /bookings/rooms
func (h *BookingHandler) BookRoom(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	var req services.RoomBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	reservation, err := h.bookings.BookRoom(c.Request.Context(), userID, req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

// ReserveParking claims a parking spot for a day
// POST /bookings/parking
func (h *BookingHandler) ReserveParking(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	var req services.ParkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	reservation, err := h.bookings.ReserveParking(c.Request.Context(), userID, req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

// Cancel cancels the caller's reservation
// DELETE /bookings/:id
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// Occupy records an occupancy signal for the caller's reservation
// POST /bookings/:id/occupy
func (h *BookingHandler) Occupy(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	if err := h.bookings.Occupy(c.Request.Context(), userID, c.Param("id")); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occupied": true})
}

// List returns the caller's reservations
// GET /bookings
func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, nil)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}

	reservations, err := h.bookings.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

// Timeline returns a resource's active reservations for a date
// GET /bookings/timeline/:resource_id?date=2006-01-02
func (h *BookingHandler) Timeline(c *gin.Context) {
	date := c.Query("date")
	if err := validation.ValidateDate(date); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	reservations, err := h.bookings.Timeline(c.Request.Context(), c.Param("resource_id"), date)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "reservations": reservations})
}
