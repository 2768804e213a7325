package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"attendly/internal/booking/models"
	"attendly/internal/booking/repository"
	"attendly/internal/booking/services"
	"attendly/internal/common/errors"
	"attendly/internal/common/middleware"
	"attendly/internal/common/validation"
)

// AdminHandler exposes resource management and the auto-release operator
// surface.
type AdminHandler struct {
	resources repository.ResourceStore
	scheduler *services.AutoReleaseScheduler
}

// NewAdminHandler creates the handler.
func NewAdminHandler(resources repository.ResourceStore, scheduler *services.AutoReleaseScheduler) *AdminHandler {
	return &AdminHandler{resources: resources, scheduler: scheduler}
}

// ListRooms returns all bookable rooms
// GET /rooms
func (h *AdminHandler) ListRooms(c *gin.Context) {
	rooms, err := h.resources.ListRooms(c.Request.Context())
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// SaveRoom creates or updates a room
// POST /admin/rooms
func (h *AdminHandler) SaveRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	if fieldErrs := validation.Validate(room); fieldErrs != nil {
		appErr := errors.Validation("invalid room", fieldErrs[0].Field+": "+fieldErrs[0].Message)
		c.JSON(appErr.Status, appErr)
		return
	}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}

	if err := h.resources.SaveRoom(c.Request.Context(), &room); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ListSpots returns all parking spots
// GET /parking-spots
func (h *AdminHandler) ListSpots(c *gin.Context) {
	spots, err := h.resources.ListSpots(c.Request.Context())
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spots": spots})
}

// SaveSpot creates or updates a parking spot
// POST /admin/parking-spots
func (h *AdminHandler) SaveSpot(c *gin.Context) {
	var spot models.ParkingSpot
	if err := c.ShouldBindJSON(&spot); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	if spot.ID == "" {
		spot.ID = uuid.NewString()
	}

	if err := h.resources.SaveSpot(c.Request.Context(), &spot); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// ReleaseCandidates reports what the next sweep would do, without acting
// GET /admin/release/candidates
func (h *AdminHandler) ReleaseCandidates(c *gin.Context) {
	candidates, err := h.scheduler.Candidates(c.Request.Context())
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// ReleaseNow immediately releases a reservation
// POST /admin/release/:id
func (h *AdminHandler) ReleaseNow(c *gin.Context) {
	ok, err := h.scheduler.ReleaseNow(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	if !ok {
		appErr := errors.Conflict("reservation is not in a releasable state")
		c.JSON(appErr.Status, appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}
