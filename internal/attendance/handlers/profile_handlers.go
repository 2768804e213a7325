package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendly/internal/attendance/models"
	"attendly/internal/attendance/repository"
	"attendly/internal/common/middleware"
)

// ProfileHandler manages user work profiles, the knobs the WFH eligibility
// rules read.
type ProfileHandler struct {
	profiles repository.ProfileStore
}

// NewProfileHandler creates the handler.
func NewProfileHandler(profiles repository.ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns a user's work profile
// GET /admin/profiles/:user_id
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Save creates or updates a user's work profile
// PUT /admin/profiles/:user_id
func (h *ProfileHandler) Save(c *gin.Context) {
	var profile models.UserWorkProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	profile.UserID = c.Param("user_id")

	if err := h.profiles.SaveProfile(c.Request.Context(), &profile); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
