package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"attendly/internal/common/errors"
	"attendly/internal/common/middleware"
	"attendly/internal/office/models"
	"attendly/internal/office/repository"
)

// OfficeHandler manages office locations and their check-in tokens.
type OfficeHandler struct {
	locations repository.LocationStore
	tokens    repository.TokenStore
}

// NewOfficeHandler creates the handler.
func NewOfficeHandler(locations repository.LocationStore, tokens repository.TokenStore) *OfficeHandler {
	return &OfficeHandler{locations: locations, tokens: tokens}
}

// List returns all office locations
// GET /offices
func (h *OfficeHandler) List(c *gin.Context) {
	offices, err := h.locations.List(c.Request.Context())
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offices": offices})
}

// Get returns one office with its networks and tokens
// GET /offices/:id
func (h *OfficeHandler) Get(c *gin.Context) {
	office, err := h.locations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, office)
}

// Save creates or updates an office location
// POST /admin/offices
func (h *OfficeHandler) Save(c *gin.Context) {
	var office models.OfficeLocation
	if err := c.ShouldBindJSON(&office); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	if office.ID == "" {
		office.ID = uuid.NewString()
	}

	if err := h.locations.Save(c.Request.Context(), &office); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, office)
}

// Delete removes an office location
// DELETE /admin/offices/:id
func (h *OfficeHandler) Delete(c *gin.Context) {
	if err := h.locations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveToken creates or updates a check-in token for an office
// POST /admin/offices/:id/tokens
func (h *OfficeHandler) SaveToken(c *gin.Context) {
	var token models.CheckInToken
	if err := c.ShouldBindJSON(&token); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	token.OfficeID = c.Param("id")
	if token.ID == "" {
		token.ID = uuid.NewString()
	}

	if err := h.tokens.SaveToken(c.Request.Context(), &token); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// DeleteToken removes a check-in token
// DELETE /admin/tokens/:token_id
func (h *OfficeHandler) DeleteToken(c *gin.Context) {
	if err := h.tokens.DeleteToken(c.Request.Context(), c.Param("token_id")); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TokenQR renders a token's code as a QR PNG for printing at the entrance
// GET /admin/tokens/:token_id/qr
func (h *OfficeHandler) TokenQR(c *gin.Context) {
	token, err := h.tokens.GetToken(c.Request.Context(), c.Param("token_id"))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	png, err := qrcode.Encode(token.Code, qrcode.Medium, 256)
	if err != nil {
		middleware.JSONErrorResponse(c, errors.Internal("failed to render QR code", err.Error()))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
