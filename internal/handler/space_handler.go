package handler

import (
	"net/http"
	"strconv"

	"github.com/yourorg/tag-service/internal/service"
	"github.com/yourorg/tag-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SpaceHandler handles space registration, standing checks, and AFK
// markers.
type SpaceHandler struct {
	spaceService *service.SpaceService
	logger       *zap.Logger
}

// NewSpaceHandler creates a new space handler.
func NewSpaceHandler(spaceService *service.SpaceService, logger *zap.Logger) *SpaceHandler {
	return &SpaceHandler{
		spaceService: spaceService,
		logger:       logger,
	}
}

// Register ensures a space row exists
// PUT /api/v1/spaces/{space_id}
func (h *SpaceHandler) Register(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	if err := h.spaceService.EnsureRegistered(c.Request.Context(), spaceID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"registered": true})
}

// Settings returns the space settings row
// GET /api/v1/spaces/{space_id}
func (h *SpaceHandler) Settings(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	space, err := h.spaceService.Settings(c.Request.Context(), spaceID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": space})
}

// Standing reports whether the space and user may use the service
// GET /api/v1/spaces/{space_id}/standing?user_id=
func (h *SpaceHandler) Standing(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}

	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Missing or invalid user_id")
		return
	}

	allowed, err := h.spaceService.Standing(c.Request.Context(), spaceID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

// SetAFKRequest is the body for marking a user away.
type SetAFKRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SetAFK marks a user away in a space
// PUT /api/v1/spaces/{space_id}/afk/{user_id}
func (h *SpaceHandler) SetAFK(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var req SetAFKRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	afk, err := h.spaceService.SetAFK(c.Request.Context(), userID, spaceID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": afk})
}

// GetAFK returns the away marker, if any
// GET /api/v1/spaces/{space_id}/afk/{user_id}
func (h *SpaceHandler) GetAFK(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	afk, err := h.spaceService.GetAFK(c.Request.Context(), userID, spaceID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if afk == nil {
		// Not being away is an empty result, not an error.
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": afk})
}

// ClearAFK removes the away marker
// DELETE /api/v1/spaces/{space_id}/afk/{user_id}
func (h *SpaceHandler) ClearAFK(c *gin.Context) {
	spaceID, ok := parseIDParam(c, "space_id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	cleared, err := h.spaceService.ClearAFK(c.Request.Context(), userID, spaceID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}
