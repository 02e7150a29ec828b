package handler

import (
	"net/http"
	"strconv"

	"github.com/yourorg/tag-service/internal/cooldown"
	"github.com/yourorg/tag-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CooldownHandler exposes the gate to the command layer for operations
// that are rate limited but not served by this service (external-API
// commands use tier 1 here).
type CooldownHandler struct {
	gate   *cooldown.Gate
	logger *zap.Logger
}

// NewCooldownHandler creates a new cooldown handler.
func NewCooldownHandler(gate *cooldown.Gate, logger *zap.Logger) *CooldownHandler {
	return &CooldownHandler{
		gate:   gate,
		logger: logger,
	}
}

// Check consumes the caller's token for a tier
// GET /api/v1/cooldown/check?caller_id=&tier=
func (h *CooldownHandler) Check(c *gin.Context) {
	callerID, err := strconv.ParseInt(c.Query("caller_id"), 10, 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Missing or invalid caller_id")
		return
	}

	tier, err := cooldown.ParseTier(c.DefaultQuery("tier", "0"))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.gate.Check(c.Request.Context(), callerID, tier); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allow": true})
}
