package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yourorg/tag-service/internal/model"
	"github.com/yourorg/tag-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError translates the business error taxonomy into HTTP statuses.
// Every expected outcome passes through with its own message; only
// genuinely unexpected failures become a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if rle, ok := model.IsRateLimited(err); ok {
		c.Header("Retry-After", strconv.FormatFloat(rle.RetryAfter.Seconds(), 'f', 3, 64))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Cooldown not elapsed",
			"retry_after": rle.RetryAfter.Seconds(),
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		utils.SendErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrInvalidName), errors.Is(err, model.ErrInvalidAlias):
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrDuplicateName),
		errors.Is(err, model.ErrAliasInUse),
		errors.Is(err, model.ErrAlreadyOwner),
		errors.Is(err, model.ErrOwnerStillPresent):
		utils.SendErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrQuotaExceeded), errors.Is(err, model.ErrAliasLimitExceeded):
		utils.SendErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrUnavailable):
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Store unavailable")
	case errors.Is(err, model.ErrTimeout):
		utils.SendErrorResponse(c, http.StatusGatewayTimeout, "Store operation timed out")
	default:
		logger.Error("Unexpected error handling request",
			zap.Error(err), zap.String("path", c.Request.URL.Path))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Internal error")
	}
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}
