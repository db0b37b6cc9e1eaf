package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamflow/auth-service/internal/apperrors"
	"github.com/teamflow/auth-service/internal/dto"
)

// writeError maps a service error to an HTTP response. Unclassified
// errors become opaque 500s so internal details never leak.
func writeError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Something went wrong",
		})
		return
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: appErr.Message,
		})
	case apperrors.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: appErr.Message,
		})
	case apperrors.KindForbidden:
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: appErr.Message,
		})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not found",
			Message: appErr.Message,
		})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: appErr.Message,
		})
	case apperrors.KindLocked:
		minutes := int(math.Ceil(appErr.RetryAfter.Minutes()))
		if minutes < 1 {
			minutes = 1
		}
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(appErr.RetryAfter.Seconds()))))
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
			Error:             "Too Many Requests",
			Message:           appErr.Message,
			RetryAfterMinutes: minutes,
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Something went wrong",
		})
	}
}
