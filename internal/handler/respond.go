package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"approvalflow/internal/apperr"
)

// respondError maps the failure taxonomy onto HTTP statuses. Uncoded errors
// are internal and never leak their message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	code := apperr.CodeOf(err)
	var status int
	switch code {
	case apperr.CodeUnauthorized:
		status = http.StatusForbidden
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeInvalidState, apperr.CodeConflictingWrite:
		status = http.StatusConflict
	case apperr.CodeValidation:
		status = http.StatusBadRequest
	default:
		logger.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": string(code)})
}
