package http

import (
	"net/http"

	"content-platform/domain/apperror"
	"content-platform/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// writeError maps a usecase error to its HTTP status. Anything unclassified
// is logged and hidden behind a generic 500.
func writeError(ctx *gin.Context, err error) {
	var status int
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindForbidden:
		status = http.StatusForbidden
	case apperror.KindConflict:
		status = http.StatusConflict
	case apperror.KindValidation:
		status = http.StatusBadRequest
	default:
		logger.GetLogger().
			WithField("path", ctx.FullPath()).
			WithField("error", err.Error()).
			Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	logger.GetLogger().
		WithField("path", ctx.FullPath()).
		WithField("error", err.Error()).
		Warn("Request rejected")
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func requireUser(ctx *gin.Context) (string, bool) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return "", false
	}
	return userID, true
}
