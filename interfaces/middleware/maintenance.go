package middleware

import (
	"crypto/subtle"
	"net/http"

	"content-platform/domain/dto"
	"content-platform/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

const MaintenanceKeyHeader = "X-Maintenance-Key"

// MaintenanceKey admits operator calls carrying the shared maintenance key.
// With no key configured every call is refused.
func MaintenanceKey(key string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "403", ResponseMessage: "Forbidden"}
		if key == "" {
			res.ResponseMessage = "Maintenance endpoints are disabled"
			ctx.AbortWithStatusJSON(http.StatusForbidden, res)
			return
		}
		given := ctx.GetHeader(MaintenanceKeyHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			logger.GetLogger().WithField("path", ctx.FullPath()).Warn("Rejected maintenance call")
			ctx.AbortWithStatusJSON(http.StatusForbidden, res)
			return
		}
		ctx.Next()
	}
}
