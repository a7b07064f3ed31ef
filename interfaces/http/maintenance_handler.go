package http

import (
	"net/http"
	"strconv"

	"content-platform/usecase"

	"github.com/gin-gonic/gin"
)

type IMaintenanceHandler interface {
	CleanupTemporaryContent(ctx *gin.Context)
	DispatchOutbox(ctx *gin.Context)
	Healthz(ctx *gin.Context)
}

type MaintenanceHandler struct {
	cleanupUsecase   usecase.ICleanupUsecase
	outboxDispatcher usecase.IOutboxDispatcher
	defaultBatch     int
}

func NewMaintenanceHandler(cleanup usecase.ICleanupUsecase, dispatcher usecase.IOutboxDispatcher, defaultBatch int) IMaintenanceHandler {
	return &MaintenanceHandler{cleanupUsecase: cleanup, outboxDispatcher: dispatcher, defaultBatch: defaultBatch}
}

func (h *MaintenanceHandler) CleanupTemporaryContent(ctx *gin.Context) {
	deleted, err := h.cleanupUsecase.CleanupExpiredTemporaryContent(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// DispatchOutbox drains one batch on demand (?batch=N, capped at 500).
func (h *MaintenanceHandler) DispatchOutbox(ctx *gin.Context) {
	batch := h.defaultBatch
	if b := ctx.Query("batch"); b != "" {
		if v, err := strconv.Atoi(b); err == nil && v > 0 && v <= 500 {
			batch = v
		}
	}
	n, err := h.outboxDispatcher.DispatchPending(ctx.Request.Context(), batch)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dispatched": n})
}

// Healthz returns OK for health checks
func (h *MaintenanceHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
