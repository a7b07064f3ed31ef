package http

import (
	"net/http"

	"content-platform/domain/dto"
	"content-platform/usecase"

	"github.com/gin-gonic/gin"
)

type ITemporaryContentHandler interface {
	StageQuickContent(ctx *gin.Context)
	GetTemporaryContent(ctx *gin.Context)
}

type TemporaryContentHandler struct {
	actionUsecase usecase.IActionUsecase
}

func NewTemporaryContentHandler(uc usecase.IActionUsecase) ITemporaryContentHandler {
	return &TemporaryContentHandler{actionUsecase: uc}
}

func (h *TemporaryContentHandler) StageQuickContent(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req dto.StageQuickContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "teamId is required"})
		return
	}
	tc, err := h.actionUsecase.StageQuickContent(ctx.Request.Context(), userID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, tc)
}

func (h *TemporaryContentHandler) GetTemporaryContent(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	tc, err := h.actionUsecase.GetTemporaryContent(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tc)
}
