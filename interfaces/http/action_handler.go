package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"content-platform/domain/apperror"
	"content-platform/domain/dto"
	"content-platform/usecase"

	"github.com/gin-gonic/gin"
)

type IActionHandler interface {
	CreateAction(ctx *gin.Context)
	GetAction(ctx *gin.Context)
	ListTeamActions(ctx *gin.Context)
	Approve(ctx *gin.Context)
	RequestNewGeneration(ctx *gin.Context)
	StartImageEdit(ctx *gin.Context)
	CompleteImageEdit(ctx *gin.Context)
	GetTeamUsage(ctx *gin.Context)
}

type ActionHandler struct {
	actionUsecase usecase.IActionUsecase
}

func NewActionHandler(uc usecase.IActionUsecase) IActionHandler {
	return &ActionHandler{actionUsecase: uc}
}

func (h *ActionHandler) CreateAction(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req dto.CreateActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	out, err := h.actionUsecase.CreateAction(ctx.Request.Context(), userID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

func (h *ActionHandler) GetAction(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	action, err := h.actionUsecase.GetAction(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, action)
}

func (h *ActionHandler) ListTeamActions(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	list, err := h.actionUsecase.ListTeamActions(ctx.Request.Context(), userID, ctx.Param("teamId"), limit, offset)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// Approve commits a staged candidate. An already approved action answers 200
// with its current state.
func (h *ActionHandler) Approve(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req dto.ApproveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "temporaryContentId is required"})
		return
	}
	requesterID, err := requester(req.RequesterUserID, userID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	action, err := h.actionUsecase.Approve(ctx.Request.Context(), usecase.ApproveInput{
		ActionID:           ctx.Param("id"),
		TemporaryContentID: req.TemporaryContentID,
		RequesterUserID:    requesterID,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, action)
}

func (h *ActionHandler) RequestNewGeneration(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	requesterID, err := requester(req.RequesterUserID, userID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	out, err := h.actionUsecase.RequestNewGeneration(ctx.Request.Context(), usecase.RevisionInput{
		ActionID:        ctx.Param("id"),
		RequesterUserID: requesterID,
		NewImageURL:     req.NewImageURL,
		NewTitle:        req.NewTitle,
		NewBody:         req.NewBody,
		NewHashtags:     req.NewHashtags,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

func (h *ActionHandler) StartImageEdit(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	action, err := h.actionUsecase.StartImageEdit(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, action)
}

func (h *ActionHandler) CompleteImageEdit(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var req dto.CompleteImageEditRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl is required"})
		return
	}
	action, err := h.actionUsecase.CompleteImageEdit(ctx.Request.Context(), userID, ctx.Param("id"), req.ImageURL)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, action)
}

func (h *ActionHandler) GetTeamUsage(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	usage, err := h.actionUsecase.GetTeamUsage(ctx.Request.Context(), userID, ctx.Param("teamId"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, usage)
}

// requester is always the authenticated caller. A body naming someone else
// is refused rather than trusted.
func requester(fromBody, authenticated string) (string, error) {
	if fromBody != "" && fromBody != authenticated {
		return "", apperror.Forbidden("requesterUserId does not match the authenticated user")
	}
	return authenticated, nil
}
