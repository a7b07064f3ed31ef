package dto

import (
	"encoding/json"

	"content-platform/domain/model"
)

// Res is the envelope used by middleware rejections.
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

type CreateActionRequest struct {
	TeamID   string          `json:"teamId" binding:"required"`
	BrandID  string          `json:"brandId"`
	Type     string          `json:"type" binding:"required"`
	Details  json.RawMessage `json:"details"`
	ImageURL string          `json:"imageUrl"`
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	Hashtags []string        `json:"hashtags"`
}

type ApproveRequest struct {
	TemporaryContentID string `json:"temporaryContentId" binding:"required"`
	RequesterUserID    string `json:"requesterUserId"`
}

type ReviewRequest struct {
	RequesterUserID string   `json:"requesterUserId"`
	NewImageURL     *string  `json:"newImageUrl"`
	NewTitle        *string  `json:"newTitle"`
	NewBody         *string  `json:"newBody"`
	NewHashtags     []string `json:"newHashtags"`
}

type CompleteImageEditRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

type StageQuickContentRequest struct {
	TeamID   string   `json:"teamId" binding:"required"`
	ImageURL string   `json:"imageUrl"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Hashtags []string `json:"hashtags"`
}

// ActionWithCandidate is returned by operations that stage a new candidate.
type ActionWithCandidate struct {
	Action           *model.Action           `json:"action"`
	TemporaryContent *model.TemporaryContent `json:"temporaryContent"`
}

type ActionList struct {
	Data  []model.Action `json:"data"`
	Total int64          `json:"total"`
}
