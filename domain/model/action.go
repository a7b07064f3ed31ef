package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type ActionType string

const (
	ActionTypeCreateContent ActionType = "CREATE_CONTENT"
	ActionTypeReviewContent ActionType = "REVIEW_CONTENT"
	ActionTypePlanContent   ActionType = "PLAN_CONTENT"
)

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionTypeCreateContent, ActionTypeReviewContent, ActionTypePlanContent:
		return true
	}
	return false
}

// Action status labels. The Portuguese labels are persisted as-is and read by
// the web client.
const (
	ActionStatusInReview   = "Em revisão"
	ActionStatusApproved   = "Aprovado"
	ActionStatusProcessing = "PROCESSING"
	ActionStatusCompleted  = "COMPLETED"
)

// Action is the system of record for one content-generation task.
type Action struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TeamID    string         `json:"teamId" gorm:"type:varchar(36);not null;index"`
	UserID    string         `json:"userId" gorm:"type:varchar(36);not null;index"`
	BrandID   string         `json:"brandId" gorm:"type:varchar(36);index"`
	Type      ActionType     `json:"type" gorm:"type:varchar(32);not null"`
	Status    string         `json:"status" gorm:"type:varchar(32);not null;index"`
	Approved  bool           `json:"approved" gorm:"not null;default:false"`
	Revisions int            `json:"revisions" gorm:"not null;default:0"`
	Result    datatypes.JSON `json:"result,omitempty"`
	Details   datatypes.JSON `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Action) TableName() string { return "actions" }

// ResultPayload is one variant of the Action result union. The variant is
// selected by the owning Action's type.
type ResultPayload interface {
	ActionType() ActionType
}

type ContentResult struct {
	ImageURL string   `json:"imageUrl"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Hashtags []string `json:"hashtags"`
}

func (ContentResult) ActionType() ActionType { return ActionTypeCreateContent }

type ReviewResult struct {
	ImageURL string `json:"imageUrl"`
	Title    string `json:"title"`
	Feedback string `json:"feedback"`
}

func (ReviewResult) ActionType() ActionType { return ActionTypeReviewContent }

type PlanResult struct {
	Title string `json:"title"`
	Plan  string `json:"plan"`
}

func (PlanResult) ActionType() ActionType { return ActionTypePlanContent }

// ResultFromCandidate shapes a staged candidate into the result variant of t.
func ResultFromCandidate(t ActionType, c Candidate) (ResultPayload, error) {
	switch t {
	case ActionTypeCreateContent:
		hashtags := c.Hashtags
		if hashtags == nil {
			hashtags = []string{}
		}
		return ContentResult{ImageURL: c.ImageURL, Title: c.Title, Body: c.Body, Hashtags: hashtags}, nil
	case ActionTypeReviewContent:
		return ReviewResult{ImageURL: c.ImageURL, Title: c.Title, Feedback: c.Body}, nil
	case ActionTypePlanContent:
		return PlanResult{Title: c.Title, Plan: c.Body}, nil
	}
	return nil, fmt.Errorf("unknown action type %q", t)
}

// EncodeResult marshals p after checking it is the variant for t.
func EncodeResult(t ActionType, p ResultPayload) (datatypes.JSON, error) {
	if p == nil {
		return nil, fmt.Errorf("nil result for action type %q", t)
	}
	if p.ActionType() != t {
		return nil, fmt.Errorf("result variant %q does not match action type %q", p.ActionType(), t)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeResult returns the typed result of the action, or nil when no result
// has been committed yet.
func (a *Action) DecodeResult() (ResultPayload, error) {
	if len(a.Result) == 0 || string(a.Result) == "null" {
		return nil, nil
	}
	switch a.Type {
	case ActionTypeCreateContent:
		var r ContentResult
		if err := json.Unmarshal(a.Result, &r); err != nil {
			return nil, err
		}
		return r, nil
	case ActionTypeReviewContent:
		var r ReviewResult
		if err := json.Unmarshal(a.Result, &r); err != nil {
			return nil, err
		}
		return r, nil
	case ActionTypePlanContent:
		var r PlanResult
		if err := json.Unmarshal(a.Result, &r); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown action type %q", a.Type)
}

// CreateContentDetails records the request parameters of a CREATE_CONTENT generation.
type CreateContentDetails struct {
	PersonaID   string `json:"personaId,omitempty"`
	ThemeID     string `json:"themeId,omitempty"`
	Platform    string `json:"platform"`
	Objective   string `json:"objective,omitempty"`
	Description string `json:"description,omitempty"`
	Tone        string `json:"tone,omitempty"`
}

type ReviewContentDetails struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt,omitempty"`
}

type PlanContentDetails struct {
	Platform string   `json:"platform"`
	Quantity int      `json:"quantity"`
	Period   string   `json:"period,omitempty"`
	ThemeIDs []string `json:"themeIds,omitempty"`
}

// DecodeDetails strictly decodes raw details into the variant of t.
// Unknown fields are rejected so that a payload meant for another type fails.
func DecodeDetails(t ActionType, raw json.RawMessage) (interface{}, error) {
	var target interface{}
	switch t {
	case ActionTypeCreateContent:
		target = &CreateContentDetails{}
	case ActionTypeReviewContent:
		target = &ReviewContentDetails{}
	case ActionTypePlanContent:
		target = &PlanContentDetails{}
	default:
		return nil, fmt.Errorf("unknown action type %q", t)
	}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := strictUnmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("details for %s: %w", t, err)
	}
	return target, nil
}
