package model

import (
	"bytes"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Candidate holds a generated result that has not been committed to an Action.
type Candidate struct {
	ImageURL string   `json:"imageUrl"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Hashtags []string `json:"hashtags"`
}

// TemporaryContent is a disposable staging row for a Candidate. It is never
// authoritative; ExpiresAt bounds its lifetime.
type TemporaryContent struct {
	ID        string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ActionID  *string                     `json:"actionId" gorm:"type:varchar(36);index"`
	UserID    string                      `json:"userId" gorm:"type:varchar(36);not null;index:idx_temporary_contents_owner"`
	TeamID    string                      `json:"teamId" gorm:"type:varchar(36);not null;index:idx_temporary_contents_owner"`
	ImageURL  string                      `json:"imageUrl" gorm:"type:text"`
	Title     string                      `json:"title" gorm:"type:text"`
	Body      string                      `json:"body" gorm:"type:text"`
	Hashtags  datatypes.JSONSlice[string] `json:"hashtags"`
	ExpiresAt time.Time                   `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time                   `json:"createdAt" gorm:"autoCreateTime"`
}

func (TemporaryContent) TableName() string { return "temporary_contents" }

func (t *TemporaryContent) Candidate() Candidate {
	return Candidate{
		ImageURL: t.ImageURL,
		Title:    t.Title,
		Body:     t.Body,
		Hashtags: []string(t.Hashtags),
	}
}

// BelongsTo reports whether the row stages content for the given action.
func (t *TemporaryContent) BelongsTo(actionID string) bool {
	return t.ActionID != nil && *t.ActionID == actionID
}

func (t *TemporaryContent) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func strictUnmarshal(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
