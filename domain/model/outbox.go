package model

import (
	"time"

	"gorm.io/datatypes"
)

const EventContentApproved = "ContentApproved"

const (
	OutboxStatusPending    = "pending"
	OutboxStatusDispatched = "dispatched"
	OutboxStatusFailed     = "failed"
)

// OutboxEvent is written in the same transaction as the state change it
// announces and dispatched later.
type OutboxEvent struct {
	ID           string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Type         string         `json:"type" gorm:"type:varchar(64);not null"`
	AggregateID  string         `json:"aggregateId" gorm:"type:varchar(36);not null;index"`
	TeamID       string         `json:"teamId" gorm:"type:varchar(36);not null"`
	Payload      datatypes.JSON `json:"payload"`
	Status       string         `json:"status" gorm:"type:varchar(16);not null;index:idx_outbox_events_status_created"`
	Attempts     int            `json:"attempts" gorm:"not null;default:0"`
	LastError    *string        `json:"lastError,omitempty" gorm:"type:text"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index:idx_outbox_events_status_created"`
	DispatchedAt *time.Time     `json:"dispatchedAt,omitempty"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

// ContentApproved is the payload of an EventContentApproved event.
type ContentApproved struct {
	ActionID   string     `json:"actionId"`
	TeamID     string     `json:"teamId"`
	UserID     string     `json:"userId"`
	BrandID    string     `json:"brandId"`
	Type       ActionType `json:"type"`
	ApprovedAt time.Time  `json:"approvedAt"`
}
