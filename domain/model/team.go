package model

import "time"

// Team is the tenant boundary. ContentCount is a denormalized counter of
// approved content maintained by the outbox dispatcher.
type Team struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"not null"`
	Plan         string    `json:"plan" gorm:"type:varchar(32);default:'free'"`
	ContentLimit int64     `json:"contentLimit" gorm:"not null;default:0"`
	ContentCount int64     `json:"contentCount" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Members []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`
}

func (Team) TableName() string { return "teams" }

// LimitReached reports whether the plan limit blocks another content. A zero
// limit means unlimited. Only approved content counts; open drafts do not.
func (t *Team) LimitReached() bool {
	return t.ContentLimit > 0 && t.ContentCount >= t.ContentLimit
}

type TeamMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TeamID    string    `json:"teamId" gorm:"type:varchar(36);not null;uniqueIndex:ux_team_members_team_user"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:ux_team_members_team_user"`
	Role      string    `json:"role" gorm:"type:varchar(16);default:'member'"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (TeamMember) TableName() string { return "team_members" }

type TeamUsage struct {
	TeamID       string `json:"teamId"`
	ContentCount int64  `json:"contentCount"`
	ContentLimit int64  `json:"contentLimit"`
	Cached       bool   `json:"cached"`
}
