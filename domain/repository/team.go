package repository

import (
	"context"

	"content-platform/domain/model"
)

// ITeam is the team/user directory used for authorization and plan usage.
type ITeam interface {
	FindByID(ctx context.Context, id string) (*model.Team, error)
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
	// IncrementContentCount adds delta to the denormalized counter and returns the new value.
	IncrementContentCount(ctx context.Context, teamID string, delta int64) (int64, error)
}

// IContentCounterCache mirrors teams.content_count for cheap plan-limit display.
type IContentCounterCache interface {
	Set(ctx context.Context, teamID string, count int64) error
	Get(ctx context.Context, teamID string) (int64, bool, error)
}
