package repository

import (
	"context"
	"time"

	"content-platform/domain/model"

	"gorm.io/datatypes"
)

// IAction persists Actions. Lookups return (nil, nil) when the row is missing.
type IAction interface {
	Create(ctx context.Context, action *model.Action) error
	FindByID(ctx context.Context, id string) (*model.Action, error)
	ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]model.Action, int64, error)
	// MarkApproved commits result and flips approved only if the action is not
	// approved yet. It reports whether this call performed the transition.
	MarkApproved(ctx context.Context, id string, result datatypes.JSON) (bool, error)
	// MarkInReview sets the in-review status and increments revisions in the database.
	MarkInReview(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateStatusAndResult(ctx context.Context, id, status string, result datatypes.JSON) error
}

// ITemporaryContent persists staged candidates.
type ITemporaryContent interface {
	Create(ctx context.Context, tc *model.TemporaryContent) error
	FindByID(ctx context.Context, id string) (*model.TemporaryContent, error)
	DeleteByAction(ctx context.Context, actionID string) (int64, error)
	// DeleteUnattachedByOwner removes the quick-create rows (no action) of a user in a team.
	DeleteUnattachedByOwner(ctx context.Context, userID, teamID string) (int64, error)
	// ExpireBy moves expires_at earlier to at; a row already expiring sooner is left alone.
	ExpireBy(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
