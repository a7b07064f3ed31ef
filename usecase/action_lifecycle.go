package usecase

import (
	"context"
	"encoding/json"
	"time"

	"content-platform/domain/apperror"
	"content-platform/domain/model"
	"content-platform/domain/repository"
	"content-platform/infrastructure/utils"

	"gorm.io/datatypes"
)

type ApproveInput struct {
	ActionID           string
	TemporaryContentID string
	RequesterUserID    string
}

type RevisionInput struct {
	ActionID        string
	RequesterUserID string
	NewImageURL     *string
	NewTitle        *string
	NewBody         *string
	NewHashtags     []string
}

// ApproveGeneratedContent commits the candidate staged in a TemporaryContent
// as the final result of the action. It runs entirely on store, which the
// caller binds to an open transaction. Approving an approved action returns
// it unchanged.
func ApproveGeneratedContent(ctx context.Context, store repository.IStore, in ApproveInput, now time.Time, grace time.Duration) (*model.Action, error) {
	action, err := loadAction(ctx, store, in.ActionID)
	if err != nil {
		return nil, err
	}
	if action.Approved {
		return action, nil
	}
	if err := authorize(ctx, store, action, in.RequesterUserID); err != nil {
		return nil, err
	}

	tc, err := store.TemporaryContents().FindByID(ctx, in.TemporaryContentID)
	if err != nil {
		return nil, apperror.Internal(err, "load temporary content")
	}
	if tc == nil {
		return nil, apperror.NotFound("temporary content %s not found", in.TemporaryContentID)
	}
	if !tc.BelongsTo(action.ID) {
		return nil, apperror.Conflict("temporary content %s does not belong to action %s", tc.ID, action.ID)
	}

	payload, err := model.ResultFromCandidate(action.Type, tc.Candidate())
	if err != nil {
		return nil, apperror.Internal(err, "shape result")
	}
	result, err := model.EncodeResult(action.Type, payload)
	if err != nil {
		return nil, apperror.Internal(err, "encode result")
	}

	applied, err := store.Actions().MarkApproved(ctx, action.ID, result)
	if err != nil {
		return nil, apperror.Internal(err, "approve action")
	}
	if !applied {
		// A concurrent approval committed first.
		return loadAction(ctx, store, action.ID)
	}

	if err := store.TemporaryContents().ExpireBy(ctx, tc.ID, now.Add(grace)); err != nil {
		return nil, apperror.Internal(err, "shorten temporary content expiry")
	}
	if err := enqueueContentApproved(ctx, store, action, now); err != nil {
		return nil, err
	}

	return loadAction(ctx, store, action.ID)
}

// RequestNewGeneration replaces the staged candidate of an action with a new
// one and puts the action back in review. Approval is left as it was.
func RequestNewGeneration(ctx context.Context, store repository.IStore, in RevisionInput, now time.Time, ttl time.Duration) (*model.Action, *model.TemporaryContent, error) {
	action, err := loadAction(ctx, store, in.ActionID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(ctx, store, action, in.RequesterUserID); err != nil {
		return nil, nil, err
	}

	if _, err := store.TemporaryContents().DeleteByAction(ctx, action.ID); err != nil {
		return nil, nil, apperror.Internal(err, "delete previous temporary content")
	}

	hashtags := in.NewHashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	actionID := action.ID
	tc := &model.TemporaryContent{
		ID:        utils.NewID(),
		ActionID:  &actionID,
		UserID:    action.UserID,
		TeamID:    action.TeamID,
		ImageURL:  valueOrEmpty(in.NewImageURL),
		Title:     valueOrEmpty(in.NewTitle),
		Body:      valueOrEmpty(in.NewBody),
		Hashtags:  datatypes.JSONSlice[string](hashtags),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := store.TemporaryContents().Create(ctx, tc); err != nil {
		return nil, nil, apperror.Internal(err, "create temporary content")
	}

	if err := store.Actions().MarkInReview(ctx, action.ID); err != nil {
		return nil, nil, apperror.Internal(err, "mark action in review")
	}

	action, err = loadAction(ctx, store, action.ID)
	if err != nil {
		return nil, nil, err
	}
	return action, tc, nil
}

func loadAction(ctx context.Context, store repository.IStore, id string) (*model.Action, error) {
	action, err := store.Actions().FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "load action")
	}
	if action == nil {
		return nil, apperror.NotFound("action %s not found", id)
	}
	return action, nil
}

// authorize lets the creator through; anyone else must be a member of the
// action's team. An empty requester skips the check.
func authorize(ctx context.Context, store repository.IStore, action *model.Action, requesterUserID string) error {
	if requesterUserID == "" || requesterUserID == action.UserID {
		return nil
	}
	return requireMember(ctx, store, action.TeamID, requesterUserID)
}

func requireMember(ctx context.Context, store repository.IStore, teamID, userID string) error {
	member, err := store.Teams().IsMember(ctx, teamID, userID)
	if err != nil {
		return apperror.Internal(err, "check team membership")
	}
	if !member {
		return apperror.Forbidden("user %s is not a member of team %s", userID, teamID)
	}
	return nil
}

func enqueueContentApproved(ctx context.Context, store repository.IStore, action *model.Action, now time.Time) error {
	payload, err := json.Marshal(model.ContentApproved{
		ActionID:   action.ID,
		TeamID:     action.TeamID,
		UserID:     action.UserID,
		BrandID:    action.BrandID,
		Type:       action.Type,
		ApprovedAt: now,
	})
	if err != nil {
		return apperror.Internal(err, "encode outbox payload")
	}
	evt := &model.OutboxEvent{
		ID:          utils.NewID(),
		Type:        model.EventContentApproved,
		AggregateID: action.ID,
		TeamID:      action.TeamID,
		Payload:     datatypes.JSON(payload),
		Status:      model.OutboxStatusPending,
		CreatedAt:   now,
	}
	if err := store.Outbox().Enqueue(ctx, evt); err != nil {
		return apperror.Internal(err, "enqueue outbox event")
	}
	return nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
