package usecase

import (
	"context"
	"encoding/json"
	"time"

	"content-platform/domain/apperror"
	"content-platform/domain/dto"
	"content-platform/domain/model"
	"content-platform/domain/repository"
	"content-platform/infrastructure/logger"
	"content-platform/infrastructure/utils"

	"gorm.io/datatypes"
)

// IActionBroadcaster is notified after a lifecycle change has committed.
type IActionBroadcaster interface {
	BroadcastActionStatus(action *model.Action)
}

type IActionUsecase interface {
	CreateAction(ctx context.Context, userID string, req dto.CreateActionRequest) (*dto.ActionWithCandidate, error)
	GetAction(ctx context.Context, userID, actionID string) (*model.Action, error)
	ListTeamActions(ctx context.Context, userID, teamID string, limit, offset int) (*dto.ActionList, error)
	Approve(ctx context.Context, in ApproveInput) (*model.Action, error)
	RequestNewGeneration(ctx context.Context, in RevisionInput) (*dto.ActionWithCandidate, error)
	StartImageEdit(ctx context.Context, userID, actionID string) (*model.Action, error)
	CompleteImageEdit(ctx context.Context, userID, actionID, imageURL string) (*model.Action, error)
	StageQuickContent(ctx context.Context, userID string, req dto.StageQuickContentRequest) (*model.TemporaryContent, error)
	GetTemporaryContent(ctx context.Context, userID, id string) (*model.TemporaryContent, error)
	GetTeamUsage(ctx context.Context, userID, teamID string) (*model.TeamUsage, error)
}

type actionUsecase struct {
	store       repository.IStore
	transactor  repository.ITransactor
	counter     repository.IContentCounterCache
	ttl         time.Duration
	grace       time.Duration
	broadcaster IActionBroadcaster
	now         func() time.Time
}

type ActionOption func(*actionUsecase)

func WithBroadcaster(b IActionBroadcaster) ActionOption {
	return func(u *actionUsecase) { u.broadcaster = b }
}

func WithClock(now func() time.Time) ActionOption {
	return func(u *actionUsecase) { u.now = now }
}

// NewActionUsecase wires the lifecycle. store serves reads outside a
// transaction; every write goes through transactor. ttl is the lifetime of a
// staged candidate and grace the expiry left to it once approved.
func NewActionUsecase(
	store repository.IStore,
	transactor repository.ITransactor,
	counter repository.IContentCounterCache,
	ttl, grace time.Duration,
	opts ...ActionOption,
) IActionUsecase {
	u := &actionUsecase{
		store:      store,
		transactor: transactor,
		counter:    counter,
		ttl:        ttl,
		grace:      grace,
		now:        utils.GetCurrentTime,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *actionUsecase) CreateAction(ctx context.Context, userID string, req dto.CreateActionRequest) (*dto.ActionWithCandidate, error) {
	actionType := model.ActionType(req.Type)
	if !actionType.Valid() {
		return nil, apperror.Validation("unknown action type %q", req.Type)
	}
	details, err := model.DecodeDetails(actionType, req.Details)
	if err != nil {
		return nil, apperror.Validation("invalid details: %v", err)
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, apperror.Internal(err, "encode details")
	}

	now := u.now()
	hashtags := req.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	var out dto.ActionWithCandidate
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context, store repository.IStore) error {
		team, err := store.Teams().FindByID(ctx, req.TeamID)
		if err != nil {
			return apperror.Internal(err, "load team")
		}
		if team == nil {
			return apperror.NotFound("team %s not found", req.TeamID)
		}
		if err := requireMember(ctx, store, team.ID, userID); err != nil {
			return err
		}
		if team.LimitReached() {
			return apperror.Conflict("plan limit reached")
		}

		action := &model.Action{
			ID:        utils.NewID(),
			TeamID:    team.ID,
			UserID:    userID,
			BrandID:   req.BrandID,
			Type:      actionType,
			Status:    model.ActionStatusInReview,
			Details:   datatypes.JSON(detailsJSON),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.Actions().Create(ctx, action); err != nil {
			return apperror.Internal(err, "create action")
		}

		actionID := action.ID
		tc := &model.TemporaryContent{
			ID:        utils.NewID(),
			ActionID:  &actionID,
			UserID:    userID,
			TeamID:    team.ID,
			ImageURL:  req.ImageURL,
			Title:     req.Title,
			Body:      req.Body,
			Hashtags:  datatypes.JSONSlice[string](hashtags),
			ExpiresAt: now.Add(u.ttl),
			CreatedAt: now,
		}
		if err := store.TemporaryContents().Create(ctx, tc); err != nil {
			return apperror.Internal(err, "create temporary content")
		}
		out = dto.ActionWithCandidate{Action: action, TemporaryContent: tc}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().
		WithField("actionId", out.Action.ID).
		WithField("teamId", out.Action.TeamID).
		WithField("type", out.Action.Type).
		Info("Action created")
	return &out, nil
}

func (u *actionUsecase) GetAction(ctx context.Context, userID, actionID string) (*model.Action, error) {
	action, err := loadAction(ctx, u.store, actionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, u.store, action, userID); err != nil {
		return nil, err
	}
	return action, nil
}

func (u *actionUsecase) ListTeamActions(ctx context.Context, userID, teamID string, limit, offset int) (*dto.ActionList, error) {
	if err := requireMember(ctx, u.store, teamID, userID); err != nil {
		return nil, err
	}
	actions, total, err := u.store.Actions().ListByTeam(ctx, teamID, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err, "list actions")
	}
	if actions == nil {
		actions = []model.Action{}
	}
	return &dto.ActionList{Data: actions, Total: total}, nil
}

func (u *actionUsecase) Approve(ctx context.Context, in ApproveInput) (*model.Action, error) {
	var action *model.Action
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context, store repository.IStore) error {
		var err error
		action, err = ApproveGeneratedContent(ctx, store, in, u.now(), u.grace)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().
		WithField("actionId", action.ID).
		WithField("temporaryContentId", in.TemporaryContentID).
		Info("Action approved")
	u.broadcast(action)
	return action, nil
}

func (u *actionUsecase) RequestNewGeneration(ctx context.Context, in RevisionInput) (*dto.ActionWithCandidate, error) {
	var out dto.ActionWithCandidate
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context, store repository.IStore) error {
		action, tc, err := RequestNewGeneration(ctx, store, in, u.now(), u.ttl)
		if err != nil {
			return err
		}
		out = dto.ActionWithCandidate{Action: action, TemporaryContent: tc}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().
		WithField("actionId", out.Action.ID).
		WithField("revisions", out.Action.Revisions).
		Info("New generation requested")
	u.broadcast(out.Action)
	return &out, nil
}

func (u *actionUsecase) StartImageEdit(ctx context.Context, userID, actionID string) (*model.Action, error) {
	var action *model.Action
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context, store repository.IStore) error {
		current, err := loadEditableAction(ctx, store, userID, actionID)
		if err != nil {
			return err
		}
		if err := store.Actions().UpdateStatus(ctx, current.ID, model.ActionStatusProcessing); err != nil {
			return apperror.Internal(err, "update action status")
		}
		action, err = loadAction(ctx, store, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.broadcast(action)
	return action, nil
}

func (u *actionUsecase) CompleteImageEdit(ctx context.Context, userID, actionID, imageURL string) (*model.Action, error) {
	if imageURL == "" {
		return nil, apperror.Validation("imageUrl is required")
	}
	var action *model.Action
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context, store repository.IStore) error {
		current, err := loadEditableAction(ctx, store, userID, actionID)
		if err != nil {
			return err
		}
		if current.Status != model.ActionStatusProcessing {
			return apperror.Conflict("action %s has no image edit in progress", current.ID)
		}

		decoded, err := current.DecodeResult()
		if err != nil {
			return apperror.Internal(err, "decode result")
		}
		result, _ := decoded.(model.ContentResult)
		if result.Hashtags == nil {
			result.Hashtags = []string{}
		}
		result.ImageURL = imageURL
		encoded, err := model.EncodeResult(current.Type, result)
		if err != nil {
			return apperror.Internal(err, "encode result")
		}

		if err := store.Actions().UpdateStatusAndResult(ctx, current.ID, model.ActionStatusCompleted, encoded); err != nil {
			return apperror.Internal(err, "complete image edit")
		}
		action, err = loadAction(ctx, store, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.broadcast(action)
	return action, nil
}

// loadEditableAction returns a CREATE_CONTENT action the user may edit.
func loadEditableAction(ctx context.Context, store repository.IStore, userID, actionID string) (*model.Action, error) {
	action, err := loadAction(ctx, store, actionID)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, store, action, userID); err != nil {
		return nil, err
	}
	if action.Type != model.ActionTypeCreateContent {
		return nil, apperror.Validation("image edit is only available for %s actions", model.ActionTypeCreateContent)
	}
	return action, nil
}

func (u *actionUsecase) StageQuickContent(ctx context.Context, userID string, req dto.StageQuickContentRequest) (*model.TemporaryContent, error) {
	now := u.now()
	hashtags := req.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	tc := &model.TemporaryContent{
		ID:        utils.NewID(),
		UserID:    userID,
		TeamID:    req.TeamID,
		ImageURL:  req.ImageURL,
		Title:     req.Title,
		Body:      req.Body,
		Hashtags:  datatypes.JSONSlice[string](hashtags),
		ExpiresAt: now.Add(u.ttl),
		CreatedAt: now,
	}
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context, store repository.IStore) error {
		if err := requireMember(ctx, store, req.TeamID, userID); err != nil {
			return err
		}
		if _, err := store.TemporaryContents().DeleteUnattachedByOwner(ctx, userID, req.TeamID); err != nil {
			return apperror.Internal(err, "delete previous quick content")
		}
		if err := store.TemporaryContents().Create(ctx, tc); err != nil {
			return apperror.Internal(err, "create temporary content")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tc, nil
}

func (u *actionUsecase) GetTemporaryContent(ctx context.Context, userID, id string) (*model.TemporaryContent, error) {
	tc, err := u.store.TemporaryContents().FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "load temporary content")
	}
	if tc == nil || tc.Expired(u.now()) {
		return nil, apperror.NotFound("temporary content %s not found", id)
	}
	if tc.UserID != userID {
		if err := requireMember(ctx, u.store, tc.TeamID, userID); err != nil {
			return nil, err
		}
	}
	return tc, nil
}

func (u *actionUsecase) GetTeamUsage(ctx context.Context, userID, teamID string) (*model.TeamUsage, error) {
	team, err := u.store.Teams().FindByID(ctx, teamID)
	if err != nil {
		return nil, apperror.Internal(err, "load team")
	}
	if team == nil {
		return nil, apperror.NotFound("team %s not found", teamID)
	}
	if err := requireMember(ctx, u.store, teamID, userID); err != nil {
		return nil, err
	}

	usage := &model.TeamUsage{TeamID: team.ID, ContentCount: team.ContentCount, ContentLimit: team.ContentLimit}
	count, ok, err := u.counter.Get(ctx, team.ID)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("teamId", team.ID).Warn("Counter cache read failed, using database value")
		return usage, nil
	}
	if ok {
		usage.ContentCount = count
		usage.Cached = true
	}
	return usage, nil
}

func (u *actionUsecase) broadcast(action *model.Action) {
	if u.broadcaster != nil {
		u.broadcaster.BroadcastActionStatus(action)
	}
}
