package persistence

import (
	"context"
	"errors"

	"content-platform/domain/model"
	"content-platform/domain/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) repository.IAction {
	return &ActionRepository{db: db}
}

func (r *ActionRepository) Create(ctx context.Context, action *model.Action) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *ActionRepository) FindByID(ctx context.Context, id string) (*model.Action, error) {
	var action model.Action
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *ActionRepository) ListByTeam(ctx context.Context, teamID string, limit, offset int) ([]model.Action, int64, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Action{}).Where("team_id = ?", teamID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var actions []model.Action
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&actions).Error
	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

// MarkApproved is a compare-and-set on approved: the WHERE clause makes a
// concurrent second approval affect zero rows.
func (r *ActionRepository) MarkApproved(ctx context.Context, id string, result datatypes.JSON) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Action{}).
		Where("id = ? AND approved = ?", id, false).
		Updates(map[string]interface{}{
			"approved": true,
			"status":   model.ActionStatusApproved,
			"result":   result,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ActionRepository) MarkInReview(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Action{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    model.ActionStatusInReview,
			"revisions": gorm.Expr("revisions + ?", 1),
		}).Error
}

func (r *ActionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Action{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *ActionRepository) UpdateStatusAndResult(ctx context.Context, id, status string, result datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&model.Action{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "result": result}).Error
}
