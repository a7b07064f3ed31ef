package persistence

import (
	"context"
	"errors"
	"time"

	"content-platform/domain/model"
	"content-platform/domain/repository"

	"gorm.io/gorm"
)

type TemporaryContentRepository struct {
	db *gorm.DB
}

func NewTemporaryContentRepository(db *gorm.DB) repository.ITemporaryContent {
	return &TemporaryContentRepository{db: db}
}

func (r *TemporaryContentRepository) Create(ctx context.Context, tc *model.TemporaryContent) error {
	return r.db.WithContext(ctx).Create(tc).Error
}

func (r *TemporaryContentRepository) FindByID(ctx context.Context, id string) (*model.TemporaryContent, error) {
	var tc model.TemporaryContent
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&tc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

func (r *TemporaryContentRepository) DeleteByAction(ctx context.Context, actionID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("action_id = ?", actionID).Delete(&model.TemporaryContent{})
	return res.RowsAffected, res.Error
}

func (r *TemporaryContentRepository) DeleteUnattachedByOwner(ctx context.Context, userID, teamID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ? AND action_id IS NULL", userID, teamID).
		Delete(&model.TemporaryContent{})
	return res.RowsAffected, res.Error
}

func (r *TemporaryContentRepository) ExpireBy(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.TemporaryContent{}).
		Where("id = ? AND expires_at > ?", id, at).
		Update("expires_at", at).Error
}

func (r *TemporaryContentRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.TemporaryContent{})
	return res.RowsAffected, res.Error
}
