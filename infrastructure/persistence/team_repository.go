package persistence

import (
	"context"
	"errors"

	"content-platform/domain/model"
	"content-platform/domain/repository"

	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) repository.ITeam {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TeamRepository) IncrementContentCount(ctx context.Context, teamID string, delta int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Team{}).
		Where("id = ?", teamID).
		Update("content_count", gorm.Expr("content_count + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Team{}).
		Where("id = ?", teamID).
		Select("content_count").
		Scan(&count).Error
	return count, err
}
