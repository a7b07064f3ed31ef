package persistence

import (
	"context"
	"time"

	"content-platform/domain/model"
	"content-platform/domain/repository"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) repository.IOutbox {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, evt *model.OutboxEvent) error {
	if evt.Status == "" {
		evt.Status = model.OutboxStatusPending
	}
	return r.db.WithContext(ctx).Create(evt).Error
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *OutboxRepository) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ? AND status = ?", id, model.OutboxStatusPending).
		Updates(map[string]interface{}{
			"status":        model.OutboxStatusDispatched,
			"dispatched_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrEventNotPending
	}
	return nil
}

// MarkFailed runs two statements; MySQL and Postgres disagree on whether a
// SET expression sees earlier assignments of the same UPDATE.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, errMsg string, maxAttempts int) error {
	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + ?", 1),
			"last_error": errMsg,
		}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ? AND status = ? AND attempts >= ?", id, model.OutboxStatusPending, maxAttempts).
		Update("status", model.OutboxStatusFailed).Error
}
