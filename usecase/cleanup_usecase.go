package usecase

import (
	"context"
	"time"

	"content-platform/domain/apperror"
	"content-platform/domain/repository"
	"content-platform/infrastructure/logger"
	"content-platform/infrastructure/utils"
)

type ICleanupUsecase interface {
	// CleanupExpiredTemporaryContent deletes every staged candidate past its
	// expiry and returns how many rows went away. Safe to run repeatedly.
	CleanupExpiredTemporaryContent(ctx context.Context) (int64, error)
}

type cleanupUsecase struct {
	temporaryContents repository.ITemporaryContent
	now               func() time.Time
}

func NewCleanupUsecase(temporaryContents repository.ITemporaryContent) ICleanupUsecase {
	return &cleanupUsecase{temporaryContents: temporaryContents, now: utils.GetCurrentTime}
}

func (u *cleanupUsecase) CleanupExpiredTemporaryContent(ctx context.Context) (int64, error) {
	deleted, err := u.temporaryContents.DeleteExpired(ctx, u.now())
	if err != nil {
		return 0, apperror.Internal(err, "delete expired temporary content")
	}
	logger.GetLogger().WithField("deleted", deleted).Info("Expired temporary content removed")
	return deleted, nil
}
