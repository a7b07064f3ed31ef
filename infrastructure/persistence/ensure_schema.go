package persistence

import (
	"fmt"

	"content-platform/domain/model"
	"content-platform/infrastructure/logger"

	"gorm.io/gorm"
)

// EnsureLifecycleSchema creates or extends the lifecycle tables. Safe to call
// at startup.
func EnsureLifecycleSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Team{},
		&model.TeamMember{},
		&model.Action{},
		&model.TemporaryContent{},
		&model.OutboxEvent{},
	); err != nil {
		return fmt.Errorf("migrate lifecycle schema: %w", err)
	}
	logger.GetLogger().Info("Lifecycle schema ensured")
	return nil
}
