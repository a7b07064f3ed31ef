package persistence

import (
	"context"
	"fmt"
	"time"

	"content-platform/domain/repository"

	"gorm.io/gorm"
)

// Store binds every lifecycle repository to one gorm handle.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Actions() repository.IAction { return NewActionRepository(s.db) }

func (s *Store) TemporaryContents() repository.ITemporaryContent {
	return NewTemporaryContentRepository(s.db)
}

func (s *Store) Teams() repository.ITeam { return NewTeamRepository(s.db) }

func (s *Store) Outbox() repository.IOutbox { return NewOutboxRepository(s.db) }

var _ repository.IStore = (*Store)(nil)

// GormTransactor opens one transaction per unit of work. Acquiring the
// connection is bounded by maxWait and the whole unit by timeout. Nothing is
// retried.
type GormTransactor struct {
	db      *gorm.DB
	maxWait time.Duration
	timeout time.Duration
}

func NewGormTransactor(db *gorm.DB, maxWait, timeout time.Duration) *GormTransactor {
	return &GormTransactor{db: db, maxWait: maxWait, timeout: timeout}
}

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, store repository.IStore) error) error {
	sqlDB, err := t.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, t.maxWait)
	conn, err := sqlDB.Conn(waitCtx)
	cancelWait()
	if err != nil {
		return fmt.Errorf("acquire connection within %s: %w", t.maxWait, err)
	}
	defer conn.Close()

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	session := t.db.WithContext(runCtx)
	session.Statement.ConnPool = conn
	return session.Transaction(func(tx *gorm.DB) error {
		return fn(runCtx, NewStore(tx))
	})
}

var _ repository.ITransactor = (*GormTransactor)(nil)
