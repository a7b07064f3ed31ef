package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-platform/infrastructure/logger"
	"content-platform/usecase"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// TaskCleanupTemporaryContent is enqueued by an external scheduler; this
// process only executes it.
const TaskCleanupTemporaryContent = "temporary_content:cleanup"

// asynqLoggerAdapter routes asynq's own logs through logrus.
type asynqLoggerAdapter struct {
	entry *log.Entry
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) { a.entry.Debug(fmt.Sprint(args...)) }
func (a *asynqLoggerAdapter) Info(args ...interface{})  { a.entry.Info(fmt.Sprint(args...)) }
func (a *asynqLoggerAdapter) Warn(args ...interface{})  { a.entry.Warn(fmt.Sprint(args...)) }
func (a *asynqLoggerAdapter) Error(args ...interface{}) { a.entry.Error(fmt.Sprint(args...)) }

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.entry.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// NewCleanupTask builds the task an external scheduler enqueues.
func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(
		TaskCleanupTemporaryContent,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(time.Hour),
	)
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueCleanup submits one cleanup task. A task still held by the
// uniqueness lock counts as already scheduled.
func EnqueueCleanup(ctx context.Context, client Enqueuer) error {
	info, err := client.EnqueueContext(ctx, NewCleanupTask())
	if errors.Is(err, asynq.ErrDuplicateTask) {
		logger.GetLogger().Info("Cleanup task already scheduled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue cleanup task: %w", err)
	}
	logger.GetLogger().WithField("id", info.ID).WithField("queue", info.Queue).Info("Cleanup task enqueued")
	return nil
}

// HandleCleanup runs the expired temporary content cleanup for one task.
func HandleCleanup(cleanup usecase.ICleanupUsecase) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		deleted, err := cleanup.CleanupExpiredTemporaryContent(ctx)
		if err != nil {
			return fmt.Errorf("cleanup temporary content: %w", err)
		}
		logger.GetLogger().
			WithField("task", task.Type()).
			WithField("deleted", deleted).
			Info("Cleanup task completed")
		return nil
	}
}

func NewServeMux(cleanup usecase.ICleanupUsecase) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskCleanupTemporaryContent, HandleCleanup(cleanup))
	return mux
}

func NewServer(redisOpt asynq.RedisClientOpt, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 1
	}
	entry := logger.Base().WithField("component", "asynq")
	return asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     concurrency,
			ShutdownTimeout: 30 * time.Second,
			Logger:          &asynqLoggerAdapter{entry: entry},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.GetLogger().
					WithField("task", task.Type()).
					WithField("retried", retried).
					WithField("maxRetry", maxRetry).
					WithField("error", err).
					Error("Task execution failed")
			}),
		},
	)
}

// Run starts the worker and blocks until ctx is done, then shuts it down.
func Run(ctx context.Context, srv *asynq.Server, mux *asynq.ServeMux) error {
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	logger.GetLogger().Info("Worker started")
	<-ctx.Done()
	srv.Shutdown()
	logger.GetLogger().Info("Worker stopped")
	return nil
}
