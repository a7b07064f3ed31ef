package worker_test

import (
	"context"
	"errors"
	"testing"

	"content-platform/infrastructure/worker"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCleanupUsecase struct {
	mock.Mock
}

func (m *MockCleanupUsecase) CleanupExpiredTemporaryContent(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewCleanupTask(t *testing.T) {
	task := worker.NewCleanupTask()
	assert.Equal(t, worker.TaskCleanupTemporaryContent, task.Type())
	assert.Empty(t, task.Payload())
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task.Type())
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func TestEnqueueCleanup(t *testing.T) {
	t.Run("enqueued", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything, worker.TaskCleanupTemporaryContent).
			Return(&asynq.TaskInfo{ID: "t1", Queue: "default"}, nil).Once()
		require.NoError(t, worker.EnqueueCleanup(context.Background(), client))
		client.AssertExpectations(t)
	})

	t.Run("duplicate_is_not_an_error", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything, worker.TaskCleanupTemporaryContent).
			Return(nil, asynq.ErrDuplicateTask).Once()
		require.NoError(t, worker.EnqueueCleanup(context.Background(), client))
	})

	t.Run("redis_failure", func(t *testing.T) {
		client := new(MockEnqueuer)
		client.On("EnqueueContext", mock.Anything, worker.TaskCleanupTemporaryContent).
			Return(nil, errors.New("dial tcp: connection refused")).Once()
		require.Error(t, worker.EnqueueCleanup(context.Background(), client))
	})
}

func TestHandleCleanup(t *testing.T) {
	cleanup := new(MockCleanupUsecase)
	cleanup.On("CleanupExpiredTemporaryContent", mock.Anything).Return(int64(4), nil).Once()

	err := worker.HandleCleanup(cleanup)(context.Background(), worker.NewCleanupTask())
	require.NoError(t, err)
	cleanup.AssertExpectations(t)
}

func TestHandleCleanup_ErrorIsRetried(t *testing.T) {
	cleanup := new(MockCleanupUsecase)
	boom := errors.New("db gone")
	cleanup.On("CleanupExpiredTemporaryContent", mock.Anything).Return(int64(0), boom)

	err := worker.HandleCleanup(cleanup)(context.Background(), worker.NewCleanupTask())
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestServeMuxRoutesCleanup(t *testing.T) {
	cleanup := new(MockCleanupUsecase)
	cleanup.On("CleanupExpiredTemporaryContent", mock.Anything).Return(int64(0), nil).Once()

	mux := worker.NewServeMux(cleanup)
	require.NoError(t, mux.ProcessTask(context.Background(), worker.NewCleanupTask()))
	cleanup.AssertExpectations(t)
}
