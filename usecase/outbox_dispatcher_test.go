package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"content-platform/domain/model"
	"content-platform/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventSink struct {
	mock.Mock
}

func (m *MockEventSink) Name() string {
	return "mock"
}

func (m *MockEventSink) Publish(ctx context.Context, evt *model.OutboxEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func pendingEvent(s *memoryStore, id string) {
	s.outbox[id] = model.OutboxEvent{
		ID:          id,
		Type:        model.EventContentApproved,
		AggregateID: "a1",
		TeamID:      "team-1",
		Status:      model.OutboxStatusPending,
		CreatedAt:   now,
	}
}

func TestOutboxDispatcher_DispatchesAndCounts(t *testing.T) {
	s := newMemoryStore()
	s.teams["team-1"] = model.Team{ID: "team-1", ContentCount: 2}
	pendingEvent(s, "evt-1")

	sink := new(MockEventSink)
	sink.On("Publish", mock.Anything, mock.MatchedBy(func(e *model.OutboxEvent) bool { return e.ID == "evt-1" })).Return(nil).Once()
	counter := new(MockCounterCache)
	counter.On("Set", mock.Anything, "team-1", int64(3)).Return(nil).Once()

	d := usecase.NewOutboxDispatcher(s, s, counter, 3, sink)
	n, err := d.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.OutboxStatusDispatched, s.outbox["evt-1"].Status)
	assert.NotNil(t, s.outbox["evt-1"].DispatchedAt)
	assert.Equal(t, int64(3), s.teams["team-1"].ContentCount)

	// Nothing left: the counter is not applied twice.
	n, err = d.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(3), s.teams["team-1"].ContentCount)

	sink.AssertExpectations(t)
	counter.AssertExpectations(t)
}

func TestOutboxDispatcher_SinkFailureLeavesCounter(t *testing.T) {
	s := newMemoryStore()
	s.teams["team-1"] = model.Team{ID: "team-1", ContentCount: 2}
	pendingEvent(s, "evt-1")

	sink := new(MockEventSink)
	sink.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	counter := new(MockCounterCache)

	d := usecase.NewOutboxDispatcher(s, s, counter, 2, sink)

	n, err := d.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	evt := s.outbox["evt-1"]
	assert.Equal(t, model.OutboxStatusPending, evt.Status)
	assert.Equal(t, 1, evt.Attempts)
	require.NotNil(t, evt.LastError)
	assert.Contains(t, *evt.LastError, "broker down")

	_, err = d.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, model.OutboxStatusFailed, s.outbox["evt-1"].Status)
	assert.Equal(t, int64(2), s.teams["team-1"].ContentCount)
	counter.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutboxDispatcher_CacheFailureIsNotFatal(t *testing.T) {
	s := newMemoryStore()
	s.teams["team-1"] = model.Team{ID: "team-1"}
	pendingEvent(s, "evt-1")

	counter := new(MockCounterCache)
	counter.On("Set", mock.Anything, "team-1", int64(1)).Return(errors.New("redis down"))

	d := usecase.NewOutboxDispatcher(s, s, counter, 3)
	n, err := d.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.OutboxStatusDispatched, s.outbox["evt-1"].Status)
}

func TestOutboxDispatcher_RunStopsWithContext(t *testing.T) {
	s := newMemoryStore()
	d := usecase.NewOutboxDispatcher(s, s, new(MockCounterCache), 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, 10*time.Millisecond, 10) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
