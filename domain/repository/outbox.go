package repository

import (
	"context"
	"errors"
	"time"

	"content-platform/domain/model"
)

// ErrEventNotPending is returned by MarkDispatched when another dispatcher
// already handled the event.
var ErrEventNotPending = errors.New("outbox event is no longer pending")

type IOutbox interface {
	Enqueue(ctx context.Context, evt *model.OutboxEvent) error
	FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkDispatched(ctx context.Context, id string, at time.Time) error
	// MarkFailed records a failed attempt; the event turns failed once attempts reach maxAttempts.
	MarkFailed(ctx context.Context, id string, errMsg string, maxAttempts int) error
}

// IEventSink receives dispatched outbox events (message brokers, audit stores).
type IEventSink interface {
	Name() string
	Publish(ctx context.Context, evt *model.OutboxEvent) error
}
