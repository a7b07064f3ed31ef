package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-platform/domain/model"
	"content-platform/domain/repository"
	"content-platform/infrastructure/logger"
	"content-platform/infrastructure/utils"
)

type IOutboxDispatcher interface {
	// DispatchPending delivers up to batch pending events and returns how many
	// were dispatched.
	DispatchPending(ctx context.Context, batch int) (int, error)
	// Run dispatches every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration, batch int) error
}

type outboxDispatcher struct {
	store       repository.IStore
	transactor  repository.ITransactor
	counter     repository.IContentCounterCache
	sinks       []repository.IEventSink
	maxAttempts int
	now         func() time.Time
}

func NewOutboxDispatcher(
	store repository.IStore,
	transactor repository.ITransactor,
	counter repository.IContentCounterCache,
	maxAttempts int,
	sinks ...repository.IEventSink,
) IOutboxDispatcher {
	return &outboxDispatcher{
		store:       store,
		transactor:  transactor,
		counter:     counter,
		sinks:       sinks,
		maxAttempts: maxAttempts,
		now:         utils.GetCurrentTime,
	}
}

func (d *outboxDispatcher) DispatchPending(ctx context.Context, batch int) (int, error) {
	events, err := d.store.Outbox().FetchPending(ctx, batch)
	if err != nil {
		return 0, err
	}

	lg := logger.GetLogger()
	dispatched := 0
	for i := range events {
		evt := &events[i]
		err := d.dispatch(ctx, evt)
		if errors.Is(err, repository.ErrEventNotPending) {
			lg.WithField("eventId", evt.ID).Info("Outbox event already dispatched elsewhere")
			continue
		}
		if err != nil {
			lg.WithField("eventId", evt.ID).WithField("attempts", evt.Attempts+1).WithField("error", err).Warn("Outbox dispatch failed")
			if markErr := d.store.Outbox().MarkFailed(ctx, evt.ID, err.Error(), d.maxAttempts); markErr != nil {
				lg.WithField("eventId", evt.ID).WithField("error", markErr).Error("Error while recording outbox failure")
			}
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

func (d *outboxDispatcher) dispatch(ctx context.Context, evt *model.OutboxEvent) error {
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, evt); err != nil {
			return fmt.Errorf("%s: %w", sink.Name(), err)
		}
	}

	var count int64
	applyCounter := evt.Type == model.EventContentApproved
	err := d.transactor.WithinTransaction(ctx, func(ctx context.Context, store repository.IStore) error {
		if applyCounter {
			var err error
			count, err = store.Teams().IncrementContentCount(ctx, evt.TeamID, 1)
			if err != nil {
				return fmt.Errorf("increment content count: %w", err)
			}
		}
		return store.Outbox().MarkDispatched(ctx, evt.ID, d.now())
	})
	if err != nil {
		return err
	}

	if applyCounter {
		if err := d.counter.Set(ctx, evt.TeamID, count); err != nil {
			// The database counter is authoritative; the cache catches up on the next event.
			logger.GetLogger().WithField("teamId", evt.TeamID).WithField("error", err).Warn("Counter cache refresh failed")
		}
	}
	return nil
}

func (d *outboxDispatcher) Run(ctx context.Context, interval time.Duration, batch int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.GetLogger().WithField("interval", interval.String()).Info("Outbox dispatcher started")
	for {
		select {
		case <-ctx.Done():
			logger.GetLogger().Info("Outbox dispatcher stopped")
			return nil
		case <-ticker.C:
			n, err := d.DispatchPending(ctx, batch)
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while fetching outbox events")
				continue
			}
			if n > 0 {
				logger.GetLogger().WithField("dispatched", n).Info("Outbox events dispatched")
			}
		}
	}
}
