package worker

import (
	"context"
	"time"

	"github.com/sonuudigital/lovecakes/internal/events"
	"github.com/sonuudigital/lovecakes/internal/logs"
)

type OutboxStore interface {
	PendingEvents(ctx context.Context, limit int32) ([]events.OutboxEvent, error)
	MarkPublished(ctx context.Context, eventID string) error
}

type Publisher interface {
	Publish(ctx context.Context, event events.OutboxEvent) error
}

type Recorder interface {
	OutboxEvent(published bool)
}

type OutboxRelayer struct {
	logger       logs.Logger
	publisher    Publisher
	store        OutboxStore
	recorder     Recorder
	pollInterval time.Duration
	batchSize    int32
}

func NewOutboxRelayer(
	logger logs.Logger,
	publisher Publisher,
	store OutboxStore,
	recorder Recorder,
	pollInterval time.Duration,
	batchSize int32,
) *OutboxRelayer {
	return &OutboxRelayer{
		logger:       logger,
		publisher:    publisher,
		store:        store,
		recorder:     recorder,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Start polls until ctx is cancelled.
func (r *OutboxRelayer) Start(ctx context.Context) {
	r.logger.Info("starting outbox event message relayer worker", "pollInterval", r.pollInterval, "batchSize", r.batchSize)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.ProcessEvents(ctx); err != nil {
				r.logger.Error("error processing outbox events", "error", err)
			}
		case <-ctx.Done():
			r.logger.Info("stopping outbox event message relayer worker")
			return
		}
	}
}

// ProcessEvents relays one batch and returns how many events were published.
// Events that fail stay PENDING and are retried on the next tick.
func (r *OutboxRelayer) ProcessEvents(ctx context.Context) (int, error) {
	pending, err := r.store.PendingEvents(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, event := range pending {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.Error("failed to publish outbox event", "eventID", event.ID, "eventName", event.EventName, "error", err)
			r.record(false)
			continue
		}

		if err := r.store.MarkPublished(ctx, event.ID); err != nil {
			r.logger.Error("failed to update outbox event status", "eventID", event.ID, "error", err)
			r.record(false)
			continue
		}

		published++
		r.record(true)
		r.logger.Debug("relayed outbox event", "eventID", event.ID, "eventName", event.EventName)
	}

	if published > 0 {
		r.logger.Info("relayed outbox events", "count", published)
	}
	return published, nil
}

func (r *OutboxRelayer) record(published bool) {
	if r.recorder != nil {
		r.recorder.OutboxEvent(published)
	}
}
