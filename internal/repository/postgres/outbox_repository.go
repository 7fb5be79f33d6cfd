package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sonuudigital/lovecakes/internal/events"
	"github.com/sonuudigital/lovecakes/internal/repository"
)

type OutboxQuerier interface {
	GetUnpublishedOutboxEvents(ctx context.Context, limit int32) ([]repository.OutboxEvent, error)
	UpdateOutboxEventStatus(ctx context.Context, id pgtype.UUID) error
}

// OutboxRepository feeds the relayer with cart events written by
// CartRepository in the same transaction as the cart change.
type OutboxRepository struct {
	q OutboxQuerier
}

func NewOutboxRepository(db repository.DBTX) *OutboxRepository {
	return &OutboxRepository{q: repository.New(db)}
}

func NewOutboxRepositoryWithQuerier(q OutboxQuerier) *OutboxRepository {
	return &OutboxRepository{q: q}
}

// PendingEvents returns at most limit PENDING events, oldest first.
func (r *OutboxRepository) PendingEvents(ctx context.Context, limit int32) ([]events.OutboxEvent, error) {
	rows, err := r.q.GetUnpublishedOutboxEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending outbox events: %w", err)
	}

	pending := make([]events.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		event := events.OutboxEvent{
			ID:          row.ID.String(),
			AggregateID: row.AggregateID,
			EventName:   row.EventName,
			Payload:     row.Payload,
			Status:      row.Status,
		}
		if row.CreatedAt.Valid {
			event.CreatedAt = row.CreatedAt.Time
		}
		pending = append(pending, event)
	}
	return pending, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string) error {
	var id pgtype.UUID
	if err := id.Scan(eventID); err != nil {
		return fmt.Errorf("invalid outbox event id %q: %w", eventID, err)
	}
	if err := r.q.UpdateOutboxEventStatus(ctx, id); err != nil {
		return fmt.Errorf("failed to mark outbox event %s published: %w", eventID, err)
	}
	return nil
}
