package events

import "time"

const (
	StatusPending   = "PENDING"
	StatusPublished = "PUBLISHED"
)

// OutboxEvent is one row of the transactional outbox. EventName has the
// form "exchange:routingKey".
type OutboxEvent struct {
	ID          string    `json:"id"`
	AggregateID string    `json:"aggregateId"`
	EventName   string    `json:"eventName"`
	Payload     []byte    `json:"payload"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
