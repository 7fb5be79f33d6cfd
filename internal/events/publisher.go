package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/sonuudigital/lovecakes/internal/rabbitmq"
)

type MessageClient interface {
	Publish(ctx context.Context, opts rabbitmq.PublishOptions) error
}

// TopicPublisher routes "exchange:routingKey" event names to a durable topic
// exchange.
type TopicPublisher struct {
	client MessageClient
}

func NewTopicPublisher(client MessageClient) *TopicPublisher {
	return &TopicPublisher{client: client}
}

func SplitEventName(eventName string) (exchange, routingKey string, err error) {
	exchange, routingKey, ok := strings.Cut(eventName, ":")
	if !ok || exchange == "" || routingKey == "" {
		return "", "", fmt.Errorf("event name %q is not in exchange:routingKey form", eventName)
	}
	return exchange, routingKey, nil
}

func (p *TopicPublisher) Publish(ctx context.Context, event OutboxEvent) error {
	exchange, routingKey, err := SplitEventName(event.EventName)
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, rabbitmq.PublishOptions{
		Exchange:     exchange,
		ExchangeType: rabbitmq.ExchangeTopic,
		RoutingKey:   routingKey,
		Body:         event.Payload,
		MessageID:    event.ID,
		Timestamp:    event.CreatedAt,
	})
}
