package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sonuudigital/lovecakes/internal/events"
	"github.com/sonuudigital/lovecakes/internal/rabbitmq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageClient struct {
	mock.Mock
}

func (m *MockMessageClient) Publish(ctx context.Context, opts rabbitmq.PublishOptions) error {
	return m.Called(ctx, opts).Error(0)
}

func TestSplitEventName(t *testing.T) {
	exchange, key, err := events.SplitEventName(events.CartItemAddedEventName)
	require.NoError(t, err)
	assert.Equal(t, "cart.events", exchange)
	assert.Equal(t, "cart.item.added", key)

	for _, bad := range []string{"cart.events", ":cart.item.added", "cart.events:"} {
		_, _, err := events.SplitEventName(bad)
		assert.Error(t, err, bad)
	}
}

func TestTopicPublisher(t *testing.T) {
	event := events.OutboxEvent{
		ID:        "3f1c6b3e-8d44-4bb4-a0e6-6bf0f5a0c9b1",
		EventName: events.CartItemRemovedEventName,
		Payload:   []byte(`{"itemId":1}`),
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	t.Run("Success", func(t *testing.T) {
		client := new(MockMessageClient)
		client.On("Publish", mock.Anything, rabbitmq.PublishOptions{
			Exchange:     "cart.events",
			ExchangeType: rabbitmq.ExchangeTopic,
			RoutingKey:   "cart.item.removed",
			Body:         event.Payload,
			MessageID:    event.ID,
			Timestamp:    event.CreatedAt,
		}).Return(nil).Once()

		err := events.NewTopicPublisher(client).Publish(context.Background(), event)

		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Client Error", func(t *testing.T) {
		client := new(MockMessageClient)
		client.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		err := events.NewTopicPublisher(client).Publish(context.Background(), event)

		assert.EqualError(t, err, "broker down")
	})

	t.Run("Malformed Name", func(t *testing.T) {
		client := new(MockMessageClient)

		err := events.NewTopicPublisher(client).Publish(context.Background(), events.OutboxEvent{EventName: "legacy_exchange"})

		assert.Error(t, err)
		client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
