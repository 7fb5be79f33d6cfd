package rabbitmq

import (
	"context"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sonuudigital/lovecakes/internal/logs"
)

// Client publishes JSON messages, declaring each exchange once per
// connection.
type Client struct {
	*connectionManager

	declaredMu sync.Mutex
	declared   map[*amqp091.Channel]map[string]bool
}

func NewClient(logger logs.Logger, url string) (*Client, error) {
	manager, err := newConnectionManager(logger, url)
	if err != nil {
		return nil, err
	}
	return &Client{
		connectionManager: manager,
		declared:          make(map[*amqp091.Channel]map[string]bool),
	}, nil
}

func (c *Client) Publish(ctx context.Context, opts PublishOptions) error {
	return c.retryWithReconnect(ctx, "publish", func(ch *amqp091.Channel) error {
		if err := c.ensureExchange(ch, opts.Exchange, opts.ExchangeType); err != nil {
			return err
		}
		return ch.PublishWithContext(
			ctx,
			opts.Exchange,
			opts.RoutingKey,
			false,
			false,
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				MessageId:    opts.MessageID,
				Timestamp:    opts.timestamp(),
				Body:         opts.Body,
			},
		)
	})
}

func (c *Client) ensureExchange(ch *amqp091.Channel, name string, exchangeType ExchangeType) error {
	c.declaredMu.Lock()
	defer c.declaredMu.Unlock()

	if c.declared[ch][name] {
		return nil
	}

	if err := ch.ExchangeDeclare(name, string(exchangeType), true, false, false, false, nil); err != nil {
		return err
	}

	// A reconnect hands out a new channel; drop bookkeeping for old ones.
	if _, ok := c.declared[ch]; !ok {
		c.declared = map[*amqp091.Channel]map[string]bool{ch: {}}
	}
	c.declared[ch][name] = true
	return nil
}
