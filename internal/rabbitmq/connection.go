package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sonuudigital/lovecakes/internal/logs"
)

const (
	maxRetries          = 3
	retryBackoff        = 100 * time.Millisecond
	initialReconnectGap = 1 * time.Second
	maxReconnectGap     = 30 * time.Second
	maxReconnectTries   = 10
)

type dialFunc func(url string) (*amqp091.Connection, error)

type connectionManager struct {
	logger logs.Logger
	url    string
	dial   dialFunc

	mu         sync.Mutex
	connection *amqp091.Connection
	channel    *amqp091.Channel
}

func newConnectionManager(logger logs.Logger, url string) (*connectionManager, error) {
	cm := &connectionManager{
		logger: logger,
		url:    url,
		dial:   amqp091.Dial,
	}

	if err := cm.connect(); err != nil {
		return nil, err
	}
	return cm, nil
}

func (cm *connectionManager) connect() error {
	conn, err := cm.dial(cm.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	cm.mu.Lock()
	cm.connection = conn
	cm.channel = ch
	cm.mu.Unlock()

	cm.logger.Info("connected to RabbitMQ")
	return nil
}

// nextReconnectGap doubles gap up to maxReconnectGap.
func nextReconnectGap(gap time.Duration) time.Duration {
	gap *= 2
	if gap > maxReconnectGap {
		return maxReconnectGap
	}
	return gap
}

func (cm *connectionManager) reconnect(ctx context.Context) error {
	gap := initialReconnectGap

	for attempt := 1; attempt <= maxReconnectTries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(gap):
		}

		cm.logger.Info("attempting to reconnect to RabbitMQ", "attempt", attempt, "backoff", gap)
		if err := cm.connect(); err != nil {
			gap = nextReconnectGap(gap)
			cm.logger.Error("failed to reconnect", "error", err, "attempt", attempt, "nextRetry", gap)
			continue
		}

		cm.logger.Info("successfully reconnected to RabbitMQ")
		return nil
	}
	return fmt.Errorf("max reconnection attempts reached: %d", maxReconnectTries)
}

func (cm *connectionManager) currentChannel() *amqp091.Channel {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.channel
}

func (cm *connectionManager) closed() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.connection == nil || cm.connection.IsClosed() || cm.channel == nil || cm.channel.IsClosed()
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Code == amqp091.ChannelError || amqpErr.Code == amqp091.ConnectionForced
	}
	return false
}

func (cm *connectionManager) retryWithReconnect(ctx context.Context, opName string, op func(ch *amqp091.Channel) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ch := cm.currentChannel()
		if ch == nil {
			lastErr = amqp091.ErrClosed
		} else if lastErr = op(ch); lastErr == nil {
			return nil
		}

		if !isConnectionError(lastErr) && !cm.closed() {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		cm.logger.Warn(opName+": transient error, attempting reconnect", "attempt", attempt, "error", lastErr)
		if err := cm.reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("%s failed after %d retries: %w", opName, maxRetries, lastErr)
}

func (cm *connectionManager) Ping() error {
	if cm.closed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

func (cm *connectionManager) Close() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.channel != nil {
		cm.channel.Close()
	}
	if cm.connection != nil {
		cm.connection.Close()
	}
	cm.logger.Info("rabbitmq connection manager closed")
}
