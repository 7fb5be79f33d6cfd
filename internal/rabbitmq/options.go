package rabbitmq

import "time"

type ExchangeType string

const (
	ExchangeFanout ExchangeType = "fanout"
	ExchangeTopic  ExchangeType = "topic"
)

// PublishOptions describes one persistent JSON message. A zero Timestamp
// is replaced with the publish time.
type PublishOptions struct {
	Exchange     string
	ExchangeType ExchangeType
	RoutingKey   string
	Body         []byte
	MessageID    string
	Timestamp    time.Time
}

func (o PublishOptions) timestamp() time.Time {
	if o.Timestamp.IsZero() {
		return time.Now().UTC()
	}
	return o.Timestamp
}
