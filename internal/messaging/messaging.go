package messaging

import "context"

// Topics carrying storefront domain events.
const (
	TopicOrdersPlaced      = "orders.placed"
	TopicPaymentsSucceeded = "payments.succeeded"
)

// Publisher publishes domain events to a message broker. Broker failures are
// reported to the caller and never crash a request.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Subscriber consumes a topic and hands each payload to the handler.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error)
}
