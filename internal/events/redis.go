package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"alessacloud/internal/observability"
)

// RedisBroker is a Broker backed by redis Pub/Sub. Events published on any
// instance reach subscribers on every instance, which is what a
// horizontally scaled deployment needs.
type RedisBroker struct {
	client  *redis.Client
	prefix  string
	metrics *observability.Metrics

	mu     sync.Mutex
	closed bool
}

// NewRedisBroker creates a broker over the given redis client. The prefix
// namespaces the Pub/Sub channels (one channel per tenant).
func NewRedisBroker(client *redis.Client, prefix string, metrics *observability.Metrics) *RedisBroker {
	if prefix == "" {
		prefix = "orders"
	}

	return &RedisBroker{
		client:  client,
		prefix:  prefix,
		metrics: metrics,
	}
}

func (b *RedisBroker) channel(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:events:%s", b.prefix, tenantID)
}

// Publish sends the event to the tenant's Pub/Sub channel
func (b *RedisBroker) Publish(ctx context.Context, tenantID uuid.UUID, event Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBrokerClosed
	}
	b.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel(tenantID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.metrics.RecordOrderEventPublished(event.Type)
	return nil
}

// Subscribe opens a Pub/Sub subscription on the tenant's channel
func (b *RedisBroker) Subscribe(ctx context.Context, tenantID uuid.UUID) (<-chan Event, func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, ErrBrokerClosed
	}
	b.mu.Unlock()

	pubsub := b.client.Subscribe(ctx, b.channel(tenantID))

	// Force the subscription to be established before returning so the
	// caller never misses events published after Subscribe succeeds.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	b.metrics.StreamSubscriberOpened()

	var once sync.Once
	release := func() {
		once.Do(func() {
			_ = pubsub.Close()
			b.metrics.StreamSubscriberClosed()
		})
	}

	go func() {
		defer close(out)
		defer release()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}

				select {
				case out <- event:
				default:
					// Subscriber buffer full; drop rather than block.
				}
			}
		}
	}()

	return out, release, nil
}

// Close marks the broker closed. Open subscriptions shut down through
// their own release paths.
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}
