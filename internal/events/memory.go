package events

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"alessacloud/internal/observability"
)

// ErrBrokerClosed is returned by operations on a closed broker
var ErrBrokerClosed = errors.New("event broker is closed")

// subscriberBuffer is the per-subscriber channel capacity. A dashboard that
// falls this far behind loses events instead of stalling publishers.
const subscriberBuffer = 16

type subscriber struct {
	ch   chan Event
	once sync.Once
}

// MemoryBroker is an in-process Broker. Events published on one instance
// are invisible to subscribers on another; use RedisBroker when running
// more than one instance.
type MemoryBroker struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]map[*subscriber]struct{}
	closed  bool
	metrics *observability.Metrics
}

// NewMemoryBroker creates a new in-process broker
func NewMemoryBroker(metrics *observability.Metrics) *MemoryBroker {
	return &MemoryBroker{
		subs:    make(map[uuid.UUID]map[*subscriber]struct{}),
		metrics: metrics,
	}
}

// Publish sends the event to every subscriber of the tenant. Slow
// subscribers are skipped, never waited on.
func (b *MemoryBroker) Publish(ctx context.Context, tenantID uuid.UUID, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for sub := range b.subs[tenantID] {
		select {
		case sub.ch <- event:
		default:
			// Subscriber buffer full; drop rather than block.
		}
	}

	b.metrics.RecordOrderEventPublished(event.Type)
	return nil
}

// Subscribe registers a subscriber for the tenant's events
func (b *MemoryBroker) Subscribe(ctx context.Context, tenantID uuid.UUID) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrBrokerClosed
	}

	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	if b.subs[tenantID] == nil {
		b.subs[tenantID] = make(map[*subscriber]struct{})
	}
	b.subs[tenantID][sub] = struct{}{}
	b.metrics.StreamSubscriberOpened()

	release := func() {
		sub.once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if set, ok := b.subs[tenantID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(b.subs, tenantID)
				}
			}
			close(sub.ch)
			b.metrics.StreamSubscriberClosed()
		})
	}

	// Release when the request context ends so a disconnecting client
	// can't leak its subscription.
	go func() {
		<-ctx.Done()
		release()
	}()

	return sub.ch, release, nil
}

// Close shuts down the broker and closes all subscriber channels
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	var all []*subscriber
	for tenantID, set := range b.subs {
		for sub := range set {
			all = append(all, sub)
		}
		delete(b.subs, tenantID)
	}
	// Channels close outside the lock: a concurrent release grabs the
	// same lock inside its once body.
	b.mu.Unlock()

	for _, sub := range all {
		sub.once.Do(func() {
			close(sub.ch)
			b.metrics.StreamSubscriberClosed()
		})
	}

	return nil
}

// SubscriberCount returns the number of open subscriptions for a tenant
func (b *MemoryBroker) SubscriberCount(tenantID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs[tenantID])
}
