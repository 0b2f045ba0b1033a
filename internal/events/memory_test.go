package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvent(t *testing.T, eventType string, data interface{}) Event {
	t.Helper()
	event, err := NewEvent(eventType, data)
	require.NoError(t, err)
	return event
}

func TestMemoryBrokerFanout(t *testing.T) {
	broker := NewMemoryBroker(nil)
	defer broker.Close()

	tenantID := uuid.New()
	ctx := context.Background()

	sub1, release1, err := broker.Subscribe(ctx, tenantID)
	require.NoError(t, err)
	defer release1()

	sub2, release2, err := broker.Subscribe(ctx, tenantID)
	require.NoError(t, err)
	defer release2()

	event := mustEvent(t, TypeOrderCreated, map[string]string{"shortId": "a1b2c3"})
	require.NoError(t, broker.Publish(ctx, tenantID, event))

	for _, sub := range []<-chan Event{sub1, sub2} {
		select {
		case got := <-sub:
			assert.Equal(t, TypeOrderCreated, got.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestMemoryBrokerTenantIsolation(t *testing.T) {
	broker := NewMemoryBroker(nil)
	defer broker.Close()

	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	subB, release, err := broker.Subscribe(ctx, tenantB)
	require.NoError(t, err)
	defer release()

	require.NoError(t, broker.Publish(ctx, tenantA, mustEvent(t, TypeOrderCreated, nil)))

	select {
	case event := <-subB:
		t.Fatalf("tenant B received tenant A's event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBrokerReleaseOnContextCancel(t *testing.T) {
	broker := NewMemoryBroker(nil)
	defer broker.Close()

	tenantID := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())

	sub, _, err := broker.Subscribe(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, broker.SubscriberCount(tenantID))

	cancel()

	assert.Eventually(t, func() bool {
		return broker.SubscriberCount(tenantID) == 0
	}, time.Second, 10*time.Millisecond)

	// The channel closes so a streaming loop terminates.
	_, open := <-drain(sub)
	assert.False(t, open)
}

func TestMemoryBrokerSlowSubscriberDropsEvents(t *testing.T) {
	broker := NewMemoryBroker(nil)
	defer broker.Close()

	tenantID := uuid.New()
	ctx := context.Background()

	sub, release, err := broker.Subscribe(ctx, tenantID)
	require.NoError(t, err)
	defer release()

	// Publish past the buffer without consuming; none of these may block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			broker.Publish(ctx, tenantID, mustEvent(t, TypeStatusChanged, i))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	assert.Len(t, sub, subscriberBuffer)
}

func TestMemoryBrokerClose(t *testing.T) {
	broker := NewMemoryBroker(nil)

	tenantID := uuid.New()
	sub, release, err := broker.Subscribe(context.Background(), tenantID)
	require.NoError(t, err)
	defer release()

	require.NoError(t, broker.Close())

	_, open := <-sub
	assert.False(t, open)

	err = broker.Publish(context.Background(), tenantID, mustEvent(t, TypeOrderCreated, nil))
	assert.ErrorIs(t, err, ErrBrokerClosed)

	_, _, err = broker.Subscribe(context.Background(), tenantID)
	assert.ErrorIs(t, err, ErrBrokerClosed)

	// Close is idempotent.
	assert.NoError(t, broker.Close())
}

func TestMemoryBrokerDoubleRelease(t *testing.T) {
	broker := NewMemoryBroker(nil)
	defer broker.Close()

	tenantID := uuid.New()
	_, release, err := broker.Subscribe(context.Background(), tenantID)
	require.NoError(t, err)

	release()
	release()

	assert.Equal(t, 0, broker.SubscriberCount(tenantID))
}

// drain returns the channel once pending events are consumed so closed-ness
// can be observed
func drain(ch <-chan Event) <-chan Event {
	for {
		select {
		case _, open := <-ch:
			if !open {
				out := make(chan Event)
				close(out)
				return out
			}
		default:
			return ch
		}
	}
}
