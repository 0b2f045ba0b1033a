package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Event types carried on the order stream
const (
	TypeInit          = "init"
	TypeOrderCreated  = "order_created"
	TypeStatusChanged = "status_changed"
)

// Event is one message on a tenant's order stream. Data is pre-marshaled so
// the broker never needs to know payload shapes.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEvent marshals data into an Event
func NewEvent(eventType string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}

	return Event{
		Type: eventType,
		Data: raw,
	}, nil
}

// Broker broadcasts order-state changes to all currently-connected viewers
// of a tenant. The in-process implementation covers single-instance
// deployments; the redis implementation makes events visible across
// horizontally scaled instances.
//
// Delivery is best effort: a subscriber that can't keep up loses events
// rather than blocking publishers.
type Broker interface {
	// Publish sends an event to all of the tenant's subscribers
	Publish(ctx context.Context, tenantID uuid.UUID, event Event) error

	// Subscribe returns a channel of the tenant's events and a release
	// function. The subscription also releases when ctx is cancelled;
	// failing to release leaks the subscription for the life of the
	// process.
	Subscribe(ctx context.Context, tenantID uuid.UUID) (<-chan Event, func(), error)

	// Close shuts the broker down and releases all subscriptions
	Close() error
}
