package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusCompleted, true},

		{OrderStatusPending, OrderStatusReady, false},
		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusConfirmed, OrderStatusCompleted, false},
		{OrderStatusReady, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusPending, false},

		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusCancelled, true},
		{OrderStatusReady, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusReady.IsTerminal())
}

func TestTotalsBalanced(t *testing.T) {
	order := &Order{
		Subtotal:    20.00,
		Tax:         1.60,
		Tip:         2.00,
		DeliveryFee: 4.50,
		PlatformFee: 1.00,
		Total:       29.10,
	}
	assert.True(t, order.TotalsBalanced())

	order.Total = 29.105
	assert.True(t, order.TotalsBalanced(), "sub-cent drift is tolerated")

	order.Total = 30.00
	assert.False(t, order.TotalsBalanced())
}
