package models

import (
	"math"
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// FulfillmentType represents how an order reaches the customer
type FulfillmentType string

// Fulfillment types
const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

// MoneyTolerance is the largest acceptable difference between the stored
// total and the sum of its components.
const MoneyTolerance = 0.01

// Order represents a customer order belonging to exactly one tenant
type Order struct {
	ID          uuid.UUID       `pg:"id,type:uuid,pk"`
	TenantID    uuid.UUID       `pg:"tenant_id,type:uuid,notnull"`
	CustomerID  *uuid.UUID      `pg:"customer_id,type:uuid"`
	ShortID     string          `pg:"short_id,notnull"`
	Status      OrderStatus     `pg:"status,type:text,notnull,default:'pending'"`
	Fulfillment FulfillmentType `pg:"fulfillment,type:text,notnull,default:'pickup'"`
	Address     DeliveryAddress `pg:"address,type:jsonb"`
	Notes       string          `pg:"notes"`

	Subtotal    float64 `pg:"subtotal,notnull"`
	Tax         float64 `pg:"tax,notnull"`
	Tip         float64 `pg:"tip,notnull"`
	DeliveryFee float64 `pg:"delivery_fee,notnull"`
	PlatformFee float64 `pg:"platform_fee,notnull"`
	Total       float64 `pg:"total,notnull"`

	PaymentRef string    `pg:"payment_ref"`
	CreatedAt  time.Time `pg:"created_at,notnull,default:now()"`
	UpdatedAt  time.Time `pg:"updated_at,notnull,default:now()"`

	// Relations
	Customer *Customer    `pg:"rel:has-one,fk:customer_id"`
	Items    []*OrderItem `pg:"rel:has-many,join_fk:order_id"`
}

// DeliveryAddress represents the drop-off address for delivery orders
type DeliveryAddress struct {
	Street     string `json:"street"`
	Unit       string `json:"unit,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Notes      string `json:"notes,omitempty"`
}

// OrderItem represents one line of an order. Name and unit price are
// snapshotted at order time so later menu edits don't rewrite history.
type OrderItem struct {
	ID         uuid.UUID `pg:"id,type:uuid,pk"`
	OrderID    uuid.UUID `pg:"order_id,type:uuid,notnull"`
	MenuItemID uuid.UUID `pg:"menu_item_id,type:uuid,notnull"`
	Name       string    `pg:"name,notnull"`
	UnitPrice  float64   `pg:"unit_price,notnull"`
	Quantity   int       `pg:"quantity,notnull"`
	Notes      string    `pg:"notes"`
	CreatedAt  time.Time `pg:"created_at,notnull,default:now()"`
}

// BeforeInsert hook is called before inserting a new order
func (o *Order) BeforeInsert(ctx orm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating an order
func (o *Order) BeforeUpdate(ctx orm.DB) error {
	o.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (o *Order) TableName() string {
	return "orders"
}

// BeforeInsert hook is called before inserting a new order item
func (i *OrderItem) BeforeInsert(ctx orm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.CreatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (i *OrderItem) TableName() string {
	return "order_items"
}

// IsTerminal returns whether the status admits no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the order status may move to next.
// The lifecycle is pending → confirmed → preparing → ready → completed,
// with cancelled reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderStatusCancelled {
		return !s.IsTerminal()
	}

	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return next == OrderStatusPreparing
	case OrderStatusPreparing:
		return next == OrderStatusReady
	case OrderStatusReady:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

// TotalsBalanced reports whether the stored total matches the sum of its
// component fields within MoneyTolerance.
func (o *Order) TotalsBalanced() bool {
	sum := o.Subtotal + o.Tax + o.Tip + o.DeliveryFee + o.PlatformFee
	return math.Abs(sum-o.Total) <= MoneyTolerance
}

// ComputeSubtotal returns the sum of the order's line items
func (o *Order) ComputeSubtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}
