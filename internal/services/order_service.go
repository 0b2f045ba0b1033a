package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"alessacloud/internal/audit"
	"alessacloud/internal/data"
	"alessacloud/internal/events"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// shortIDAttempts bounds retries when a generated short id collides within
// the tenant
const shortIDAttempts = 3

// OrderRepositoryInterface is the data access the order service needs
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error)
	GetByShortID(ctx context.Context, tenantID uuid.UUID, shortID string) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, page, pageSize int) ([]*models.Order, int, error)
	ListOpen(ctx context.Context, tenantID uuid.UUID) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to models.OrderStatus) error
	SetPaymentRef(ctx context.Context, tenantID, id uuid.UUID, ref string) error
}

// MenuItemReader is the menu access the order service needs
type MenuItemReader interface {
	GetItems(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*models.MenuItem, error)
}

// RewardWriter credits reward points after an order
type RewardWriter interface {
	AddRewardPoints(ctx context.Context, tenantID, customerID uuid.UUID, points int) error
}

// OrderItemInput is one requested line item
type OrderItemInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	Notes      string
}

// OrderInput is a request to place an order. Monetary fields other than the
// tip are computed server-side; ExpectedTotal, when the client sends one, is
// only cross-checked.
type OrderInput struct {
	CustomerID    *uuid.UUID
	Fulfillment   models.FulfillmentType
	Address       models.DeliveryAddress
	Items         []OrderItemInput
	Tip           float64
	Notes         string
	ExpectedTotal *float64
}

// OrderService owns order creation and the status state machine
type OrderService struct {
	orders   OrderRepositoryInterface
	menu     MenuItemReader
	rewards  RewardWriter
	broker   events.Broker
	auditSvc *audit.Service
	metrics  *observability.Metrics
	logger   *observability.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderRepositoryInterface, menu MenuItemReader, rewards RewardWriter, broker events.Broker, auditSvc *audit.Service, metrics *observability.Metrics, logger *observability.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		menu:     menu,
		rewards:  rewards,
		broker:   broker,
		auditSvc: auditSvc,
		metrics:  metrics,
		logger:   logger,
	}
}

// Create validates the input, prices the order server-side, and persists it.
//
// The total is always recomputed from the component fields before the write,
// so subtotal + tax + tip + deliveryFee + platformFee == total holds for
// every persisted order. A client-sent expected total that disagrees by more
// than a cent is rejected rather than stored.
func (s *OrderService) Create(ctx context.Context, tenant *models.Tenant, input OrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, models.NewValidationError("order must contain at least one item")
	}
	if input.Tip < 0 {
		return nil, models.NewValidationError("tip cannot be negative")
	}

	fulfillment := input.Fulfillment
	if fulfillment == "" {
		fulfillment = models.FulfillmentPickup
	}
	if fulfillment == models.FulfillmentDelivery {
		if !tenant.Features.Delivery {
			return nil, models.NewValidationError("delivery is not enabled for this restaurant")
		}
		if strings.TrimSpace(input.Address.Street) == "" {
			return nil, models.NewValidationError("delivery address is required")
		}
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, models.NewValidationError("item quantity must be positive")
		}
		ids = append(ids, item.MenuItemID)
	}

	menuItems, err := s.menu.GetItems(ctx, tenant.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	byID := make(map[uuid.UUID]*models.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		byID[mi.ID] = mi
	}

	var lines []*models.OrderItem
	var subtotal float64
	for _, item := range input.Items {
		mi, ok := byID[item.MenuItemID]
		if !ok {
			return nil, models.NewValidationError("menu item not found: " + item.MenuItemID.String())
		}
		if !mi.Available {
			return nil, models.NewValidationError(mi.Name + " is currently unavailable")
		}

		lines = append(lines, &models.OrderItem{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			UnitPrice:  mi.Price,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		})
		subtotal += mi.Price * float64(item.Quantity)
	}

	settings := tenant.Settings
	if settings == nil {
		settings = &models.TenantSettings{}
	}

	subtotal = round2(subtotal)
	tax := round2(subtotal * settings.TaxRate)
	tip := round2(input.Tip)

	var deliveryFee float64
	if fulfillment == models.FulfillmentDelivery {
		deliveryFee = round2(settings.DeliveryFee)
	}

	platformFee := round2(subtotal * settings.PlatformFeeRate)
	total := round2(subtotal + tax + tip + deliveryFee + platformFee)

	if input.ExpectedTotal != nil && math.Abs(*input.ExpectedTotal-total) > models.MoneyTolerance {
		return nil, models.NewValidationError(fmt.Sprintf("total mismatch: expected %.2f, computed %.2f", *input.ExpectedTotal, total))
	}

	order := &models.Order{
		TenantID:    tenant.ID,
		CustomerID:  input.CustomerID,
		Status:      models.OrderStatusPending,
		Fulfillment: fulfillment,
		Address:     input.Address,
		Notes:       input.Notes,
		Subtotal:    subtotal,
		Tax:         tax,
		Tip:         tip,
		DeliveryFee: deliveryFee,
		PlatformFee: platformFee,
		Total:       total,
		Items:       lines,
	}

	// Short ids are only unique within the tenant; regenerate on the rare
	// collision.
	for attempt := 0; ; attempt++ {
		order.ID = uuid.New()
		order.ShortID = shortIDFrom(order.ID)

		err = s.orders.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, data.ErrDuplicateRecord) || attempt+1 >= shortIDAttempts {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
	}

	s.metrics.RecordOrderCreated(tenant.Slug, string(fulfillment))

	if input.CustomerID != nil && tenant.Features.Rewards && settings.RewardRules.Enabled {
		points := int(subtotal * settings.RewardRules.PointsPerDollar)
		if points > 0 {
			if err := s.rewards.AddRewardPoints(ctx, tenant.ID, *input.CustomerID, points); err != nil {
				s.logger.Error("Failed to credit reward points", err)
			}
		}
	}

	s.publish(ctx, tenant.ID, events.TypeOrderCreated, order)

	return order, nil
}

// Get retrieves an order scoped to the tenant
func (s *OrderService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, tenantID, id)
}

// TrackByShortID retrieves an order by its public tracking id, scoped to
// the tenant. Short ids collide across tenants by design, so the tenant
// filter here is the isolation guarantee.
func (s *OrderService) TrackByShortID(ctx context.Context, tenantID uuid.UUID, shortID string) (*models.Order, error) {
	shortID = strings.ToLower(strings.TrimSpace(shortID))
	if len(shortID) != 6 {
		return nil, models.NewValidationError("tracking id must be 6 characters")
	}

	return s.orders.GetByShortID(ctx, tenantID, shortID)
}

// List retrieves a paginated, optionally status-filtered list of the
// tenant's orders
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, page, pageSize int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return s.orders.List(ctx, tenantID, status, page, pageSize)
}

// ListOpen retrieves the tenant's non-terminal orders for stream snapshots
func (s *OrderService) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]*models.Order, error) {
	return s.orders.ListOpen(ctx, tenantID)
}

// UpdateStatus transitions an order through its lifecycle. Invalid
// transitions are rejected before touching the database; concurrent
// transitions resolve through the conditional update in the repository.
func (s *OrderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, next models.OrderStatus, actorID uuid.UUID, ipAddress string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, models.NewValidationError(fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.orders.UpdateStatus(ctx, tenantID, orderID, order.Status, next); err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = next

	s.auditSvc.LogChange(ctx, tenantID, actorID, models.AuditActionUpdate,
		"order", orderID.String(),
		fmt.Sprintf("Order %s moved from %s to %s", order.ShortID, previous, next),
		previous, next, ipAddress)

	s.publish(ctx, tenantID, events.TypeStatusChanged, order)

	return order, nil
}

// MarkPaid records the payment reference and confirms a pending order.
// Called from the payment webhook.
func (s *OrderService) MarkPaid(ctx context.Context, tenantID, orderID uuid.UUID, paymentRef string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetPaymentRef(ctx, tenantID, orderID, paymentRef); err != nil {
		return nil, err
	}
	order.PaymentRef = paymentRef

	if order.Status == models.OrderStatusPending {
		err := s.orders.UpdateStatus(ctx, tenantID, orderID, models.OrderStatusPending, models.OrderStatusConfirmed)
		switch {
		case err == nil:
			order.Status = models.OrderStatusConfirmed
			s.publish(ctx, tenantID, events.TypeStatusChanged, order)
		case errors.Is(err, data.ErrStaleStatus):
			// The order moved concurrently, most likely a cancellation.
			// Report what the database says instead of asserting confirmed,
			// and publish nothing.
			fresh, readErr := s.orders.GetByID(ctx, tenantID, orderID)
			if readErr != nil {
				return nil, readErr
			}
			fresh.PaymentRef = paymentRef
			order = fresh
		default:
			return nil, err
		}
	}

	return order, nil
}

// publish sends an order event to the tenant's stream, logging rather than
// failing the request when the broker is unavailable
func (s *OrderService) publish(ctx context.Context, tenantID uuid.UUID, eventType string, order *models.Order) {
	event, err := events.NewEvent(eventType, order)
	if err != nil {
		s.logger.Error("Failed to encode order event", err)
		return
	}

	if err := s.broker.Publish(ctx, tenantID, event); err != nil {
		s.logger.Error("Failed to publish order event", err)
	}
}

// shortIDFrom derives the 6-character public tracking id from the order's
// full identifier
func shortIDFrom(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return hex[len(hex)-6:]
}

// round2 rounds to two decimal places (cents)
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
