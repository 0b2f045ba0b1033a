package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alessacloud/internal/audit"
	"alessacloud/internal/data"
	"alessacloud/internal/events"
	"alessacloud/internal/models"
)

// MockOrderRepository is a mock order store
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByShortID(ctx context.Context, tenantID uuid.UUID, shortID string) (*models.Order, error) {
	args := m.Called(ctx, tenantID, shortID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, page, pageSize int) ([]*models.Order, int, error) {
	args := m.Called(ctx, tenantID, status, page, pageSize)
	return args.Get(0).([]*models.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to models.OrderStatus) error {
	args := m.Called(ctx, tenantID, id, from, to)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentRef(ctx context.Context, tenantID, id uuid.UUID, ref string) error {
	args := m.Called(ctx, tenantID, id, ref)
	return args.Error(0)
}

// MockMenuReader is a mock menu item lookup
type MockMenuReader struct {
	mock.Mock
}

func (m *MockMenuReader) GetItems(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*models.MenuItem, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*models.MenuItem), args.Error(1)
}

// MockRewardWriter is a mock reward ledger
type MockRewardWriter struct {
	mock.Mock
}

func (m *MockRewardWriter) AddRewardPoints(ctx context.Context, tenantID, customerID uuid.UUID, points int) error {
	args := m.Called(ctx, tenantID, customerID, points)
	return args.Error(0)
}

func testTenant() *models.Tenant {
	return &models.Tenant{
		ID:     uuid.New(),
		Slug:   "pizza",
		Name:   "Pizza Palace",
		Status: models.TenantStatusActive,
		Features: models.FeatureFlags{
			Delivery: true,
		},
		Settings: &models.TenantSettings{
			TaxRate:         0.08,
			DeliveryFee:     4.50,
			PlatformFeeRate: 0.05,
		},
	}
}

func newTestOrderService(orders *MockOrderRepository, menu *MockMenuReader, rewards *MockRewardWriter) *OrderService {
	return NewOrderService(orders, menu, rewards, events.NewMemoryBroker(nil), audit.NewService(nil), nil, nil)
}

func TestCreateOrderComputesTotals(t *testing.T) {
	orders := new(MockOrderRepository)
	menu := new(MockMenuReader)
	rewards := new(MockRewardWriter)
	svc := newTestOrderService(orders, menu, rewards)

	tenant := testTenant()
	itemID := uuid.New()

	menu.On("GetItems", mock.Anything, tenant.ID, mock.Anything).Return([]*models.MenuItem{
		{ID: itemID, Name: "Margherita", Price: 10.00, Available: true},
	}, nil)

	var created *models.Order
	orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Order)
	}).Return(nil)

	order, err := svc.Create(context.Background(), tenant, OrderInput{
		Fulfillment: models.FulfillmentPickup,
		Items:       []OrderItemInput{{MenuItemID: itemID, Quantity: 2}},
		Tip:         2.00,
	})

	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, 20.00, order.Subtotal)
	assert.Equal(t, 1.60, order.Tax)
	assert.Equal(t, 2.00, order.Tip)
	assert.Equal(t, 0.00, order.DeliveryFee)
	assert.Equal(t, 1.00, order.PlatformFee)
	assert.Equal(t, 24.60, order.Total)
	assert.True(t, order.TotalsBalanced())
	assert.Equal(t, tenant.ID, order.TenantID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.ShortID, 6)
}

func TestCreateOrderAddsDeliveryFee(t *testing.T) {
	orders := new(MockOrderRepository)
	menu := new(MockMenuReader)
	svc := newTestOrderService(orders, menu, new(MockRewardWriter))

	tenant := testTenant()
	itemID := uuid.New()

	menu.On("GetItems", mock.Anything, tenant.ID, mock.Anything).Return([]*models.MenuItem{
		{ID: itemID, Name: "Margherita", Price: 10.00, Available: true},
	}, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	order, err := svc.Create(context.Background(), tenant, OrderInput{
		Fulfillment: models.FulfillmentDelivery,
		Address:     models.DeliveryAddress{Street: "1 Main St", City: "Springfield"},
		Items:       []OrderItemInput{{MenuItemID: itemID, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, 4.50, order.DeliveryFee)
	assert.True(t, order.TotalsBalanced())
}

func TestCreateOrderRejectsTotalMismatch(t *testing.T) {
	orders := new(MockOrderRepository)
	menu := new(MockMenuReader)
	svc := newTestOrderService(orders, menu, new(MockRewardWriter))

	tenant := testTenant()
	itemID := uuid.New()

	menu.On("GetItems", mock.Anything, tenant.ID, mock.Anything).Return([]*models.MenuItem{
		{ID: itemID, Name: "Margherita", Price: 10.00, Available: true},
	}, nil)

	wrongTotal := 5.00
	_, err := svc.Create(context.Background(), tenant, OrderInput{
		Items:         []OrderItemInput{{MenuItemID: itemID, Quantity: 1}},
		ExpectedTotal: &wrongTotal,
	})

	var validationErr models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrderRejectsUnavailableItem(t *testing.T) {
	orders := new(MockOrderRepository)
	menu := new(MockMenuReader)
	svc := newTestOrderService(orders, menu, new(MockRewardWriter))

	tenant := testTenant()
	itemID := uuid.New()

	menu.On("GetItems", mock.Anything, tenant.ID, mock.Anything).Return([]*models.MenuItem{
		{ID: itemID, Name: "Calzone", Price: 12.00, Available: false},
	}, nil)

	_, err := svc.Create(context.Background(), tenant, OrderInput{
		Items: []OrderItemInput{{MenuItemID: itemID, Quantity: 1}},
	})

	var validationErr models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateOrderRejectsDeliveryWhenDisabled(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockMenuReader), new(MockRewardWriter))

	tenant := testTenant()
	tenant.Features.Delivery = false

	_, err := svc.Create(context.Background(), tenant, OrderInput{
		Fulfillment: models.FulfillmentDelivery,
		Address:     models.DeliveryAddress{Street: "1 Main St"},
		Items:       []OrderItemInput{{MenuItemID: uuid.New(), Quantity: 1}},
	})

	var validationErr models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateOrderRetriesShortIDCollision(t *testing.T) {
	orders := new(MockOrderRepository)
	menu := new(MockMenuReader)
	svc := newTestOrderService(orders, menu, new(MockRewardWriter))

	tenant := testTenant()
	itemID := uuid.New()

	menu.On("GetItems", mock.Anything, tenant.ID, mock.Anything).Return([]*models.MenuItem{
		{ID: itemID, Name: "Margherita", Price: 10.00, Available: true},
	}, nil)

	// First insert hits a short id already taken within the tenant.
	orders.On("Create", mock.Anything, mock.Anything).Return(data.ErrDuplicateRecord).Once()
	orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	order, err := svc.Create(context.Background(), tenant, OrderInput{
		Items: []OrderItemInput{{MenuItemID: itemID, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Len(t, order.ShortID, 6)
	orders.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateOrderCreditsRewards(t *testing.T) {
	orders := new(MockOrderRepository)
	menu := new(MockMenuReader)
	rewards := new(MockRewardWriter)
	svc := newTestOrderService(orders, menu, rewards)

	tenant := testTenant()
	tenant.Features.Rewards = true
	tenant.Settings.RewardRules = models.RewardRules{Enabled: true, PointsPerDollar: 1}

	itemID := uuid.New()
	customerID := uuid.New()

	menu.On("GetItems", mock.Anything, tenant.ID, mock.Anything).Return([]*models.MenuItem{
		{ID: itemID, Name: "Margherita", Price: 10.00, Available: true},
	}, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	rewards.On("AddRewardPoints", mock.Anything, tenant.ID, customerID, 20).Return(nil)

	_, err := svc.Create(context.Background(), tenant, OrderInput{
		CustomerID: &customerID,
		Items:      []OrderItemInput{{MenuItemID: itemID, Quantity: 2}},
	})

	require.NoError(t, err)
	rewards.AssertExpectations(t)
}

func TestTrackByShortIDIsTenantScoped(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := newTestOrderService(orders, new(MockMenuReader), new(MockRewardWriter))

	tenantA := uuid.New()
	tenantB := uuid.New()

	// The same short id exists in both tenants and resolves to different
	// orders depending on which tenant asks.
	orderA := &models.Order{ID: uuid.New(), TenantID: tenantA, ShortID: "a1b2c3"}
	orders.On("GetByShortID", mock.Anything, tenantA, "a1b2c3").Return(orderA, nil)
	orders.On("GetByShortID", mock.Anything, tenantB, "a1b2c3").Return(nil, data.ErrNotFound)

	got, err := svc.TrackByShortID(context.Background(), tenantA, "A1B2C3")
	require.NoError(t, err)
	assert.Equal(t, orderA.ID, got.ID)

	_, err = svc.TrackByShortID(context.Background(), tenantB, "a1b2c3")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestTrackByShortIDRejectsBadLength(t *testing.T) {
	svc := newTestOrderService(new(MockOrderRepository), new(MockMenuReader), new(MockRewardWriter))

	_, err := svc.TrackByShortID(context.Background(), uuid.New(), "abc")

	var validationErr models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatusValidTransition(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := newTestOrderService(orders, new(MockMenuReader), new(MockRewardWriter))

	tenantID := uuid.New()
	order := &models.Order{ID: uuid.New(), TenantID: tenantID, ShortID: "a1b2c3", Status: models.OrderStatusPending}

	orders.On("GetByID", mock.Anything, tenantID, order.ID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, tenantID, order.ID,
		models.OrderStatusPending, models.OrderStatusConfirmed).Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), tenantID, order.ID,
		models.OrderStatusConfirmed, uuid.New(), "127.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := newTestOrderService(orders, new(MockMenuReader), new(MockRewardWriter))

	tenantID := uuid.New()
	order := &models.Order{ID: uuid.New(), TenantID: tenantID, Status: models.OrderStatusPending}

	orders.On("GetByID", mock.Anything, tenantID, order.ID).Return(order, nil)

	_, err := svc.UpdateStatus(context.Background(), tenantID, order.ID,
		models.OrderStatusReady, uuid.New(), "127.0.0.1")

	var validationErr models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusSurfacesConcurrentChange(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := newTestOrderService(orders, new(MockMenuReader), new(MockRewardWriter))

	tenantID := uuid.New()
	order := &models.Order{ID: uuid.New(), TenantID: tenantID, Status: models.OrderStatusConfirmed}

	orders.On("GetByID", mock.Anything, tenantID, order.ID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, tenantID, order.ID,
		models.OrderStatusConfirmed, models.OrderStatusPreparing).Return(data.ErrStaleStatus)

	_, err := svc.UpdateStatus(context.Background(), tenantID, order.ID,
		models.OrderStatusPreparing, uuid.New(), "127.0.0.1")

	assert.ErrorIs(t, err, data.ErrStaleStatus)
}

func TestMarkPaidConfirmsPendingOrder(t *testing.T) {
	orders := new(MockOrderRepository)
	broker := events.NewMemoryBroker(nil)
	svc := NewOrderService(orders, new(MockMenuReader), new(MockRewardWriter), broker, audit.NewService(nil), nil, nil)

	tenantID := uuid.New()
	order := &models.Order{ID: uuid.New(), TenantID: tenantID, ShortID: "a1b2c3", Status: models.OrderStatusPending}

	orders.On("GetByID", mock.Anything, tenantID, order.ID).Return(order, nil)
	orders.On("SetPaymentRef", mock.Anything, tenantID, order.ID, "pay_123").Return(nil)
	orders.On("UpdateStatus", mock.Anything, tenantID, order.ID,
		models.OrderStatusPending, models.OrderStatusConfirmed).Return(nil)

	sub, release, err := broker.Subscribe(context.Background(), tenantID)
	require.NoError(t, err)
	defer release()

	got, err := svc.MarkPaid(context.Background(), tenantID, order.ID, "pay_123")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.Equal(t, "pay_123", got.PaymentRef)

	require.Len(t, sub, 1)
	event := <-sub
	assert.Equal(t, events.TypeStatusChanged, event.Type)
}

func TestMarkPaidConcurrentCancelIsNotConfirmed(t *testing.T) {
	orders := new(MockOrderRepository)
	broker := events.NewMemoryBroker(nil)
	svc := NewOrderService(orders, new(MockMenuReader), new(MockRewardWriter), broker, audit.NewService(nil), nil, nil)

	tenantID := uuid.New()
	pending := &models.Order{ID: uuid.New(), TenantID: tenantID, ShortID: "a1b2c3", Status: models.OrderStatusPending}
	cancelled := &models.Order{ID: pending.ID, TenantID: tenantID, ShortID: "a1b2c3", Status: models.OrderStatusCancelled}

	// The order is cancelled between the read and the conditional update.
	orders.On("GetByID", mock.Anything, tenantID, pending.ID).Return(pending, nil).Once()
	orders.On("SetPaymentRef", mock.Anything, tenantID, pending.ID, "pay_123").Return(nil)
	orders.On("UpdateStatus", mock.Anything, tenantID, pending.ID,
		models.OrderStatusPending, models.OrderStatusConfirmed).Return(data.ErrStaleStatus)
	orders.On("GetByID", mock.Anything, tenantID, pending.ID).Return(cancelled, nil).Once()

	sub, release, err := broker.Subscribe(context.Background(), tenantID)
	require.NoError(t, err)
	defer release()

	got, err := svc.MarkPaid(context.Background(), tenantID, pending.ID, "pay_123")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	assert.Equal(t, "pay_123", got.PaymentRef)

	// No status_changed event claims a confirmation that never happened.
	assert.Len(t, sub, 0)
}

func TestCancelFromTerminalStateRejected(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := newTestOrderService(orders, new(MockMenuReader), new(MockRewardWriter))

	tenantID := uuid.New()
	order := &models.Order{ID: uuid.New(), TenantID: tenantID, Status: models.OrderStatusCompleted}

	orders.On("GetByID", mock.Anything, tenantID, order.ID).Return(order, nil)

	_, err := svc.UpdateStatus(context.Background(), tenantID, order.ID,
		models.OrderStatusCancelled, uuid.New(), "127.0.0.1")

	var validationErr models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
