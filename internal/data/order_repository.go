package data

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"alessacloud/internal/models"
)

// OrderRepository handles database operations for orders.
//
// Every method takes the owning tenant's id and includes it in the filter
// predicate. There is deliberately no variant that omits it: short order ids
// are only unique within a tenant, and a lookup without the tenant filter
// could hand one tenant's customer another tenant's order.
type OrderRepository struct {
	db *pg.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db: db,
	}
}

// Create inserts an order and its line items in one transaction
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		if _, err := tx.ModelContext(ctx, order).Insert(); err != nil {
			if isDuplicateError(err, "orders_tenant_id_short_id_key") {
				return ErrDuplicateRecord
			}
			return err
		}

		for _, item := range order.Items {
			item.OrderID = order.ID
			if _, err := tx.ModelContext(ctx, item).Insert(); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByID retrieves an order with its items, scoped to the tenant
func (r *OrderRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	order := new(models.Order)
	err := r.db.ModelContext(ctx, order).
		Where("tenant_id = ? AND order.id = ?", tenantID, id).
		Relation("Items").
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return order, nil
}

// GetByShortID retrieves an order by its 6-character public identifier.
// Short ids collide across tenants, so the tenant filter is load-bearing.
func (r *OrderRepository) GetByShortID(ctx context.Context, tenantID uuid.UUID, shortID string) (*models.Order, error) {
	order := new(models.Order)
	err := r.db.ModelContext(ctx, order).
		Where("tenant_id = ? AND short_id = ?", tenantID, shortID).
		Relation("Items").
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return order, nil
}

// List retrieves a paginated list of the tenant's orders, optionally
// filtered by status
func (r *OrderRepository) List(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, page, pageSize int) ([]*models.Order, int, error) {
	var orders []*models.Order

	offset := (page - 1) * pageSize

	q := r.db.ModelContext(ctx, &orders).
		Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	total, err := q.Clone().Count()
	if err != nil {
		return nil, 0, err
	}

	err = q.
		Relation("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Select()

	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListOpen retrieves the tenant's non-terminal orders, oldest first. Used
// for the fulfillment stream's initial snapshot.
func (r *OrderRepository) ListOpen(ctx context.Context, tenantID uuid.UUID) ([]*models.Order, error) {
	var orders []*models.Order

	err := r.db.ModelContext(ctx, &orders).
		Where("tenant_id = ?", tenantID).
		Where("status NOT IN (?)", pg.In([]models.OrderStatus{
			models.OrderStatusCompleted,
			models.OrderStatusCancelled,
		})).
		Relation("Items").
		Order("created_at ASC").
		Select()

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus moves an order from one status to another. The expected
// current status is part of the WHERE clause so concurrent transitions
// resolve through the database rather than application locking; a stale
// expectation surfaces as ErrStaleStatus.
func (r *OrderRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to models.OrderStatus) error {
	res, err := r.db.ModelContext(ctx, (*models.Order)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", time.Now()).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, from).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		// Either the order doesn't exist for this tenant or its status
		// moved underneath us. Disambiguate for the caller.
		exists, err := r.db.ModelContext(ctx, (*models.Order)(nil)).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			Exists()
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStaleStatus
	}

	return nil
}

// SetPaymentRef records the payment provider's reference on an order
func (r *OrderRepository) SetPaymentRef(ctx context.Context, tenantID, id uuid.UUID, ref string) error {
	res, err := r.db.ModelContext(ctx, (*models.Order)(nil)).
		Set("payment_ref = ?", ref).
		Set("updated_at = ?", time.Now()).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
