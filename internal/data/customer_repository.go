package data

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"alessacloud/internal/models"
)

// CustomerRepository handles database operations for customers and their
// sessions. All methods are tenant-scoped.
type CustomerRepository struct {
	db *pg.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db: db,
	}
}

// GetByID retrieves a customer owned by the tenant
func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	customer := new(models.Customer)
	err := r.db.ModelContext(ctx, customer).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return customer, nil
}

// GetByEmail retrieves a customer by email within the tenant. Emails are
// only unique per tenant.
func (r *CustomerRepository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Customer, error) {
	customer := new(models.Customer)
	err := r.db.ModelContext(ctx, customer).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return customer, nil
}

// Create inserts a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	_, err := r.db.ModelContext(ctx, customer).Insert()
	if err != nil {
		if isDuplicateError(err, "customers_tenant_id_email_key") {
			return ErrDuplicateRecord
		}
		return err
	}

	return nil
}

// Update updates a customer owned by the tenant
func (r *CustomerRepository) Update(ctx context.Context, tenantID uuid.UUID, customer *models.Customer) error {
	customer.UpdatedAt = time.Now()

	res, err := r.db.ModelContext(ctx, customer).
		WherePK().
		Where("tenant_id = ?", tenantID).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ReplaceSession deletes the customer's existing sessions and inserts the
// new one in a single transaction. Sessions are single-use-replaceable.
func (r *CustomerRepository) ReplaceSession(ctx context.Context, session *models.CustomerSession) error {
	return r.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		_, err := tx.ModelContext(ctx, (*models.CustomerSession)(nil)).
			Where("tenant_id = ? AND customer_id = ?", session.TenantID, session.CustomerID).
			Delete()
		if err != nil {
			return err
		}

		_, err = tx.ModelContext(ctx, session).Insert()
		return err
	})
}

// GetSessionByTokenHash retrieves a live session by its token hash, scoped
// to the tenant
func (r *CustomerRepository) GetSessionByTokenHash(ctx context.Context, tenantID uuid.UUID, tokenHash string) (*models.CustomerSession, error) {
	session := new(models.CustomerSession)
	err := r.db.ModelContext(ctx, session).
		Where("tenant_id = ? AND token_hash = ?", tenantID, tokenHash).
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return session, nil
}

// DeleteSessions removes all sessions for a customer (logout)
func (r *CustomerRepository) DeleteSessions(ctx context.Context, tenantID, customerID uuid.UUID) error {
	_, err := r.db.ModelContext(ctx, (*models.CustomerSession)(nil)).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Delete()

	return err
}

// AddRewardPoints increments a customer's reward balance
func (r *CustomerRepository) AddRewardPoints(ctx context.Context, tenantID, customerID uuid.UUID, points int) error {
	res, err := r.db.ModelContext(ctx, (*models.Customer)(nil)).
		Set("reward_points = reward_points + ?", points).
		Set("updated_at = ?", time.Now()).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
