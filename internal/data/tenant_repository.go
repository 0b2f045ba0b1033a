package data

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"alessacloud/internal/models"
)

// TenantRepository handles database operations for tenants and their
// satellite settings/integration records
type TenantRepository struct {
	db *pg.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *pg.DB) *TenantRepository {
	return &TenantRepository{
		db: db,
	}
}

// GetBySlug retrieves a tenant by its slug, with settings and integration
// loaded in the same round trip
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	t := new(models.Tenant)
	err := r.db.ModelContext(ctx, t).
		Where("tenant.slug = ?", slug).
		Relation("Settings").
		Relation("Integration").
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// GetByCustomDomain retrieves a tenant by its custom domain, with settings
// and integration loaded in the same round trip
func (r *TenantRepository) GetByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	t := new(models.Tenant)
	err := r.db.ModelContext(ctx, t).
		Where("tenant.custom_domain = ?", domain).
		Relation("Settings").
		Relation("Integration").
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// GetByID retrieves a tenant by its ID
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t := new(models.Tenant)
	err := r.db.ModelContext(ctx, t).
		Where("tenant.id = ?", id).
		Relation("Settings").
		Relation("Integration").
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// List retrieves a paginated list of tenants
func (r *TenantRepository) List(ctx context.Context, page, pageSize int) ([]*models.Tenant, int, error) {
	var tenants []*models.Tenant

	offset := (page - 1) * pageSize

	total, err := r.db.ModelContext(ctx, &models.Tenant{}).Count()
	if err != nil {
		return nil, 0, err
	}

	err = r.db.ModelContext(ctx, &tenants).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Select()

	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	_, err := r.db.ModelContext(ctx, t).Insert()
	if err != nil {
		if isDuplicateError(err, "tenants_slug_key") || isDuplicateError(err, "tenants_custom_domain_key") {
			return ErrDuplicateRecord
		}
		return err
	}

	return nil
}

// Update updates an existing tenant
func (r *TenantRepository) Update(ctx context.Context, t *models.Tenant) error {
	t.UpdatedAt = time.Now()

	res, err := r.db.ModelContext(ctx, t).
		WherePK().
		Update()

	if err != nil {
		if isDuplicateError(err, "tenants_slug_key") || isDuplicateError(err, "tenants_custom_domain_key") {
			return ErrDuplicateRecord
		}
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Deactivate suspends a tenant. Tenants are never hard-deleted.
func (r *TenantRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ModelContext(ctx, (*models.Tenant)(nil)).
		Set("status = ?", models.TenantStatusSuspended).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpsertSettings creates or updates the tenant's settings record. Settings
// are created lazily on first write.
func (r *TenantRepository) UpsertSettings(ctx context.Context, s *models.TenantSettings) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.UpdatedAt = time.Now()

	_, err := r.db.ModelContext(ctx, s).
		OnConflict("(tenant_id) DO UPDATE").
		Set("operating_hours = EXCLUDED.operating_hours").
		Set("reward_rules = EXCLUDED.reward_rules").
		Set("prep_time_minutes = EXCLUDED.prep_time_minutes").
		Set("tax_rate = EXCLUDED.tax_rate").
		Set("delivery_fee = EXCLUDED.delivery_fee").
		Set("platform_fee_rate = EXCLUDED.platform_fee_rate").
		Set("currency = EXCLUDED.currency").
		Set("updated_at = EXCLUDED.updated_at").
		Insert()

	return err
}

// UpsertIntegration creates or updates the tenant's integration record
func (r *TenantRepository) UpsertIntegration(ctx context.Context, i *models.TenantIntegration) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.UpdatedAt = time.Now()

	_, err := r.db.ModelContext(ctx, i).
		OnConflict("(tenant_id) DO UPDATE").
		Set("payment_account_id = EXCLUDED.payment_account_id").
		Set("delivery_partner_id = EXCLUDED.delivery_partner_id").
		Set("dispatch_account_id = EXCLUDED.dispatch_account_id").
		Set("email_domain_id = EXCLUDED.email_domain_id").
		Set("webhook_secret = EXCLUDED.webhook_secret").
		Set("updated_at = EXCLUDED.updated_at").
		Insert()

	return err
}
