package data

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"alessacloud/internal/models"
)

// MenuRepository handles database operations for menu categories and items.
// All methods are tenant-scoped; see OrderRepository for the rationale.
type MenuRepository struct {
	db *pg.DB
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db *pg.DB) *MenuRepository {
	return &MenuRepository{
		db: db,
	}
}

// ListCategories retrieves the tenant's categories with their items
func (r *MenuRepository) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]*models.MenuCategory, error) {
	var categories []*models.MenuCategory

	err := r.db.ModelContext(ctx, &categories).
		Where("menu_category.tenant_id = ? AND menu_category.deleted_at IS NULL", tenantID).
		Relation("Items", func(q *pg.Query) (*pg.Query, error) {
			return q.Where("deleted_at IS NULL").Order("sort_order ASC"), nil
		}).
		Order("sort_order ASC").
		Select()

	if err != nil {
		return nil, err
	}

	return categories, nil
}

// CreateCategory inserts a new category
func (r *MenuRepository) CreateCategory(ctx context.Context, c *models.MenuCategory) error {
	_, err := r.db.ModelContext(ctx, c).Insert()
	return err
}

// UpdateCategory updates a category owned by the tenant
func (r *MenuRepository) UpdateCategory(ctx context.Context, tenantID uuid.UUID, c *models.MenuCategory) error {
	c.UpdatedAt = time.Now()

	res, err := r.db.ModelContext(ctx, c).
		WherePK().
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteCategory soft-deletes a category owned by the tenant
func (r *MenuRepository) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	now := time.Now()

	res, err := r.db.ModelContext(ctx, (*models.MenuCategory)(nil)).
		Set("deleted_at = ?", now).
		Set("updated_at = ?", now).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GetItem retrieves a menu item owned by the tenant
func (r *MenuRepository) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*models.MenuItem, error) {
	item := new(models.MenuItem)
	err := r.db.ModelContext(ctx, item).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return item, nil
}

// GetItems retrieves the given menu items owned by the tenant
func (r *MenuRepository) GetItems(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*models.MenuItem, error) {
	var items []*models.MenuItem

	if len(ids) == 0 {
		return items, nil
	}

	err := r.db.ModelContext(ctx, &items).
		Where("tenant_id = ? AND id IN (?) AND deleted_at IS NULL", tenantID, pg.In(ids)).
		Select()

	if err != nil {
		return nil, err
	}

	return items, nil
}

// CreateItem inserts a new menu item
func (r *MenuRepository) CreateItem(ctx context.Context, item *models.MenuItem) error {
	_, err := r.db.ModelContext(ctx, item).Insert()
	return err
}

// UpdateItem updates a menu item owned by the tenant
func (r *MenuRepository) UpdateItem(ctx context.Context, tenantID uuid.UUID, item *models.MenuItem) error {
	item.UpdatedAt = time.Now()

	res, err := r.db.ModelContext(ctx, item).
		WherePK().
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteItem soft-deletes a menu item owned by the tenant
func (r *MenuRepository) DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error {
	now := time.Now()

	res, err := r.db.ModelContext(ctx, (*models.MenuItem)(nil)).
		Set("deleted_at = ?", now).
		Set("updated_at = ?", now).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		Update()

	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
