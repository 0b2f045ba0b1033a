package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"alessacloud/internal/audit"
	"alessacloud/internal/cache"
	"alessacloud/internal/data"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// menuCacheTTL bounds staleness of the cached storefront menu. Writes
// invalidate eagerly, so this only covers invalidation failures.
const menuCacheTTL = time.Minute

// MenuRepositoryInterface is the data access the menu service needs
type MenuRepositoryInterface interface {
	ListCategories(ctx context.Context, tenantID uuid.UUID) ([]*models.MenuCategory, error)
	CreateCategory(ctx context.Context, c *models.MenuCategory) error
	UpdateCategory(ctx context.Context, tenantID uuid.UUID, c *models.MenuCategory) error
	DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error
	GetItem(ctx context.Context, tenantID, id uuid.UUID) (*models.MenuItem, error)
	CreateItem(ctx context.Context, item *models.MenuItem) error
	UpdateItem(ctx context.Context, tenantID uuid.UUID, item *models.MenuItem) error
	DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error
}

// MenuService handles menu reads and back-office menu management
type MenuService struct {
	repo     MenuRepositoryInterface
	cache    *cache.Service
	auditSvc *audit.Service
	logger   *observability.Logger
}

// NewMenuService creates a new menu service
func NewMenuService(repo MenuRepositoryInterface, cacheSvc *cache.Service, auditSvc *audit.Service, logger *observability.Logger) *MenuService {
	return &MenuService{
		repo:     repo,
		cache:    cacheSvc,
		auditSvc: auditSvc,
		logger:   logger,
	}
}

// ListMenu returns the tenant's menu, served from cache when possible
func (s *MenuService) ListMenu(ctx context.Context, tenantID uuid.UUID) ([]*models.MenuCategory, error) {
	var categories []*models.MenuCategory

	key := cache.MenuKey(tenantID)
	if err := s.cache.Get(ctx, key, &categories); err == nil {
		return categories, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Error("Menu cache read failed", err)
	}

	categories, err := s.repo.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	if err := s.cache.Set(ctx, key, categories, menuCacheTTL); err != nil {
		s.logger.Error("Menu cache write failed", err)
	}

	return categories, nil
}

// CreateCategory creates a menu category for the tenant
func (s *MenuService) CreateCategory(ctx context.Context, tenantID uuid.UUID, name string, sortOrder int, actorID uuid.UUID, ipAddress string) (*models.MenuCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("category name is required")
	}

	category := &models.MenuCategory{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		SortOrder: sortOrder,
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID)
	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionCreate,
		"menu_category", category.ID.String(), "Created category "+name, ipAddress)

	return category, nil
}

// UpdateCategory updates a category owned by the tenant
func (s *MenuService) UpdateCategory(ctx context.Context, tenantID uuid.UUID, category *models.MenuCategory, actorID uuid.UUID, ipAddress string) error {
	if strings.TrimSpace(category.Name) == "" {
		return models.NewValidationError("category name is required")
	}

	if err := s.repo.UpdateCategory(ctx, tenantID, category); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID)
	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionUpdate,
		"menu_category", category.ID.String(), "Updated category "+category.Name, ipAddress)

	return nil
}

// DeleteCategory soft-deletes a category owned by the tenant
func (s *MenuService) DeleteCategory(ctx context.Context, tenantID, id, actorID uuid.UUID, ipAddress string) error {
	if err := s.repo.DeleteCategory(ctx, tenantID, id); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID)
	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionDelete,
		"menu_category", id.String(), "Deleted category", ipAddress)

	return nil
}

// GetItem retrieves a menu item owned by the tenant
func (s *MenuService) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*models.MenuItem, error) {
	return s.repo.GetItem(ctx, tenantID, id)
}

// CreateItem creates a menu item for the tenant
func (s *MenuService) CreateItem(ctx context.Context, tenantID uuid.UUID, item *models.MenuItem, actorID uuid.UUID, ipAddress string) error {
	if err := validateItem(item); err != nil {
		return err
	}

	item.ID = uuid.New()
	item.TenantID = tenantID

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID)
	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionCreate,
		"menu_item", item.ID.String(), "Created item "+item.Name, ipAddress)

	return nil
}

// UpdateItem updates a menu item owned by the tenant
func (s *MenuService) UpdateItem(ctx context.Context, tenantID uuid.UUID, item *models.MenuItem, actorID uuid.UUID, ipAddress string) error {
	if err := validateItem(item); err != nil {
		return err
	}

	if err := s.repo.UpdateItem(ctx, tenantID, item); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID)
	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionUpdate,
		"menu_item", item.ID.String(), "Updated item "+item.Name, ipAddress)

	return nil
}

// DeleteItem soft-deletes a menu item owned by the tenant
func (s *MenuService) DeleteItem(ctx context.Context, tenantID, id, actorID uuid.UUID, ipAddress string) error {
	if err := s.repo.DeleteItem(ctx, tenantID, id); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID)
	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionDelete,
		"menu_item", id.String(), "Deleted item", ipAddress)

	return nil
}

// invalidate drops the tenant's cached menu after any write
func (s *MenuService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.MenuKey(tenantID)); err != nil {
		s.logger.Error("Menu cache invalidation failed", err)
	}
}

func validateItem(item *models.MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return models.NewValidationError("item name is required")
	}
	if item.Price < 0 {
		return models.NewValidationError("item price cannot be negative")
	}
	if item.CategoryID == uuid.Nil {
		return models.NewValidationError("item category is required")
	}
	return nil
}

// ensure the concrete repository satisfies the interface
var _ MenuRepositoryInterface = (*data.MenuRepository)(nil)
