package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"alessacloud/internal/audit"
	"alessacloud/internal/data"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// ErrSlugTaken is returned when a tenant slug or custom domain is already
// in use
var ErrSlugTaken = errors.New("slug or custom domain is already in use")

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,61}[a-z0-9])?$`)

// TenantRepositoryInterface is the data access the tenant service needs
type TenantRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, page, pageSize int) ([]*models.Tenant, int, error)
	Create(ctx context.Context, t *models.Tenant) error
	Update(ctx context.Context, t *models.Tenant) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	UpsertSettings(ctx context.Context, s *models.TenantSettings) error
	UpsertIntegration(ctx context.Context, i *models.TenantIntegration) error
}

// TenantInput is a request to create or update a tenant
type TenantInput struct {
	Slug         string
	Name         string
	CustomDomain string
	ContactEmail string
	ContactPhone string
	Branding     models.Branding
	Features     models.FeatureFlags
}

// TenantService handles platform-level tenant provisioning and the
// per-tenant settings surface
type TenantService struct {
	repo     TenantRepositoryInterface
	auditSvc *audit.Service
	logger   *observability.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(repo TenantRepositoryInterface, auditSvc *audit.Service, logger *observability.Logger) *TenantService {
	return &TenantService{
		repo:     repo,
		auditSvc: auditSvc,
		logger:   logger,
	}
}

// Get retrieves a tenant by id
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves a paginated list of tenants
func (s *TenantService) List(ctx context.Context, page, pageSize int) ([]*models.Tenant, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return s.repo.List(ctx, page, pageSize)
}

// Create provisions a new tenant in pending status
func (s *TenantService) Create(ctx context.Context, input TenantInput, actorID uuid.UUID, ipAddress string) (*models.Tenant, error) {
	if err := validateTenantInput(input); err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		ID:           uuid.New(),
		Slug:         strings.ToLower(strings.TrimSpace(input.Slug)),
		Name:         strings.TrimSpace(input.Name),
		CustomDomain: strings.ToLower(strings.TrimSpace(input.CustomDomain)),
		ContactEmail: normalizeEmail(input.ContactEmail),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		Branding:     input.Branding,
		Features:     input.Features,
		Status:       models.TenantStatusPending,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		if errors.Is(err, data.ErrDuplicateRecord) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	s.auditSvc.LogAction(ctx, tenant.ID, actorID, models.AuditActionCreate,
		"tenant", tenant.ID.String(), "Provisioned tenant "+tenant.Slug, ipAddress)

	return tenant, nil
}

// Update applies changes to an existing tenant
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, input TenantInput, actorID uuid.UUID, ipAddress string) (*models.Tenant, error) {
	if err := validateTenantInput(input); err != nil {
		return nil, err
	}

	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *tenant
	tenant.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	tenant.Name = strings.TrimSpace(input.Name)
	tenant.CustomDomain = strings.ToLower(strings.TrimSpace(input.CustomDomain))
	tenant.ContactEmail = normalizeEmail(input.ContactEmail)
	tenant.ContactPhone = strings.TrimSpace(input.ContactPhone)
	tenant.Branding = input.Branding
	tenant.Features = input.Features

	if err := s.repo.Update(ctx, tenant); err != nil {
		if errors.Is(err, data.ErrDuplicateRecord) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	s.auditSvc.LogChange(ctx, tenant.ID, actorID, models.AuditActionUpdate,
		"tenant", tenant.ID.String(), "Updated tenant "+tenant.Slug,
		&before, tenant, ipAddress)

	return tenant, nil
}

// SetStatus moves a tenant between lifecycle statuses
func (s *TenantService) SetStatus(ctx context.Context, id uuid.UUID, status models.TenantStatus, actorID uuid.UUID, ipAddress string) error {
	switch status {
	case models.TenantStatusActive, models.TenantStatusPending, models.TenantStatusSuspended:
	default:
		return models.NewValidationError("unknown tenant status: " + string(status))
	}

	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	before := tenant.Status
	tenant.Status = status
	if err := s.repo.Update(ctx, tenant); err != nil {
		return err
	}

	s.auditSvc.LogChange(ctx, id, actorID, models.AuditActionUpdate,
		"tenant", id.String(), "Changed tenant status",
		before, status, ipAddress)

	return nil
}

// Deactivate suspends a tenant so it no longer serves storefront traffic
func (s *TenantService) Deactivate(ctx context.Context, id, actorID uuid.UUID, ipAddress string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, id, actorID, models.AuditActionDelete,
		"tenant", id.String(), "Suspended tenant", ipAddress)

	return nil
}

// UpdateSettings upserts the tenant's operational settings
func (s *TenantService) UpdateSettings(ctx context.Context, tenantID uuid.UUID, settings *models.TenantSettings, actorID uuid.UUID, ipAddress string) error {
	if settings.TaxRate < 0 || settings.TaxRate > 1 {
		return models.NewValidationError("tax rate must be between 0 and 1")
	}
	if settings.PlatformFeeRate < 0 || settings.PlatformFeeRate > 1 {
		return models.NewValidationError("platform fee rate must be between 0 and 1")
	}
	if settings.DeliveryFee < 0 {
		return models.NewValidationError("delivery fee cannot be negative")
	}
	if settings.PrepTimeMinutes < 0 {
		return models.NewValidationError("prep time cannot be negative")
	}

	settings.TenantID = tenantID
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionUpdate,
		"settings", tenantID.String(), "Updated tenant settings", ipAddress)

	return nil
}

// UpdateIntegration upserts the tenant's third-party integration record
func (s *TenantService) UpdateIntegration(ctx context.Context, tenantID uuid.UUID, integration *models.TenantIntegration, actorID uuid.UUID, ipAddress string) error {
	integration.TenantID = tenantID
	if err := s.repo.UpsertIntegration(ctx, integration); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, tenantID, actorID, models.AuditActionUpdate,
		"integrations", tenantID.String(), "Updated tenant integrations", ipAddress)

	return nil
}

func validateTenantInput(input TenantInput) error {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugPattern.MatchString(slug) {
		return models.NewValidationError("slug must be lowercase letters, digits, and hyphens")
	}
	if strings.TrimSpace(input.Name) == "" {
		return models.NewValidationError("tenant name is required")
	}
	if !strings.Contains(input.ContactEmail, "@") {
		return models.NewValidationError("a valid contact email is required")
	}
	if domain := strings.TrimSpace(input.CustomDomain); domain != "" && !strings.Contains(domain, ".") {
		return models.NewValidationError("custom domain must be a fully qualified hostname")
	}
	return nil
}

var _ TenantRepositoryInterface = (*data.TenantRepository)(nil)
