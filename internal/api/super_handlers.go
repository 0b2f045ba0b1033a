package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"alessacloud/internal/audit"
	"alessacloud/internal/middleware"
	"alessacloud/internal/models"
	"alessacloud/internal/services"
)

// SuperHandlers serves the platform operator surface
type SuperHandlers struct {
	tenantSvc *services.TenantService
	auditSvc  *audit.Service
}

// NewSuperHandlers creates new super-admin handlers
func NewSuperHandlers(tenantSvc *services.TenantService, auditSvc *audit.Service) *SuperHandlers {
	return &SuperHandlers{
		tenantSvc: tenantSvc,
		auditSvc:  auditSvc,
	}
}

// TenantRequest is the tenant provisioning payload
type TenantRequest struct {
	Slug         string              `json:"slug" binding:"required"`
	Name         string              `json:"name" binding:"required"`
	CustomDomain string              `json:"customDomain"`
	ContactEmail string              `json:"contactEmail" binding:"required"`
	ContactPhone string              `json:"contactPhone"`
	Branding     models.Branding     `json:"branding"`
	Features     models.FeatureFlags `json:"features"`
}

func (req *TenantRequest) toInput() services.TenantInput {
	return services.TenantInput{
		Slug:         req.Slug,
		Name:         req.Name,
		CustomDomain: req.CustomDomain,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Branding:     req.Branding,
		Features:     req.Features,
	}
}

// ListTenants returns a paginated list of all tenants
func (h *SuperHandlers) ListTenants(c *gin.Context) {
	pagination := GetDefaultPagination(c)

	tenants, total, err := h.tenantSvc.List(c.Request.Context(), pagination.Page, pagination.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenants":   tenants,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// GetTenant returns one tenant with its settings and integrations
func (h *SuperHandlers) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid tenant id"})
		return
	}

	t, err := h.tenantSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// CreateTenant provisions a new tenant
func (h *SuperHandlers) CreateTenant(c *gin.Context) {
	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	t, err := h.tenantSvc.Create(c.Request.Context(), req.toInput(),
		middleware.StaffActorID(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// UpdateTenant applies changes to an existing tenant
func (h *SuperHandlers) UpdateTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid tenant id"})
		return
	}

	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	t, err := h.tenantSvc.Update(c.Request.Context(), id, req.toInput(),
		middleware.StaffActorID(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// TenantStatusRequest carries the target tenant status
type TenantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetTenantStatus moves a tenant between lifecycle statuses
func (h *SuperHandlers) SetTenantStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid tenant id"})
		return
	}

	var req TenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	if err := h.tenantSvc.SetStatus(c.Request.Context(), id, models.TenantStatus(req.Status),
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// DeactivateTenant suspends a tenant. Tenants are never hard-deleted.
func (h *SuperHandlers) DeactivateTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid tenant id"})
		return
	}

	if err := h.tenantSvc.Deactivate(c.Request.Context(), id,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tenant suspended"})
}

// ListAuditLogs returns the audit trail for a given tenant. Audit rows are
// tenant-scoped, so the tenant id is required here too.
func (h *SuperHandlers) ListAuditLogs(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "tenant_id query parameter is required"})
		return
	}

	pagination := GetDefaultPagination(c)

	logs, total, err := h.auditSvc.List(c.Request.Context(), tenantID, pagination.Page, pagination.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":      logs,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}
