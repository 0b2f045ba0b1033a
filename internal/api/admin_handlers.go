package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"alessacloud/internal/audit"
	"alessacloud/internal/auth"
	"alessacloud/internal/middleware"
	"alessacloud/internal/models"
	"alessacloud/internal/payments"
	"alessacloud/internal/services"
	"alessacloud/internal/storage"
	"alessacloud/internal/tenant"
)

// AdminHandlers serves the tenant back-office surface
type AdminHandlers struct {
	authSvc       *auth.Service
	menuSvc       *services.MenuService
	orderSvc      *services.OrderService
	tenantSvc     *services.TenantService
	auditSvc      *audit.Service
	paymentClient *payments.Client
	storageSvc    *storage.S3Service
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(authSvc *auth.Service, menuSvc *services.MenuService, orderSvc *services.OrderService, tenantSvc *services.TenantService, auditSvc *audit.Service, paymentClient *payments.Client, storageSvc *storage.S3Service) *AdminHandlers {
	return &AdminHandlers{
		authSvc:       authSvc,
		menuSvc:       menuSvc,
		orderSvc:      orderSvc,
		tenantSvc:     tenantSvc,
		auditSvc:      auditSvc,
		paymentClient: paymentClient,
		storageSvc:    storageSvc,
	}
}

// Login authenticates a staff user
func (h *AdminHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	tokens, err := h.authSvc.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a refresh token for a new token pair
func (h *AdminHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	tokens, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// CategoryRequest is the menu category payload
type CategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

// CreateCategory creates a menu category
func (h *AdminHandlers) CreateCategory(c *gin.Context) {
	t := tenant.RequireTenant(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	category, err := h.menuSvc.CreateCategory(c.Request.Context(), t.ID, req.Name, req.SortOrder,
		middleware.StaffActorID(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates a menu category
func (h *AdminHandlers) UpdateCategory(c *gin.Context) {
	t := tenant.RequireTenant(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid category id"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	category := &models.MenuCategory{
		ID:        id,
		TenantID:  t.ID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	}

	if err := h.menuSvc.UpdateCategory(c.Request.Context(), t.ID, category,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory soft-deletes a menu category
func (h *AdminHandlers) DeleteCategory(c *gin.Context) {
	t := tenant.RequireTenant(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid category id"})
		return
	}

	if err := h.menuSvc.DeleteCategory(c.Request.Context(), t.ID, id,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

// ItemRequest is the menu item payload
type ItemRequest struct {
	CategoryID  string  `json:"categoryId" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageKey    string  `json:"imageKey"`
	Available   *bool   `json:"available"`
	SortOrder   int     `json:"sortOrder"`
}

func (req *ItemRequest) toModel(tenantID uuid.UUID) (*models.MenuItem, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, models.NewValidationError("invalid category id")
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	return &models.MenuItem{
		TenantID:    tenantID,
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageKey:    req.ImageKey,
		Available:   available,
		SortOrder:   req.SortOrder,
	}, nil
}

// CreateItem creates a menu item
func (h *AdminHandlers) CreateItem(c *gin.Context) {
	t := tenant.RequireTenant(c)

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	item, err := req.toModel(t.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.menuSvc.CreateItem(c.Request.Context(), t.ID, item,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateItem updates a menu item
func (h *AdminHandlers) UpdateItem(c *gin.Context) {
	t := tenant.RequireTenant(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid item id"})
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	item, err := req.toModel(t.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	item.ID = id

	if err := h.menuSvc.UpdateItem(c.Request.Context(), t.ID, item,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem soft-deletes a menu item
func (h *AdminHandlers) DeleteItem(c *gin.Context) {
	t := tenant.RequireTenant(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid item id"})
		return
	}

	if err := h.menuSvc.DeleteItem(c.Request.Context(), t.ID, id,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}

// PresignRequest asks for an image upload slot
type PresignRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// PresignItemImage issues a presigned upload URL for a menu image
func (h *AdminHandlers) PresignItemImage(c *gin.Context) {
	t := tenant.RequireTenant(c)

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	ticket, err := h.storageSvc.PresignMenuImageUpload(t.Slug, req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ListOrders returns the tenant's orders, optionally filtered by status
func (h *AdminHandlers) ListOrders(c *gin.Context) {
	t := tenant.RequireTenant(c)
	pagination := GetDefaultPagination(c)

	status := models.OrderStatus(c.Query("status"))

	orders, total, err := h.orderSvc.List(c.Request.Context(), t.ID, status, pagination.Page, pagination.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":    orders,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// GetOrder returns one of the tenant's orders
func (h *AdminHandlers) GetOrder(c *gin.Context) {
	t := tenant.RequireTenant(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid order id"})
		return
	}

	order, err := h.orderSvc.Get(c.Request.Context(), t.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// StatusRequest carries the target order status
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus moves an order through its lifecycle
func (h *AdminHandlers) UpdateOrderStatus(c *gin.Context) {
	t := tenant.RequireTenant(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid order id"})
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	order, err := h.orderSvc.UpdateStatus(c.Request.Context(), t.ID, id,
		models.OrderStatus(req.Status), middleware.StaffActorID(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// RefundRequest carries an optional partial refund amount
type RefundRequest struct {
	Amount float64 `json:"amount"`
}

// RefundOrder refunds a paid order and cancels it when still open
func (h *AdminHandlers) RefundOrder(c *gin.Context) {
	t := tenant.RequireTenant(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid order id"})
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	order, err := h.orderSvc.Get(c.Request.Context(), t.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if order.PaymentRef == "" {
		c.JSON(http.StatusConflict, ResponseError{Error: "order has no captured payment"})
		return
	}

	amount := req.Amount
	if amount <= 0 {
		amount = order.Total
	}

	if err := h.paymentClient.Refund(c.Request.Context(), order.PaymentRef, amount); err != nil {
		respondError(c, err)
		return
	}

	h.auditSvc.LogAction(c.Request.Context(), t.ID, middleware.StaffActorID(c),
		models.AuditActionUpdate, "order", order.ID.String(), "Refunded order "+order.ShortID, c.ClientIP())

	if !order.Status.IsTerminal() {
		order, err = h.orderSvc.UpdateStatus(c.Request.Context(), t.ID, id,
			models.OrderStatusCancelled, middleware.StaffActorID(c), c.ClientIP())
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, order)
}

// GetSettings returns the tenant's operational settings
func (h *AdminHandlers) GetSettings(c *gin.Context) {
	t := tenant.RequireTenant(c)

	settings := t.Settings
	if settings == nil {
		settings = &models.TenantSettings{TenantID: t.ID}
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings upserts the tenant's operational settings
func (h *AdminHandlers) UpdateSettings(c *gin.Context) {
	t := tenant.RequireTenant(c)

	var settings models.TenantSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	if err := h.tenantSvc.UpdateSettings(c.Request.Context(), t.ID, &settings,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateIntegrations upserts the tenant's third-party integration record
func (h *AdminHandlers) UpdateIntegrations(c *gin.Context) {
	t := tenant.RequireTenant(c)

	var integration models.TenantIntegration
	if err := c.ShouldBindJSON(&integration); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "invalid request: " + err.Error()})
		return
	}

	if err := h.tenantSvc.UpdateIntegration(c.Request.Context(), t.ID, &integration,
		middleware.StaffActorID(c), c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, integration)
}

// ListAuditLogs returns the tenant's audit trail, newest first
func (h *AdminHandlers) ListAuditLogs(c *gin.Context) {
	t := tenant.RequireTenant(c)
	pagination := GetDefaultPagination(c)

	logs, total, err := h.auditSvc.List(c.Request.Context(), t.ID, pagination.Page, pagination.PageSize)
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
