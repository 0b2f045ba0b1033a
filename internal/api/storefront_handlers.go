package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alessacloud/internal/models"
	"alessacloud/internal/services"
	"alessacloud/internal/storage"
	"alessacloud/internal/tenant"
)

// StorefrontHandlers serves the public, unauthenticated storefront surface
type StorefrontHandlers struct {
	menuSvc    *services.MenuService
	storageSvc *storage.S3Service
}

// NewStorefrontHandlers creates new storefront handlers
func NewStorefrontHandlers(menuSvc *services.MenuService, storageSvc *storage.S3Service) *StorefrontHandlers {
	return &StorefrontHandlers{
		menuSvc:    menuSvc,
		storageSvc: storageSvc,
	}
}

// StorefrontResponse is the tenant's public profile
type StorefrontResponse struct {
	Slug         string               `json:"slug"`
	Name         string               `json:"name"`
	Branding     models.Branding      `json:"branding"`
	Features     models.FeatureFlags  `json:"features"`
	ContactPhone string               `json:"contactPhone,omitempty"`
	Hours        models.OperatingHours `json:"hours"`
	PrepMinutes  int                  `json:"prepMinutes"`
	Currency     string               `json:"currency"`
}

// GetStorefront returns the resolved tenant's public profile. Suspended
// tenants are hidden from storefront traffic.
func (h *StorefrontHandlers) GetStorefront(c *gin.Context) {
	t := tenant.RequireTenant(c)
	if !t.IsActive() {
		c.JSON(http.StatusNotFound, ResponseError{Error: "tenant not found"})
		return
	}

	resp := StorefrontResponse{
		Slug:         t.Slug,
		Name:         t.Name,
		Branding:     t.Branding,
		Features:     t.Features,
		ContactPhone: t.ContactPhone,
		Currency:     "USD",
	}
	if t.Settings != nil {
		resp.Hours = t.Settings.OperatingHours
		resp.PrepMinutes = t.Settings.PrepTimeMinutes
		resp.Currency = t.Settings.Currency
	}

	c.JSON(http.StatusOK, resp)
}

// MenuItemResponse is one purchasable item with its resolved image URL
type MenuItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Available   bool    `json:"available"`
}

// MenuCategoryResponse is one category with its items
type MenuCategoryResponse struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Items []MenuItemResponse `json:"items"`
}

// ListMenu returns the resolved tenant's menu
func (h *StorefrontHandlers) ListMenu(c *gin.Context) {
	t := tenant.RequireTenant(c)
	if !t.IsActive() {
		c.JSON(http.StatusNotFound, ResponseError{Error: "tenant not found"})
		return
	}

	categories, err := h.menuSvc.ListMenu(c.Request.Context(), t.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]MenuCategoryResponse, 0, len(categories))
	for _, category := range categories {
		cr := MenuCategoryResponse{
			ID:    category.ID.String(),
			Name:  category.Name,
			Items: make([]MenuItemResponse, 0, len(category.Items)),
		}
		for _, item := range category.Items {
			cr.Items = append(cr.Items, MenuItemResponse{
				ID:          item.ID.String(),
				Name:        item.Name,
				Description: item.Description,
				Price:       item.Price,
				ImageURL:    h.storageSvc.ObjectURL(item.ImageKey),
				Available:   item.Available,
			})
		}
		resp = append(resp, cr)
	}

	c.JSON(http.StatusOK, gin.H{"categories": resp})
}
