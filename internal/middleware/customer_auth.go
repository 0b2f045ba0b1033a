package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alessacloud/internal/models"
	"alessacloud/internal/services"
	"alessacloud/internal/tenant"
)

// CustomerKey is the context key for the authenticated customer
const CustomerKey = "authenticated_customer"

// CustomerAuthMiddleware guards storefront routes that need a logged-in
// customer. Tokens are opaque bearer tokens resolved against the
// tenant's session table, so a session issued by one restaurant is
// worthless at another.
type CustomerAuthMiddleware struct {
	customerAuth *services.CustomerAuthService
}

// NewCustomerAuthMiddleware creates a new customer auth middleware
func NewCustomerAuthMiddleware(customerAuth *services.CustomerAuthService) *CustomerAuthMiddleware {
	return &CustomerAuthMiddleware{
		customerAuth: customerAuth,
	}
}

// Authenticate resolves the bearer token to a customer within the
// resolved tenant
func (m *CustomerAuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := tenant.RequireTenant(c)

		customer, err := m.customerAuth.Authenticate(c.Request.Context(), t.ID, bearerToken(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set(CustomerKey, customer)
		c.Next()
	}
}

// Optional resolves the bearer token when one is present and valid, and
// lets the request through either way. Used on checkout so logged-in
// customers earn rewards without requiring an account to order.
func (m *CustomerAuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := tenant.RequireTenant(c)

		if token := bearerToken(c); token != "" {
			if customer, err := m.customerAuth.Authenticate(c.Request.Context(), t.ID, token); err == nil {
				c.Set(CustomerKey, customer)
			}
		}

		c.Next()
	}
}

// RequireCustomer retrieves the authenticated customer from the context.
// Panics if Authenticate did not run; routes using it must be registered
// behind the middleware.
func RequireCustomer(c *gin.Context) *models.Customer {
	v, exists := c.Get(CustomerKey)
	if !exists {
		panic("customer auth middleware did not run for " + c.Request.Method + " " + c.FullPath())
	}
	return v.(*models.Customer)
}
