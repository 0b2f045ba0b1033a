package tenant

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// Context and header keys for the resolved tenant
const (
	ContextKey = "resolved_tenant"

	// SlugHeader propagates the resolved slug to downstream handlers
	SlugHeader = "x-tenant-slug"

	// OverrideParam is the development/testing escape hatch
	OverrideParam = "tenant"
)

// Middleware resolves the tenant once per request from the Host header and
// stores the aggregate in the request context. Handlers read it back through
// RequireTenant; nothing re-resolves within a request.
type Middleware struct {
	parser   *HostParser
	resolver *Resolver
	logger   *observability.Logger
}

// NewMiddleware creates a new tenant resolution middleware
func NewMiddleware(parser *HostParser, resolver *Resolver, logger *observability.Logger) *Middleware {
	return &Middleware{
		parser:   parser,
		resolver: resolver,
		logger:   logger,
	}
}

// Resolve returns a handler that maps the inbound request to exactly one
// tenant. An unresolvable host is a terminal 404; there is no retry.
func (m *Middleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.Request.Host
		slug := m.parser.SlugFromHost(host, c.Query(OverrideParam))

		t, err := m.resolver.Resolve(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, ErrTenantNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error": "tenant not found",
				})
				return
			}
			m.logger.Error("Tenant resolution failed", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to resolve tenant",
			})
			return
		}

		c.Set(ContextKey, t)
		c.Request.Header.Set(SlugHeader, t.Slug)
		m.logger.TenantResolved(c.Request.Context(), host, t.Slug)

		c.Next()
	}
}

// RequireTenant returns the tenant resolved for the current request.
//
// It panics when the resolution middleware did not run: a handler executing
// without a tenant context is a security bug, not a recoverable condition,
// so this fails loud and lets gin's recovery middleware turn it into a 500.
func RequireTenant(c *gin.Context) *models.Tenant {
	v, ok := c.Get(ContextKey)
	if !ok {
		panic(fmt.Sprintf("tenant not resolved for %s %s: route is missing the tenant middleware", c.Request.Method, c.Request.URL.Path))
	}
	return v.(*models.Tenant)
}
