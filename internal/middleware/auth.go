package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"alessacloud/internal/auth"
	"alessacloud/internal/models"
	"alessacloud/internal/tenant"
)

// Context keys for authenticated staff identity
const (
	StaffClaimsKey = "staff_claims"
	StaffIDKey     = "staff_id"
	StaffRoleKey   = "staff_role"
)

// AuthMiddleware guards back-office routes with staff JWTs
type AuthMiddleware struct {
	authSvc *auth.Service
	rbac    *auth.RBAC
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *auth.Service, rbac *auth.RBAC) *AuthMiddleware {
	return &AuthMiddleware{
		authSvc: authSvc,
		rbac:    rbac,
	}
}

// Authenticate validates the bearer token and stores the claims on the
// context. Tenant-bound staff are additionally checked against the
// resolved tenant so a token from one restaurant cannot reach another.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		// Tenant-bound staff may only act inside their own tenant. On
		// platform-level routes with no resolved tenant they are rejected
		// outright.
		if claims.TenantID != "" {
			v, resolved := c.Get(tenant.ContextKey)
			if !resolved {
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
				c.Abort()
				return
			}
			if claims.TenantID != v.(*models.Tenant).ID.String() {
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
				c.Abort()
				return
			}
		}

		c.Set(StaffClaimsKey, claims)
		c.Set(StaffIDKey, claims.StaffID)
		c.Set(StaffRoleKey, claims.Role)

		c.Next()
	}
}

// RequirePermission gates a route on an RBAC resource/action pair
func (m *AuthMiddleware) RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(StaffRoleKey)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		if !m.rbac.Check(models.Role(role.(string)), resource, action) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole gates a route on an exact role
func (m *AuthMiddleware) RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(StaffRoleKey)
		if !exists || models.Role(role.(string)) != required {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// StaffClaims retrieves the authenticated staff claims from the context.
// Returns nil when Authenticate did not run.
func StaffClaims(c *gin.Context) *auth.Claims {
	v, exists := c.Get(StaffClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// StaffActorID returns the authenticated staff user's id, or uuid.Nil
func StaffActorID(c *gin.Context) uuid.UUID {
	claims := StaffClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(claims.StaffID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}
