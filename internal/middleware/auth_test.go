package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"alessacloud/internal/models"
)

func roleTestEngine(mw *AuthMiddleware, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/tenants", func(c *gin.Context) {
		if role != "" {
			c.Set(StaffRoleKey, string(role))
		}
	}, mw.RequireRole(models.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return engine
}

func TestRequireRoleIsExact(t *testing.T) {
	mw := NewAuthMiddleware(nil, nil)

	tests := []struct {
		name   string
		role   models.Role
		status int
	}{
		{"super admin passes", models.RoleSuperAdmin, http.StatusOK},
		// Role hierarchy does not apply here: platform routes want the
		// exact role, nothing below it.
		{"admin is rejected", models.RoleAdmin, http.StatusForbidden},
		{"accountant is rejected", models.RoleAccountant, http.StatusForbidden},
		{"unauthenticated is rejected", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := roleTestEngine(mw, tt.role)

			req := httptest.NewRequest(http.MethodGet, "/tenants", nil)
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
