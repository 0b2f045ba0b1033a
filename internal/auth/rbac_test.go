package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alessacloud/internal/models"
)

func TestRBACRoleGrants(t *testing.T) {
	rbac, err := NewRBAC()
	require.NoError(t, err)

	tests := []struct {
		name     string
		role     models.Role
		resource string
		action   string
		allowed  bool
	}{
		{"accountant reads orders", models.RoleAccountant, "orders", "read", true},
		{"accountant reads audit", models.RoleAccountant, "audit", "read", true},
		{"accountant cannot write orders", models.RoleAccountant, "orders", "write", false},
		{"accountant cannot touch menu", models.RoleAccountant, "menu", "write", false},
		{"accountant cannot watch stream", models.RoleAccountant, "stream", "read", false},

		{"admin writes menu", models.RoleAdmin, "menu", "write", true},
		{"admin writes orders", models.RoleAdmin, "orders", "write", true},
		{"admin writes settings", models.RoleAdmin, "settings", "write", true},
		{"admin watches stream", models.RoleAdmin, "stream", "read", true},
		{"admin inherits accountant grants", models.RoleAdmin, "audit", "read", true},
		{"admin cannot manage tenants", models.RoleAdmin, "tenants", "write", false},

		{"super admin manages tenants", models.RoleSuperAdmin, "tenants", "write", true},
		{"super admin inherits admin grants", models.RoleSuperAdmin, "menu", "write", true},
		{"super admin inherits accountant grants", models.RoleSuperAdmin, "audit", "read", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, rbac.Check(tt.role, tt.resource, tt.action))
		})
	}
}

func TestRBACUnknownRoleDenied(t *testing.T) {
	rbac, err := NewRBAC()
	require.NoError(t, err)

	assert.False(t, rbac.Check(models.Role("intern"), "orders", "read"))
}
