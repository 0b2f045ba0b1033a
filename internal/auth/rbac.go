package auth

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"alessacloud/internal/models"
)

// RBAC manages role-based access control for back-office routes
type RBAC struct {
	enforcer *casbin.Enforcer
	mutex    sync.RWMutex
}

// NewRBAC creates a new RBAC manager.
// The role hierarchy is super_admin > admin > accountant: each role
// inherits everything granted to the roles below it.
func NewRBAC() (*RBAC, error) {
	modelText := `
	[request_definition]
	r = sub, obj, act

	[policy_definition]
	p = sub, obj, act

	[role_definition]
	g = _, _

	[policy_effect]
	e = some(where (p.eft == allow))

	[matchers]
	m = g(r.sub, p.sub) && (p.obj == "*" || p.obj == r.obj) && (p.act == "*" || p.act == r.act)
	`

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to create RBAC model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create RBAC enforcer: %w", err)
	}

	if err := seedDefaultPolicies(enforcer); err != nil {
		return nil, fmt.Errorf("failed to seed RBAC policies: %w", err)
	}

	return &RBAC{
		enforcer: enforcer,
	}, nil
}

// seedDefaultPolicies installs the platform's role grants
func seedDefaultPolicies(e *casbin.Enforcer) error {
	policies := [][]string{
		// Accountants see financial data only.
		{string(models.RoleAccountant), "orders", "read"},
		{string(models.RoleAccountant), "audit", "read"},

		// Tenant admins run their back office.
		{string(models.RoleAdmin), "menu", "*"},
		{string(models.RoleAdmin), "orders", "*"},
		{string(models.RoleAdmin), "settings", "*"},
		{string(models.RoleAdmin), "integrations", "*"},
		{string(models.RoleAdmin), "stream", "read"},

		// Platform operators can do everything, including tenant CRUD.
		{string(models.RoleSuperAdmin), "*", "*"},
	}

	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return err
		}
	}

	hierarchy := [][]string{
		{string(models.RoleSuperAdmin), string(models.RoleAdmin)},
		{string(models.RoleAdmin), string(models.RoleAccountant)},
	}

	for _, g := range hierarchy {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return err
		}
	}

	return nil
}

// Check reports whether the role may perform the action on the resource
func (r *RBAC) Check(role models.Role, resource, action string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	allowed, err := r.enforcer.Enforce(string(role), resource, action)
	if err != nil {
		// Deny on enforcement errors.
		return false
	}

	return allowed
}
