package models

import (
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a staff member's role on the platform
type Role string

// Available roles
const (
	RoleSuperAdmin Role = "super_admin" // platform operator, cross-tenant
	RoleAdmin      Role = "admin"       // tenant back office
	RoleAccountant Role = "accountant"  // read-only financials for a tenant
)

// StaffUser represents a back-office user. Admins and accountants belong to
// a tenant; super admins operate across all tenants (TenantID is nil).
type StaffUser struct {
	ID             uuid.UUID  `pg:"id,type:uuid,pk"`
	TenantID       *uuid.UUID `pg:"tenant_id,type:uuid"`
	Email          string     `pg:"email,unique,notnull"`
	PasswordHash   string     `pg:"password_hash,notnull"`
	FirstName      string     `pg:"first_name"`
	LastName       string     `pg:"last_name"`
	Role           Role       `pg:"role,type:text,notnull"`
	Active         bool       `pg:"active,notnull,default:true"`
	FailedAttempts int        `pg:"failed_attempts,notnull,default:0"`
	LockedUntil    time.Time  `pg:"locked_until"`
	LastLogin      time.Time  `pg:"last_login"`
	CreatedAt      time.Time  `pg:"created_at,notnull,default:now()"`
	UpdatedAt      time.Time  `pg:"updated_at,notnull,default:now()"`

	// Relations
	Tenant *Tenant `pg:"rel:has-one,fk:tenant_id"`

	// Not stored in the database
	Password string `pg:"-"`
}

// BeforeInsert hook is called before inserting a new staff user
func (u *StaffUser) BeforeInsert(ctx orm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating a staff user
func (u *StaffUser) BeforeUpdate(ctx orm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (u *StaffUser) TableName() string {
	return "staff_users"
}

// SetPassword hashes and sets the staff user's password
func (u *StaffUser) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies the given password against the stored hash
func (u *StaffUser) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsLocked returns whether the account is currently locked out
func (u *StaffUser) IsLocked() bool {
	return !u.LockedUntil.IsZero() && time.Now().Before(u.LockedUntil)
}
