package models

import (
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Customer represents a storefront customer belonging to one tenant
type Customer struct {
	ID           uuid.UUID `pg:"id,type:uuid,pk"`
	TenantID     uuid.UUID `pg:"tenant_id,type:uuid,notnull"`
	Email        string    `pg:"email,notnull"`
	PasswordHash string    `pg:"password_hash,notnull"`
	FirstName    string    `pg:"first_name"`
	LastName     string    `pg:"last_name"`
	Phone        string    `pg:"phone"`
	RewardPoints int       `pg:"reward_points,notnull,default:0"`
	CreatedAt    time.Time `pg:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time `pg:"updated_at,notnull,default:now()"`

	// Not stored in the database
	Password string `pg:"-"`
}

// CustomerSession is a bearer session looked up on every authenticated
// customer request. Sessions are single-use-replaceable: issuing a new one
// deletes the customer's previous sessions.
type CustomerSession struct {
	ID         uuid.UUID `pg:"id,type:uuid,pk"`
	TenantID   uuid.UUID `pg:"tenant_id,type:uuid,notnull"`
	CustomerID uuid.UUID `pg:"customer_id,type:uuid,notnull"`
	TokenHash  string    `pg:"token_hash,unique,notnull"`
	ExpiresAt  time.Time `pg:"expires_at,notnull"`
	CreatedAt  time.Time `pg:"created_at,notnull,default:now()"`
}

// BeforeInsert hook is called before inserting a new customer
func (c *Customer) BeforeInsert(ctx orm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating a customer
func (c *Customer) BeforeUpdate(ctx orm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (c *Customer) TableName() string {
	return "customers"
}

// SetPassword hashes and sets the customer's password
func (c *Customer) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies the given password against the stored hash
func (c *Customer) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// BeforeInsert hook is called before inserting a new session
func (s *CustomerSession) BeforeInsert(ctx orm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (s *CustomerSession) TableName() string {
	return "customer_sessions"
}

// Expired reports whether the session is past its expiry
func (s *CustomerSession) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
