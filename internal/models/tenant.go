package models

import (
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// TenantStatus represents the lifecycle status of a tenant.
// Tenants are never hard-deleted; they only move between statuses.
type TenantStatus string

// Tenant statuses
const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusPending   TenantStatus = "pending"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant represents a restaurant/business account on the platform
type Tenant struct {
	ID           uuid.UUID    `pg:"id,type:uuid,pk"`
	Slug         string       `pg:"slug,unique,notnull"`
	Name         string       `pg:"name,notnull"`
	CustomDomain string       `pg:"custom_domain,unique"`
	Branding     Branding     `pg:"branding,type:jsonb"`
	ContactEmail string       `pg:"contact_email,notnull"`
	ContactPhone string       `pg:"contact_phone"`
	Status       TenantStatus `pg:"status,type:text,notnull,default:'pending'"`
	Features     FeatureFlags `pg:"features,type:jsonb"`
	CreatedAt    time.Time    `pg:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time    `pg:"updated_at,notnull,default:now()"`

	// Relations
	Settings    *TenantSettings    `pg:"rel:has-one,join_fk:tenant_id"`
	Integration *TenantIntegration `pg:"rel:has-one,join_fk:tenant_id"`
}

// Branding represents a tenant's storefront branding
type Branding struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	LogoURL        string `json:"logoUrl"`
	TagLine        string `json:"tagLine"`
}

// FeatureFlags represents the optional modules enabled for a tenant
type FeatureFlags struct {
	Rewards          bool `json:"rewards"`
	Catering         bool `json:"catering"`
	Delivery         bool `json:"delivery"`
	AssociateProgram bool `json:"associateProgram"`
}

// TenantSettings is a 1:1 satellite record holding operational configuration.
// It is created lazily on first write and never independently deleted.
type TenantSettings struct {
	ID              uuid.UUID      `pg:"id,type:uuid,pk"`
	TenantID        uuid.UUID      `pg:"tenant_id,type:uuid,unique,notnull"`
	OperatingHours  OperatingHours `pg:"operating_hours,type:jsonb"`
	RewardRules     RewardRules    `pg:"reward_rules,type:jsonb"`
	PrepTimeMinutes int            `pg:"prep_time_minutes,notnull,default:20"`
	TaxRate         float64        `pg:"tax_rate,notnull,default:0"`
	DeliveryFee     float64        `pg:"delivery_fee,notnull,default:0"`
	PlatformFeeRate float64        `pg:"platform_fee_rate,notnull,default:0"`
	Currency        string         `pg:"currency,notnull,default:'USD'"`
	CreatedAt       time.Time      `pg:"created_at,notnull,default:now()"`
	UpdatedAt       time.Time      `pg:"updated_at,notnull,default:now()"`
}

// OperatingHours represents weekly opening hours keyed by weekday
type OperatingHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// DayHours represents opening hours for a single day
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// RewardRules represents the reward program configuration
type RewardRules struct {
	Enabled         bool    `json:"enabled"`
	PointsPerDollar float64 `json:"pointsPerDollar"`
	RedeemThreshold int     `json:"redeemThreshold"`
	RedeemValue     float64 `json:"redeemValue"`
}

// TenantIntegration is a 1:1 satellite record holding third-party credentials.
// Created lazily on first write, like TenantSettings.
type TenantIntegration struct {
	ID                uuid.UUID `pg:"id,type:uuid,pk"`
	TenantID          uuid.UUID `pg:"tenant_id,type:uuid,unique,notnull"`
	PaymentAccountID  string    `pg:"payment_account_id"`
	DeliveryPartnerID string    `pg:"delivery_partner_id"`
	DispatchAccountID string    `pg:"dispatch_account_id"`
	EmailDomainID     string    `pg:"email_domain_id"`
	WebhookSecret     string    `pg:"webhook_secret"`
	CreatedAt         time.Time `pg:"created_at,notnull,default:now()"`
	UpdatedAt         time.Time `pg:"updated_at,notnull,default:now()"`
}

// BeforeInsert hook is called before inserting a new tenant
func (t *Tenant) BeforeInsert(ctx orm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating a tenant
func (t *Tenant) BeforeUpdate(ctx orm.DB) error {
	t.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (t *Tenant) TableName() string {
	return "tenants"
}

// IsActive returns whether the tenant can serve storefront traffic
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// BeforeInsert hook is called before inserting tenant settings
func (s *TenantSettings) BeforeInsert(ctx orm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating tenant settings
func (s *TenantSettings) BeforeUpdate(ctx orm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (s *TenantSettings) TableName() string {
	return "tenant_settings"
}

// BeforeInsert hook is called before inserting a tenant integration
func (i *TenantIntegration) BeforeInsert(ctx orm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.CreatedAt = time.Now()
	i.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating a tenant integration
func (i *TenantIntegration) BeforeUpdate(ctx orm.DB) error {
	i.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (i *TenantIntegration) TableName() string {
	return "tenant_integrations"
}
