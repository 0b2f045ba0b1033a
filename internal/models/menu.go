package models

import (
	"time"

	"github.com/go-pg/pg/v10/orm"
	"github.com/google/uuid"
)

// MenuCategory represents a group of menu items for a tenant
type MenuCategory struct {
	ID        uuid.UUID  `pg:"id,type:uuid,pk"`
	TenantID  uuid.UUID  `pg:"tenant_id,type:uuid,notnull"`
	Name      string     `pg:"name,notnull"`
	SortOrder int        `pg:"sort_order,notnull,default:0"`
	CreatedAt time.Time  `pg:"created_at,notnull,default:now()"`
	UpdatedAt time.Time  `pg:"updated_at,notnull,default:now()"`
	DeletedAt *time.Time `pg:"deleted_at"`

	// Relations
	Items []*MenuItem `pg:"rel:has-many,join_fk:category_id"`
}

// MenuItem represents a purchasable item on a tenant's menu
type MenuItem struct {
	ID          uuid.UUID  `pg:"id,type:uuid,pk"`
	TenantID    uuid.UUID  `pg:"tenant_id,type:uuid,notnull"`
	CategoryID  uuid.UUID  `pg:"category_id,type:uuid,notnull"`
	Name        string     `pg:"name,notnull"`
	Description string     `pg:"description"`
	Price       float64    `pg:"price,notnull"`
	ImageKey    string     `pg:"image_key"`
	Available   bool       `pg:"available,notnull,default:true"`
	SortOrder   int        `pg:"sort_order,notnull,default:0"`
	CreatedAt   time.Time  `pg:"created_at,notnull,default:now()"`
	UpdatedAt   time.Time  `pg:"updated_at,notnull,default:now()"`
	DeletedAt   *time.Time `pg:"deleted_at"`
}

// BeforeInsert hook is called before inserting a new category
func (c *MenuCategory) BeforeInsert(ctx orm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating a category
func (c *MenuCategory) BeforeUpdate(ctx orm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (c *MenuCategory) TableName() string {
	return "menu_categories"
}

// BeforeInsert hook is called before inserting a new menu item
func (m *MenuItem) BeforeInsert(ctx orm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate hook is called before updating a menu item
func (m *MenuItem) BeforeUpdate(ctx orm.DB) error {
	m.UpdatedAt = time.Now()
	return nil
}

// TableName returns the name of the table for this model
func (m *MenuItem) TableName() string {
	return "menu_items"
}
