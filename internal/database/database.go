package database

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"go.uber.org/zap"

	"alessacloud/internal/config"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// New creates a new database connection and verifies it with a ping
func New(cfg *config.Config, logger *observability.Logger) (*pg.DB, error) {
	opts := &pg.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port),
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		PoolSize: cfg.Database.MaxConnections,
	}

	switch cfg.Database.SSLMode {
	case "require":
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	case "verify-ca", "verify-full":
		opts.TLSConfig = &tls.Config{ServerName: cfg.Database.Host}
	}

	db := pg.Connect(opts)

	if err := db.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Debug {
		db.AddQueryHook(queryLogger{logger: logger})
	}

	logger.Info("Connected to database",
		zap.String("addr", opts.Addr),
		zap.String("database", opts.Database))

	return db, nil
}

// CreateSchema creates tables for all registered models. Intended for
// local development and tests; production schemas are migrated externally.
func CreateSchema(db *pg.DB) error {
	tables := []interface{}{
		(*models.Tenant)(nil),
		(*models.TenantSettings)(nil),
		(*models.TenantIntegration)(nil),
		(*models.MenuCategory)(nil),
		(*models.MenuItem)(nil),
		(*models.Customer)(nil),
		(*models.CustomerSession)(nil),
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.StaffUser)(nil),
		(*models.AuditLog)(nil),
	}

	for _, table := range tables {
		err := db.Model(table).CreateTable(&orm.CreateTableOptions{
			IfNotExists: true,
		})
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", table, err)
		}
	}

	return nil
}

// queryLogger implements pg.QueryHook for debug query logging
type queryLogger struct {
	logger *observability.Logger
}

func (q queryLogger) BeforeQuery(ctx context.Context, event *pg.QueryEvent) (context.Context, error) {
	return ctx, nil
}

func (q queryLogger) AfterQuery(ctx context.Context, event *pg.QueryEvent) error {
	query, err := event.FormattedQuery()
	if err != nil {
		return nil
	}

	q.logger.Debug("Query executed", zap.String("query", string(query)))
	return nil
}
