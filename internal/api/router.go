package api

import (
	"fmt"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-pg/pg/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"alessacloud/internal/audit"
	"alessacloud/internal/auth"
	"alessacloud/internal/cache"
	"alessacloud/internal/config"
	"alessacloud/internal/data"
	"alessacloud/internal/events"
	"alessacloud/internal/middleware"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
	"alessacloud/internal/payments"
	"alessacloud/internal/services"
	"alessacloud/internal/storage"
	"alessacloud/internal/tenant"
)

// Router wraps the gin engine and holds dependencies
type Router struct {
	Engine      *gin.Engine
	cfg         *config.Config
	db          *pg.DB
	redisClient *redis.Client
	broker      events.Broker
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// NewRouter creates a new router with dependencies
func NewRouter(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics, db *pg.DB, redisClient *redis.Client, broker events.Broker) (*Router, error) {
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := &Router{
		Engine:      gin.New(),
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		broker:      broker,
		logger:      logger,
		metrics:     metrics,
	}

	router.setupMiddleware()
	if err := router.setupRoutes(); err != nil {
		return nil, err
	}

	return router, nil
}

// Run starts the HTTP server
func (r *Router) Run() error {
	addr := fmt.Sprintf(":%d", r.cfg.App.Port)
	r.logger.Info("Starting server", zap.String("address", addr))
	return r.Engine.Run(addr)
}

// setupMiddleware configures the global middleware chain
func (r *Router) setupMiddleware() {
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(RequestIDMiddleware())
	r.Engine.Use(RequestLogger(r.logger))
	r.Engine.Use(MetricsMiddleware(r.metrics))
	r.Engine.Use(middleware.SecurityHeaders(nil))

	if r.cfg.CORS.AllowedOrigins != "" {
		r.Engine.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Split(r.cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Split(r.cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Split(r.cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Split(r.cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: r.cfg.CORS.AllowCredentials,
			MaxAge:           r.cfg.CORS.MaxAge,
		}))
	}

	if r.cfg.RateLimit.Enabled {
		r.Engine.Use(middleware.NewRateLimiterMiddleware(r.cfg.RateLimit, r.redisClient).Limit())
	}

	r.Engine.Use(middleware.Sanitize())
	r.Engine.Use(ErrorHandler(r.logger))
}

// setupRoutes wires repositories, services, and handlers onto the engine
func (r *Router) setupRoutes() error {
	r.Engine.GET("/health", r.HealthCheck)
	if r.cfg.Metrics.Enabled {
		r.Engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	// Repositories
	tenantRepo := data.NewTenantRepository(r.db)
	menuRepo := data.NewMenuRepository(r.db)
	orderRepo := data.NewOrderRepository(r.db)
	customerRepo := data.NewCustomerRepository(r.db)
	staffRepo := data.NewStaffRepository(r.db)

	// Services. Audit can be switched off by configuration; the service
	// built without a database is a no-op.
	auditDB := r.db
	if !r.cfg.Audit.Enabled {
		auditDB = nil
	}
	auditSvc := audit.NewService(auditDB)
	cacheSvc := cache.NewService(r.redisClient)
	authSvc := auth.NewService(staffRepo, r.cfg.JWT, auditSvc)
	rbac, err := auth.NewRBAC()
	if err != nil {
		return fmt.Errorf("failed to initialize RBAC: %w", err)
	}

	menuSvc := services.NewMenuService(menuRepo, cacheSvc, auditSvc, r.logger)
	orderSvc := services.NewOrderService(orderRepo, menuRepo, customerRepo, r.broker, auditSvc, r.metrics, r.logger)
	customerAuthSvc := services.NewCustomerAuthService(customerRepo, r.cfg.Sessions, r.logger)
	tenantSvc := services.NewTenantService(tenantRepo, auditSvc, r.logger)
	paymentClient := payments.NewClient(r.cfg.Payment, r.metrics, r.logger)
	storageSvc, err := storage.NewS3Service(r.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Tenant resolution
	parser := tenant.NewHostParser(r.cfg.Tenancy.RootDomain, r.cfg.Tenancy.DefaultSlug)
	resolver := tenant.NewResolver(tenantRepo, r.metrics)
	tenantMw := tenant.NewMiddleware(parser, resolver, r.logger)

	// Auth middleware
	authMw := middleware.NewAuthMiddleware(authSvc, rbac)
	customerMw := middleware.NewCustomerAuthMiddleware(customerAuthSvc)

	// Handlers
	storefront := NewStorefrontHandlers(menuSvc, storageSvc)
	orders := NewOrderHandlers(orderSvc, paymentClient)
	customers := NewCustomerHandlers(customerAuthSvc)
	admin := NewAdminHandlers(authSvc, menuSvc, orderSvc, tenantSvc, auditSvc, paymentClient, storageSvc)
	stream := NewStreamHandlers(orderSvc, r.broker)
	super := NewSuperHandlers(tenantSvc, auditSvc)
	webhooks := NewWebhookHandlers(orderSvc, tenantRepo, paymentClient, r.metrics, r.logger)

	// Everything under /api is tenant-scoped: the middleware resolves the
	// Host header to exactly one tenant before any handler runs.
	apiGroup := r.Engine.Group("/api")
	apiGroup.Use(tenantMw.Resolve())
	{
		apiGroup.GET("/storefront", storefront.GetStorefront)
		apiGroup.GET("/menu", storefront.ListMenu)

		apiGroup.POST("/orders", customerMw.Optional(), orders.CreateOrder)
		apiGroup.GET("/orders/track/:shortId", orders.TrackOrder)
		apiGroup.POST("/orders/:id/checkout", orders.CreateCheckout)

		customerGroup := apiGroup.Group("/customers")
		{
			customerGroup.POST("/signup", customers.Signup)
			customerGroup.POST("/login", customers.Login)

			me := customerGroup.Group("")
			me.Use(customerMw.Authenticate())
			{
				me.POST("/logout", customers.Logout)
				me.GET("/me", customers.Profile)
			}
		}

		apiGroup.POST("/webhooks/payment", webhooks.PaymentWebhook)

		adminGroup := apiGroup.Group("/admin")
		{
			adminGroup.POST("/auth/login", admin.Login)
			adminGroup.POST("/auth/refresh", admin.Refresh)

			protected := adminGroup.Group("")
			protected.Use(authMw.Authenticate())
			{
				menu := protected.Group("/menu")
				menu.Use(authMw.RequirePermission("menu", "write"))
				{
					menu.POST("/categories", admin.CreateCategory)
					menu.PUT("/categories/:id", admin.UpdateCategory)
					menu.DELETE("/categories/:id", admin.DeleteCategory)
					menu.POST("/items", admin.CreateItem)
					menu.PUT("/items/:id", admin.UpdateItem)
					menu.DELETE("/items/:id", admin.DeleteItem)
					menu.POST("/items/uploads", admin.PresignItemImage)
				}

				protected.GET("/orders", authMw.RequirePermission("orders", "read"), admin.ListOrders)
				protected.GET("/orders/:id", authMw.RequirePermission("orders", "read"), admin.GetOrder)
				protected.PUT("/orders/:id/status", authMw.RequirePermission("orders", "write"), admin.UpdateOrderStatus)
				protected.POST("/orders/:id/refund", authMw.RequirePermission("orders", "write"), admin.RefundOrder)

				protected.GET("/fulfillment/stream", authMw.RequirePermission("stream", "read"), stream.OrderStream)

				protected.GET("/settings", authMw.RequirePermission("settings", "read"), admin.GetSettings)
				protected.PUT("/settings", authMw.RequirePermission("settings", "write"), admin.UpdateSettings)
				protected.PUT("/integrations", authMw.RequirePermission("integrations", "write"), admin.UpdateIntegrations)

				protected.GET("/audit-logs", authMw.RequirePermission("audit", "read"), admin.ListAuditLogs)
			}
		}
	}

	// Platform operations are host-independent and restricted to
	// super admins.
	superGroup := r.Engine.Group("/api/super")
	superGroup.Use(authMw.Authenticate())
	superGroup.Use(authMw.RequireRole(models.RoleSuperAdmin))
	{
		superGroup.GET("/tenants", super.ListTenants)
		superGroup.POST("/tenants", super.CreateTenant)
		superGroup.GET("/tenants/:id", super.GetTenant)
		superGroup.PUT("/tenants/:id", super.UpdateTenant)
		superGroup.PUT("/tenants/:id/status", super.SetTenantStatus)
		superGroup.DELETE("/tenants/:id", super.DeactivateTenant)
		superGroup.GET("/audit-logs", super.ListAuditLogs)
	}

	return nil
}
