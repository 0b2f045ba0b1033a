package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"alessacloud/internal/observability"
)

const (
	EnvLocal       = "local"
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Tenancy   TenancyConfig
	JWT       JWTConfig
	Sessions  SessionConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Payment   PaymentConfig
	Storage   StorageConfig
	Events    EventsConfig
	Audit     AuditConfig
	Metrics   *observability.Config
	Logging   *observability.LoggingConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name  string
	Env   string // local, development, or production
	Port  int
	Debug bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	Timeout         int
	MaxConnections  int
	IdleConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// TenancyConfig holds tenant-resolution configuration.
// RootDomain is the platform's apex domain; requests to it (or its www
// variant) resolve to DefaultSlug, the platform's own demo tenant.
type TenancyConfig struct {
	RootDomain  string
	DefaultSlug string
}

// JWTConfig holds staff token configuration
type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
	RefreshExpiry  time.Duration
}

// SessionConfig holds customer session configuration
type SessionConfig struct {
	CustomerTTL         time.Duration
	CustomerExtendedTTL time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	ExpireMinutes     int
	Enabled           bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials bool
	MaxAge           time.Duration
}

// PaymentConfig holds payment provider configuration
type PaymentConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
	Enabled       bool
}

// StorageConfig holds object storage configuration for menu images
type StorageConfig struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PresignExpiry   time.Duration
	Enabled         bool
}

// EventsConfig selects the order-event broker backend
type EventsConfig struct {
	// Backend is "memory" for single-instance deployments or "redis" for
	// cross-instance fan-out.
	Backend       string
	ChannelPrefix string
}

// AuditConfig holds audit logging configuration
type AuditConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Attempt to load .env file - useful for local dev, ignored in production if vars are set
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", EnvLocal)
	debug := appEnv != EnvProduction

	return &Config{
		App: AppConfig{
			Name:  getEnv("APP_NAME", "alessa-ordering"),
			Env:   appEnv,
			Port:  getEnvAsInt("APP_PORT", 8080),
			Debug: debug,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASS", "postgres"),
			Name:            getEnv("DB_NAME", "alessacloud"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			Timeout:         getEnvAsInt("DB_TIMEOUT", 30),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 100),
			IdleConnections: getEnvAsInt("DB_IDLE_CONNECTIONS", 10),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Tenancy: TenancyConfig{
			RootDomain:  getEnv("TENANT_ROOT_DOMAIN", "alessacloud.com"),
			DefaultSlug: getEnv("DEFAULT_TENANT_SLUG", "demo"),
		},
		JWT: JWTConfig{
			Secret:         getEnv("JWT_SECRET", "insecure-jwt-secret"),
			ExpiryDuration: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
			RefreshExpiry:  getEnvAsDuration("JWT_REFRESH_EXPIRY", 72*time.Hour),
		},
		Sessions: SessionConfig{
			CustomerTTL:         getEnvAsDuration("CUSTOMER_SESSION_TTL", 30*24*time.Hour),
			CustomerExtendedTTL: getEnvAsDuration("CUSTOMER_SESSION_EXTENDED_TTL", 90*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat64("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
			ExpireMinutes:     getEnvAsInt("RATE_LIMIT_EXPIRE", 1),
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Tenant-Slug"),
			ExposedHeaders:   getEnv("CORS_EXPOSED_HEADERS", "Content-Length"),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvAsDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		Payment: PaymentConfig{
			KeyID:         getEnv("PAYMENT_KEY_ID", ""),
			KeySecret:     getEnv("PAYMENT_KEY_SECRET", ""),
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "USD"),
			Enabled:       getEnvAsBool("PAYMENT_ENABLED", false),
		},
		Storage: StorageConfig{
			Bucket:          getEnv("STORAGE_BUCKET", ""),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			PresignExpiry:   getEnvAsDuration("STORAGE_PRESIGN_EXPIRY", 15*time.Minute),
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
		},
		Events: EventsConfig{
			Backend:       getEnv("EVENTS_BACKEND", "memory"),
			ChannelPrefix: getEnv("EVENTS_CHANNEL_PREFIX", "orders"),
		},
		Audit: AuditConfig{
			Enabled: getEnvAsBool("AUDIT_LOG_ENABLED", true),
		},
		Metrics: &observability.Config{
			Enabled:          getEnvAsBool("METRICS_ENABLED", true),
			MetricsNamespace: getEnv("METRICS_NAMESPACE", "alessacloud"),
		},
		Logging: &observability.LoggingConfig{
			Level:      observability.LogLevel(getEnv("LOG_LEVEL", "info")),
			JSONFormat: getEnvAsBool("LOG_JSON", true),
			OutputPath: getEnv("LOG_FILE", ""),
		},
	}, nil
}

// Helper functions to get environment variables with default values
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&timeout=%ds",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
		c.Timeout,
	)
}

// GetRedisAddr returns the Redis address as host:port
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
