package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the prometheus metrics for the application
type Metrics struct {
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	databaseQueryDuration  *prometheus.HistogramVec
	tenantResolutionsTotal *prometheus.CounterVec
	ordersCreatedTotal     *prometheus.CounterVec
	orderEventsPublished   *prometheus.CounterVec
	activeStreamSubs       prometheus.Gauge
	errorTotal             *prometheus.CounterVec
	paymentProcessedTotal  *prometheus.CounterVec
	thirdPartyRequestTotal *prometheus.CounterVec
}

// Config holds configuration for metrics
type Config struct {
	Enabled          bool
	MetricsNamespace string
}

// DefaultConfig returns a default configuration for metrics
func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MetricsNamespace: "alessacloud",
	}
}

// New creates a new metrics instance
func New(cfg *Config) *Metrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if !cfg.Enabled {
		return nil
	}

	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		databaseQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "database_query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		tenantResolutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "tenant_resolutions_total",
				Help:      "Total number of tenant resolutions by outcome",
			},
			[]string{"outcome"},
		),
		ordersCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "orders_created_total",
				Help:      "Total number of orders created",
			},
			[]string{"tenant", "fulfillment"},
		),
		orderEventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "order_events_published_total",
				Help:      "Total number of order events published to the broker",
			},
			[]string{"type"},
		),
		activeStreamSubs: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "active_stream_subscribers",
				Help:      "Number of open order-stream subscriptions",
			},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "errors_total",
				Help:      "Total number of errors",
			},
			[]string{"type", "service"},
		),
		paymentProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "payments_processed_total",
				Help:      "Total number of processed payments",
			},
			[]string{"status", "provider"},
		),
		thirdPartyRequestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.MetricsNamespace,
				Name:      "third_party_requests_total",
				Help:      "Total number of third-party API requests",
			},
			[]string{"service", "status"},
		),
	}

	return m
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDatabaseQuery records a database query
func (m *Metrics) RecordDatabaseQuery(operation, table string, duration time.Duration) {
	if m == nil {
		return
	}

	m.databaseQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordTenantResolution records a tenant resolution outcome ("hit" or "miss")
func (m *Metrics) RecordTenantResolution(outcome string) {
	if m == nil {
		return
	}

	m.tenantResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordOrderCreated increments the orders created counter
func (m *Metrics) RecordOrderCreated(tenantSlug, fulfillment string) {
	if m == nil {
		return
	}

	m.ordersCreatedTotal.WithLabelValues(tenantSlug, fulfillment).Inc()
}

// RecordOrderEventPublished increments the published order event counter
func (m *Metrics) RecordOrderEventPublished(eventType string) {
	if m == nil {
		return
	}

	m.orderEventsPublished.WithLabelValues(eventType).Inc()
}

// StreamSubscriberOpened increments the active stream subscriber gauge
func (m *Metrics) StreamSubscriberOpened() {
	if m == nil {
		return
	}

	m.activeStreamSubs.Inc()
}

// StreamSubscriberClosed decrements the active stream subscriber gauge
func (m *Metrics) StreamSubscriberClosed() {
	if m == nil {
		return
	}

	m.activeStreamSubs.Dec()
}

// RecordError increments the error counter
func (m *Metrics) RecordError(errorType, service string) {
	if m == nil {
		return
	}

	m.errorTotal.WithLabelValues(errorType, service).Inc()
}

// RecordPaymentProcessed increments the payment processed counter
func (m *Metrics) RecordPaymentProcessed(status, provider string) {
	if m == nil {
		return
	}

	m.paymentProcessedTotal.WithLabelValues(status, provider).Inc()
}

// RecordThirdPartyRequest increments the third-party request counter
func (m *Metrics) RecordThirdPartyRequest(service, status string) {
	if m == nil {
		return
	}

	m.thirdPartyRequestTotal.WithLabelValues(service, status).Inc()
}

// Handler returns a handler for exposing metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}

	return promhttp.Handler()
}
