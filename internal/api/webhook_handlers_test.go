package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alessacloud/internal/audit"
	"alessacloud/internal/config"
	"alessacloud/internal/events"
	"alessacloud/internal/models"
	"alessacloud/internal/payments"
	"alessacloud/internal/services"
	"alessacloud/internal/tenant"
)

const testWebhookSecret = "whsec_test"

func signWebhookBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookEngine(t *models.Tenant, repo *stubOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	broker := events.NewMemoryBroker(nil)
	orderSvc := services.NewOrderService(repo, nil, nil, broker, audit.NewService(nil), nil, nil)
	client := payments.NewClient(config.PaymentConfig{}, nil, nil)
	h := NewWebhookHandlers(orderSvc, nil, client, nil, nil)

	engine := gin.New()
	engine.POST("/webhooks/payment", func(c *gin.Context) {
		c.Set(tenant.ContextKey, t)
	}, h.PaymentWebhook)

	return engine
}

func webhookTenant() *models.Tenant {
	return &models.Tenant{
		ID:     uuid.New(),
		Slug:   "pizza",
		Status: models.TenantStatusActive,
		Integration: &models.TenantIntegration{
			WebhookSecret: testWebhookSecret,
		},
	}
}

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	repo := &stubOrderRepo{byID: map[uuid.UUID]*models.Order{}}
	engine := newWebhookEngine(webhookTenant(), repo)

	body := []byte(`{"event":"payment.captured"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "deadbeef")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "signature verification failed")
}

func TestPaymentWebhookRejectsMissingSignature(t *testing.T) {
	repo := &stubOrderRepo{byID: map[uuid.UUID]*models.Order{}}
	engine := newWebhookEngine(webhookTenant(), repo)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment",
		bytes.NewReader([]byte(`{"event":"payment.captured"}`)))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPaymentWebhookIgnoresOtherEvents(t *testing.T) {
	repo := &stubOrderRepo{byID: map[uuid.UUID]*models.Order{}}
	engine := newWebhookEngine(webhookTenant(), repo)

	body := []byte(`{"event":"payment.authorized"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signWebhookBody(body, testWebhookSecret))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}

func TestPaymentWebhookConfirmsCapturedOrder(t *testing.T) {
	tn := webhookTenant()
	order := &models.Order{
		ID:       uuid.New(),
		TenantID: tn.ID,
		ShortID:  "a1b2c3",
		Status:   models.OrderStatusPending,
	}
	repo := &stubOrderRepo{byID: map[uuid.UUID]*models.Order{order.ID: order}}
	engine := newWebhookEngine(tn, repo)

	body := []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_123","notes":{"order_id":"%s"}}}}}`,
		order.ID))
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signWebhookBody(body, testWebhookSecret))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "pay_123", order.PaymentRef)
}
