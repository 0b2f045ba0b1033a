package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"alessacloud/internal/data"
	"alessacloud/internal/observability"
	"alessacloud/internal/payments"
	"alessacloud/internal/services"
	"alessacloud/internal/tenant"
)

// WebhookHandlers receives callbacks from the payment provider
type WebhookHandlers struct {
	orderSvc      *services.OrderService
	tenantRepo    *data.TenantRepository
	paymentClient *payments.Client
	metrics       *observability.Metrics
	logger        *observability.Logger
}

// NewWebhookHandlers creates new webhook handlers
func NewWebhookHandlers(orderSvc *services.OrderService, tenantRepo *data.TenantRepository, paymentClient *payments.Client, metrics *observability.Metrics, logger *observability.Logger) *WebhookHandlers {
	return &WebhookHandlers{
		orderSvc:      orderSvc,
		tenantRepo:    tenantRepo,
		paymentClient: paymentClient,
		metrics:       metrics,
		logger:        logger,
	}
}

// paymentWebhookPayload is the subset of the provider payload we act on
type paymentWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID    string `json:"id"`
				Notes struct {
					OrderID string `json:"order_id"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// PaymentWebhook confirms orders when the provider reports a captured
// payment. The signature is verified against the tenant's webhook secret
// before anything is trusted; a bad signature is a 401 and nothing else
// happens.
func (h *WebhookHandlers) PaymentWebhook(c *gin.Context) {
	t := tenant.RequireTenant(c)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "unable to read payload"})
		return
	}

	tenantSecret := ""
	if t.Integration != nil {
		tenantSecret = t.Integration.WebhookSecret
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.paymentClient.VerifyWebhook(body, signature, tenantSecret); err != nil {
		h.metrics.RecordPaymentProcessed("rejected", "razorpay")
		c.JSON(http.StatusUnauthorized, ResponseError{Error: "signature verification failed"})
		return
	}

	var payload paymentWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "malformed payload"})
		return
	}

	// Only captures drive order state. Other events are acknowledged so
	// the provider stops retrying them.
	if payload.Event != "payment.captured" {
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	orderID, err := uuid.Parse(payload.Payload.Payment.Entity.Notes.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "payload missing order reference"})
		return
	}

	order, err := h.orderSvc.MarkPaid(c.Request.Context(), t.ID, orderID, payload.Payload.Payment.Entity.ID)
	if err != nil {
		h.metrics.RecordPaymentProcessed("failed", "razorpay")
		respondError(c, err)
		return
	}

	h.metrics.RecordPaymentProcessed("captured", "razorpay")
	c.JSON(http.StatusOK, gin.H{"message": "ok", "orderId": order.ID})
}
