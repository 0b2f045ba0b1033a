package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"alessacloud/internal/config"
	"alessacloud/internal/models"
	"alessacloud/internal/observability"
)

// Payment errors
var (
	ErrPaymentsDisabled = errors.New("payment processing is not configured")
	ErrBadSignature     = errors.New("webhook signature verification failed")
)

// CheckoutSession is what the storefront needs to collect a payment
type CheckoutSession struct {
	ProviderOrderID string  `json:"providerOrderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	KeyID           string  `json:"keyId"`
}

// Client wraps the payment provider for order checkout, refunds, and
// webhook verification
type Client struct {
	rz      *razorpay.Client
	cfg     config.PaymentConfig
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewClient creates a payment client. Returns a disabled client when the
// provider is not configured; calls on it fail with ErrPaymentsDisabled.
func NewClient(cfg config.PaymentConfig, metrics *observability.Metrics, logger *observability.Logger) *Client {
	c := &Client{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}

	if cfg.Enabled && cfg.KeyID != "" {
		c.rz = razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	}

	return c
}

// Enabled reports whether payment processing is configured
func (c *Client) Enabled() bool {
	return c.rz != nil
}

// CreateCheckout registers the order with the provider and returns the
// session the storefront uses to collect payment. The provider works in
// minor units, so amounts are converted from decimal currency.
func (c *Client) CreateCheckout(ctx context.Context, order *models.Order) (*CheckoutSession, error) {
	if c.rz == nil {
		return nil, ErrPaymentsDisabled
	}

	start := time.Now()
	data := map[string]interface{}{
		"amount":   toMinorUnits(order.Total),
		"currency": c.cfg.Currency,
		"receipt":  order.ShortID,
		"notes": map[string]interface{}{
			"order_id":  order.ID.String(),
			"tenant_id": order.TenantID.String(),
		},
	}

	body, err := c.rz.Order.Create(data, nil)
	c.observe(ctx, "orders", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider order: %w", err)
	}

	providerOrderID, _ := body["id"].(string)
	if providerOrderID == "" {
		return nil, errors.New("provider order response missing id")
	}

	return &CheckoutSession{
		ProviderOrderID: providerOrderID,
		Amount:          order.Total,
		Currency:        c.cfg.Currency,
		KeyID:           c.cfg.KeyID,
	}, nil
}

// Refund refunds a captured payment for the given amount
func (c *Client) Refund(ctx context.Context, paymentRef string, amount float64) error {
	if c.rz == nil {
		return ErrPaymentsDisabled
	}
	if amount <= 0 {
		return errors.New("refund amount must be positive")
	}

	start := time.Now()
	_, err := c.rz.Payment.Refund(paymentRef, toMinorUnits(amount), nil, nil)
	c.observe(ctx, "refunds", start, err)

	if err != nil {
		return fmt.Errorf("failed to refund payment %s: %w", paymentRef, err)
	}

	return nil
}

// VerifyWebhook checks the provider signature on a webhook payload.
// The per-tenant secret takes precedence over the platform-wide one.
func (c *Client) VerifyWebhook(body []byte, signature, tenantSecret string) error {
	secret := tenantSecret
	if secret == "" {
		secret = c.cfg.WebhookSecret
	}
	if secret == "" || signature == "" {
		return ErrBadSignature
	}

	if !utils.VerifyWebhookSignature(string(body), signature, secret) {
		return ErrBadSignature
	}

	return nil
}

func (c *Client) observe(ctx context.Context, endpoint string, start time.Time, err error) {
	status := 200
	if err != nil {
		status = 502
	}
	c.logger.ThirdPartyRequest(ctx, "razorpay", endpoint, status, time.Since(start), err)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordThirdPartyRequest("razorpay", outcome)
}

// toMinorUnits converts a decimal amount to the provider's integer minor
// units (cents, paise)
func toMinorUnits(amount float64) int {
	return int(math.Round(amount * 100))
}
