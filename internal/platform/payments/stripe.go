package payments

import (
	"context"
	"math"

	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/config"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeClient wraps payment-intent creation for product purchases. Without a
// configured secret key it degrades to a no-op so local development does not
// need Stripe credentials.
type StripeClient struct {
	enabled  bool
	currency string
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	c := &StripeClient{
		enabled:  cfg.SecretKey != "",
		currency: cfg.Currency,
	}
	if c.enabled {
		stripe.Key = cfg.SecretKey
	}
	return c
}

// CreatePaymentIntent returns the intent id and client secret. Amount is in
// currency units; Stripe wants the smallest denomination.
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string) (string, string, error) {
	if !c.enabled {
		logger.DebugContext(ctx, "Stripe disabled, skipping payment intent", "amount", amount)
		return "", "", nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(c.currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", err
	}
	return pi.ID, pi.ClientSecret, nil
}
