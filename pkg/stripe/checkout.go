package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
)

// sessionCreator is the slice of the Checkout Sessions API the linker needs.
type sessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

// CheckoutLinker creates one-off Checkout Sessions for a fixed amount.
type CheckoutLinker struct {
	create     sessionCreator
	currency   string
	successURL string
	cancelURL  string
}

// CheckoutRequest describes a single-line payment.
type CheckoutRequest struct {
	Amount   decimal.Decimal
	Label    string
	Metadata map[string]string
}

// NewCheckoutLinker requires an initialized Client so the global key is set.
func NewCheckoutLinker(client *Client, cfg config.StripeConfig) (*CheckoutLinker, error) {
	if client == nil {
		return nil, errors.New("stripe client required")
	}
	return newCheckoutLinker(session.New, cfg), nil
}

func newCheckoutLinker(create sessionCreator, cfg config.StripeConfig) *CheckoutLinker {
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutLinker{
		create:     create,
		currency:   currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

// CreateLink returns the hosted checkout URL for the requested amount.
func (l *CheckoutLinker) CreateLink(ctx context.Context, req CheckoutRequest) (string, error) {
	cents, err := ToMinorUnits(req.Amount)
	if err != nil {
		return "", err
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return "", errors.New("checkout label is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(l.successURL),
		CancelURL:  stripe.String(l.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(l.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(label),
					},
					UnitAmount: stripe.Int64(cents),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := l.create(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if sess == nil || sess.URL == "" {
		return "", errors.New("stripe response missing checkout url")
	}
	return sess.URL, nil
}

// ToMinorUnits converts a dollar amount to cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}
