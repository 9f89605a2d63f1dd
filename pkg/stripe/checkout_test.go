package stripe

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
)

func TestCheckoutLinkerBuildsSingleLineSession(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	linker := newCheckoutLinker(func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		captured = params
		return &stripe.CheckoutSession{URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
	}, config.StripeConfig{Currency: "USD", SuccessURL: "https://bizzy.test/ok", CancelURL: "https://bizzy.test/cancel"})

	url, err := linker.CreateLink(context.Background(), CheckoutRequest{
		Amount:   decimal.RequireFromString("37.505"),
		Label:    "Deposit GLS-002",
		Metadata: map[string]string{"lead_id": "GLS-002"},
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if url != "https://checkout.stripe.com/c/pay/cs_test_1" {
		t.Fatalf("unexpected url %s", url)
	}
	if captured == nil || len(captured.LineItems) != 1 {
		t.Fatalf("expected one line item, got %+v", captured)
	}
	item := captured.LineItems[0]
	if *item.PriceData.UnitAmount != 3751 {
		t.Fatalf("expected 3751 cents, got %d", *item.PriceData.UnitAmount)
	}
	if *item.PriceData.Currency != "usd" {
		t.Fatalf("expected lowercase currency, got %s", *item.PriceData.Currency)
	}
	if *captured.Mode != string(stripe.CheckoutSessionModePayment) {
		t.Fatalf("unexpected mode %s", *captured.Mode)
	}
	if captured.Metadata["lead_id"] != "GLS-002" {
		t.Fatalf("metadata not forwarded: %v", captured.Metadata)
	}
}

func TestCheckoutLinkerRejectsBadInput(t *testing.T) {
	called := false
	linker := newCheckoutLinker(func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		called = true
		return &stripe.CheckoutSession{URL: "x"}, nil
	}, config.StripeConfig{})

	if _, err := linker.CreateLink(context.Background(), CheckoutRequest{Amount: decimal.Zero, Label: "x"}); err == nil {
		t.Fatal("expected zero amount to be rejected")
	}
	if _, err := linker.CreateLink(context.Background(), CheckoutRequest{Amount: decimal.NewFromInt(10), Label: " "}); err == nil {
		t.Fatal("expected blank label to be rejected")
	}
	if called {
		t.Fatal("stripe should not be called for invalid input")
	}
}

func TestCheckoutLinkerSurfacesStripeErrors(t *testing.T) {
	linker := newCheckoutLinker(func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("card_declined")
	}, config.StripeConfig{})
	if _, err := linker.CreateLink(context.Background(), CheckoutRequest{Amount: decimal.NewFromInt(150), Label: "Full"}); err == nil {
		t.Fatal("expected error")
	}

	empty := newCheckoutLinker(func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{}, nil
	}, config.StripeConfig{})
	if _, err := empty.CreateLink(context.Background(), CheckoutRequest{Amount: decimal.NewFromInt(150), Label: "Full"}); err == nil {
		t.Fatal("expected missing url error")
	}
}

func TestNewClientMatchesKeyToEnvironment(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Env: "test"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_live_123", Env: "test"}, nil); err == nil {
		t.Fatal("expected live key to be rejected in test env")
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "rk_live_9", Env: "LIVE"}, nil); err != nil {
		t.Fatalf("expected restricted live key to be accepted: %v", err)
	}
	if _, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Env: "staging"}, nil); err == nil {
		t.Fatal("expected unknown env to be rejected")
	}
	if _, err := NewClient(ctx, config.StripeConfig{Env: "test"}, nil); !errors.Is(err, errAPIKeyRequired) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
