package quotes

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bizzyglass/bizzyglass-backend/pkg/stripe"
)

const PaymentLinkPlaceholder = "[Payment Link]"

type LinkKind string

const (
	LinkFull    LinkKind = "full"
	LinkDeposit LinkKind = "deposit"
)

// LinkRequest asks for a checkout link covering Amount for the lead.
type LinkRequest struct {
	LeadID string
	Kind   LinkKind
	Amount decimal.Decimal
}

// PaymentLinker produces the checkout URLs embedded in quote messages.
type PaymentLinker interface {
	PaymentLink(ctx context.Context, req LinkRequest) (string, error)
}

// DemoLinker builds fake checkout URLs of the form
// {base}-{leadID}-{kind}-{amount}.
type DemoLinker struct {
	BaseURL string
}

func (d DemoLinker) PaymentLink(_ context.Context, req LinkRequest) (string, error) {
	base := strings.TrimRight(d.BaseURL, "-/")
	if base == "" {
		return "", fmt.Errorf("demo payment base url not configured")
	}
	return fmt.Sprintf("%s-%s-%s-%s", base, req.LeadID, req.Kind, req.Amount.String()), nil
}

type checkoutCreator interface {
	CreateLink(ctx context.Context, req stripe.CheckoutRequest) (string, error)
}

// StripeLinker asks Stripe for a checkout session per link. The returned URL is used verbatim.
type StripeLinker struct {
	checkout checkoutCreator
}

func NewStripeLinker(checkout checkoutCreator) *StripeLinker {
	return &StripeLinker{checkout: checkout}
}

func (s *StripeLinker) PaymentLink(ctx context.Context, req LinkRequest) (string, error) {
	return s.checkout.CreateLink(ctx, stripe.CheckoutRequest{
		Amount: req.Amount,
		Label:  linkLabel(req),
		Metadata: map[string]string{
			"lead_id": req.LeadID,
			"kind":    string(req.Kind),
		},
	})
}

func checkoutRequest(req PaymentLinkRequest) stripe.CheckoutRequest {
	return stripe.CheckoutRequest{
		Amount:   req.Amount,
		Label:    strings.TrimSpace(req.Label),
		Metadata: map[string]string{"source": "create-stripe-link"},
	}
}

func linkLabel(req LinkRequest) string {
	if req.Kind == LinkDeposit {
		return fmt.Sprintf("Auto glass deposit (%s)", req.LeadID)
	}
	return fmt.Sprintf("Auto glass service (%s)", req.LeadID)
}

var tokenRe = regexp.MustCompile(`\S+`)

// StripLinks replaces every whitespace-delimited token starting with http://
// or https:// with the payment link placeholder. Other tokens and the
// whitespace between them are left as typed; the result is trimmed.
func StripLinks(text string) string {
	replaced := tokenRe.ReplaceAllStringFunc(text, func(token string) string {
		if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
			return PaymentLinkPlaceholder
		}
		return token
	})
	return strings.TrimSpace(replaced)
}
