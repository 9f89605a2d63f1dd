package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
)

// GenerateQuoteRequest is the payload of POST /api/generate-quote-message.
type GenerateQuoteRequest struct {
	LeadID             string            `json:"lead_id" validate:"required"`
	Total              string            `json:"total,omitempty"`
	PaymentOption      enums.PaymentMode `json:"payment_option" validate:"required,oneof=full deposit both"`
	DepositAmount      string            `json:"deposit_amount,omitempty"`
	DepositPercentage  int               `json:"deposit_percentage,omitempty" validate:"omitempty,oneof=25 50 75"`
	Services           []SelectionItem   `json:"services" validate:"dive"`
	Addons             []SelectionItem   `json:"addons" validate:"dive"`
	CustomAddons       []SelectionItem   `json:"custom_addons" validate:"dive"`
	AppointmentSlots   []string          `json:"appointment_slots"`
	InvoiceDescription string            `json:"invoice_description,omitempty"`
	Make               string            `json:"make,omitempty"`
	Model              string            `json:"model,omitempty"`
}

type GenerateQuoteResponse struct {
	QuoteMessage string `json:"quote_message"`
}

// PaymentLinkRequest is the payload of POST /create-stripe-link. Amount is in dollars.
type PaymentLinkRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label" validate:"required,max=120"`
}

type PaymentLinkResponse struct {
	URL string `json:"url"`
}

func (r GenerateQuoteRequest) selection() Selection {
	return Selection{
		Services:     r.Services,
		Addons:       r.Addons,
		CustomAddons: r.CustomAddons,
	}
}

func (r GenerateQuoteRequest) terms() Terms {
	return Terms{
		Mode:              r.PaymentOption,
		DepositAmount:     r.DepositAmount,
		DepositPercentage: r.DepositPercentage,
	}
}
