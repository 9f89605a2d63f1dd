package quotes

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bizzyglass/bizzyglass-backend/pkg/db"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
)

type leadReader interface {
	FindByID(ctx context.Context, id string) (*models.Lead, error)
}

// Service composes quote messages and creates standalone payment links.
type Service interface {
	Catalog() Catalog
	GenerateQuoteMessage(ctx context.Context, req GenerateQuoteRequest) (string, error)
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (string, error)
}

type service struct {
	leads    leadReader
	linker   PaymentLinker
	checkout checkoutCreator
	catalog  Catalog
}

// NewService wires quote composition. checkout may be nil when Stripe is not
// configured; quote messages then rely on linker alone.
func NewService(leads leadReader, linker PaymentLinker, checkout checkoutCreator) (Service, error) {
	if leads == nil {
		return nil, errors.New("lead repository required")
	}
	if linker == nil {
		return nil, errors.New("payment linker required")
	}
	return &service{
		leads:    leads,
		linker:   linker,
		checkout: checkout,
		catalog:  DefaultCatalog(),
	}, nil
}

func (s *service) Catalog() Catalog {
	return s.catalog
}

func (s *service) GenerateQuoteMessage(ctx context.Context, req GenerateQuoteRequest) (string, error) {
	lead, err := s.leads.FindByID(ctx, strings.TrimSpace(req.LeadID))
	if err != nil {
		if db.IsNotFound(err) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lead")
	}

	input := ComposeInput{
		LeadID:      lead.ID,
		FirstName:   lead.FirstName,
		Make:        firstNonEmpty(req.Make, lead.Make),
		Model:       firstNonEmpty(req.Model, lead.Model),
		Selection:   req.selection(),
		Terms:       req.terms(),
		Slots:       req.AppointmentSlots,
		Description: req.InvoiceDescription,
	}
	if raw := strings.TrimSpace(req.Total); raw != "" {
		total, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
		if err != nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid total").
				WithDetails(map[string]string{"total": "must be a number"})
		}
		input.Total = &total
	}
	return Compose(ctx, s.linker, input)
}

func (s *service) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (string, error) {
	if s.checkout == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "stripe is not configured")
	}
	if !req.Amount.IsPositive() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero").
			WithDetails(map[string]string{"amount": "must be greater than zero"})
	}
	url, err := s.checkout.CreateLink(ctx, checkoutRequest(req))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return url, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
