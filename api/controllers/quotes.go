package controllers

import (
	"net/http"

	"github.com/bizzyglass/bizzyglass-backend/api/responses"
	"github.com/bizzyglass/bizzyglass-backend/api/validators"
	"github.com/bizzyglass/bizzyglass-backend/internal/quotes"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
)

func quoteServiceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
}

// Catalog lists the glass services, add-ons and time slots the quote builder offers.
func Catalog(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quoteServiceUnavailable(w, r, logg)
			return
		}
		responses.WriteSuccess(w, svc.Catalog())
	}
}

func GenerateQuoteMessage(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quoteServiceUnavailable(w, r, logg)
			return
		}

		var body quotes.GenerateQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithLeadID(ctx, body.LeadID)
		}

		message, err := svc.GenerateQuoteMessage(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, quotes.GenerateQuoteResponse{QuoteMessage: message})
	}
}

// CreateStripeLink creates a standalone checkout link for an arbitrary amount.
func CreateStripeLink(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			quoteServiceUnavailable(w, r, logg)
			return
		}

		var body quotes.PaymentLinkRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.CreatePaymentLink(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, quotes.PaymentLinkResponse{URL: url})
	}
}
