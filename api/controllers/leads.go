package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bizzyglass/bizzyglass-backend/api/responses"
	"github.com/bizzyglass/bizzyglass-backend/api/validators"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
)

const maxSearchLen = 120

func leadServiceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lead service unavailable"))
}

func leadIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "lead id is required")
	}
	return id, nil
}

// LeadCreate is the public intake endpoint behind the quote request form.
func LeadCreate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		var body leads.CreateLeadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, lead)
	}
}

// LeadList returns the lead collection. search, status, urgency and sort are
// optional; "all" disables the status and urgency filters.
func LeadList(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		filter, err := leads.ParseFilter(
			validators.QueryString(r, "search", maxSearchLen),
			validators.QueryString(r, "status", 32),
			validators.QueryString(r, "urgency", 32),
			validators.QueryString(r, "sort", 32),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list filter").
				WithDetails(map[string]string{"filter": err.Error()}))
			return
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []leads.LeadDTO{}
		}

		responses.WriteJSON(w, http.StatusOK, list)
	}
}

func LeadDetail(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		id, err := leadIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, lead)
	}
}

// LeadAddMessage appends an owner message with payment links stripped.
func LeadAddMessage(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		id, err := leadIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body leads.AddMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.AppendMessage(r.Context(), id, body.Message)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, lead)
	}
}

func LeadUpdateStatus(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		id, err := leadIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body leads.UpdateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.UpdateStatus(r.Context(), id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, lead)
	}
}

func LeadStats(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func LeadFollowUps(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		followUps, err := svc.FollowUps(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, followUps)
	}
}

// SendFinalQuote appends the composed quote verbatim, links included.
func SendFinalQuote(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			leadServiceUnavailable(w, r, logg)
			return
		}

		var body leads.SendFinalQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lead, err := svc.SendFinalQuote(r.Context(), body.LeadID, body.MessageContent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, lead)
	}
}
