package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/types"
)

// clientFacing codes carry a message written for the caller, so it is
// returned instead of the generic public message.
var clientFacing = map[pkgerrors.Code]struct{}{
	pkgerrors.CodeValidation:    {},
	pkgerrors.CodeForbidden:     {},
	pkgerrors.CodeUnauthorized:  {},
	pkgerrors.CodeNotFound:      {},
	pkgerrors.CodeConflict:      {},
	pkgerrors.CodeStateConflict: {},
	pkgerrors.CodeRateLimit:     {},
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteJSON writes payload without the data envelope. Used by the lead and
// quote endpoints whose clients expect the bare resource.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if _, ok := clientFacing[typed.Code()]; ok && typed.Message() != "" {
		msg = typed.Message()
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		fields["status"] = meta.HTTPStatus
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; an encode failure can only be a broken connection.
	_ = json.NewEncoder(w).Encode(payload)
}
