package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing lead_id")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing lead_id" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "lead_id"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "load lead")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if wrapped.Error() != "DEPENDENCY_ERROR: load lead: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "lead not found"))
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("untyped errors should map to internal")
	}
}

func TestIsCodeWalksTypedChain(t *testing.T) {
	inner := New(CodeNotFound, "lead not found")
	outer := Wrap(CodeDependency, inner, "refresh lead")

	if !IsCode(outer, CodeNotFound) {
		t.Fatalf("expected nested not found code to be detected")
	}
	if !IsCode(outer, CodeDependency) {
		t.Fatalf("expected outer code to be detected")
	}
	if IsCode(outer, CodeValidation) {
		t.Fatalf("unexpected validation match")
	}
	if IsCode(nil, CodeInternal) {
		t.Fatalf("nil error should not match")
	}
}

func TestDumpCapturesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "leads_pkey", TableName: "leads", Message: "duplicate key"}
	err := Wrap(CodeConflict, pgErr, "insert lead")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGConstraint != "leads_pkey" || d.PGTable != "leads" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
}

func TestDumpFieldsOmitPostgresKeysWithoutDBError(t *testing.T) {
	fields := Dump(New(CodeNotFound, "lead not found")).Fields()
	if fields["error_code"] != CodeNotFound {
		t.Fatalf("unexpected error_code %v", fields["error_code"])
	}
	if _, ok := fields["pg_code"]; ok {
		t.Fatalf("did not expect pg_code without a database error")
	}
}
