package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
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
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "request is no longer pending", detailsOK: true},
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
	base := New(CodeValidation, "reason is required")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "reason is required" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detailed := base.WithDetails(map[string]any{"field": "reason"})
	if detailed.Details() == nil {
		t.Fatalf("details should be preserved")
	}
	if base.Details() != nil {
		t.Fatalf("WithDetails must not mutate the receiver")
	}

	cause := stdErrors.New("row locked")
	wrapped := Wrap(CodeDependency, cause, "update leave request")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}

	formatted := Newf(CodeNotFound, "leave request %s not found", "abc")
	if formatted.Message() != "leave request abc not found" {
		t.Fatalf("unexpected formatted message %q", formatted.Message())
	}
}

func TestAsAndIsCodeFollowWrappedChains(t *testing.T) {
	err := fmt.Errorf("approve: %w", New(CodeConflict, "already approved"))
	if got := As(err); got == nil || got.Code() != CodeConflict {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeConflict) {
		t.Fatalf("expected IsCode to find conflict")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("did not expect not found")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatalf("plain errors should map to internal")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("reject: %w", New(CodeConflict, "leave request is already approved"))
	if !stdErrors.Is(err, New(CodeConflict, "")) {
		t.Fatalf("empty-message target should match any conflict")
	}
	if stdErrors.Is(err, New(CodeConflict, "leave request is already rejected")) {
		t.Fatalf("different message must not match")
	}
	if stdErrors.Is(err, New(CodeNotFound, "")) {
		t.Fatalf("different code must not match")
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Fatalf("nil stays nil")
	}
	typed := New(CodeForbidden, "not your request")
	if Classify(typed) != typed {
		t.Fatalf("typed errors pass through")
	}
	timeout := fmt.Errorf("query leave requests: %w", context.DeadlineExceeded)
	if got := Classify(timeout); got.Code() != CodeDependency || !stdErrors.Is(got, context.DeadlineExceeded) {
		t.Fatalf("deadline should classify as dependency, got %v", got)
	}
	if !Retryable(timeout) {
		t.Fatalf("timeouts are retryable")
	}
	if Retryable(New(CodeValidation, "bad input")) {
		t.Fatalf("validation errors are not retryable")
	}
	if got := Classify(stdErrors.New("boom")); got.Code() != CodeInternal {
		t.Fatalf("plain errors classify as internal, got %s", got.Code())
	}
}

func TestCodeKnown(t *testing.T) {
	if !CodeStateConflict.Known() || Code("NOPE").Known() {
		t.Fatalf("unexpected Known results")
	}
}
