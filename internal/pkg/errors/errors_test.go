package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := New(CodeValidationFailure, "candidate too small")
	if err.Error() != "VALIDATION_FAILURE: candidate too small" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	wrapped := Wrap(CodeParseFailure, "grammar rejected input", errors.New("boom"))
	if wrapped.Error() != "PARSE_FAILURE: grammar rejected input: boom" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("tree-sitter panic")
	err := ParseFailure("parse failed", inner)

	if !errors.Is(err, inner) {
		t.Error("wrapped error should be reachable via errors.Is")
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		err         *AppError
		recoverable bool
	}{
		{ParseFailure("p", nil), true},
		{ValidationFailure("v"), true},
		{ResourceExhausted("r"), true},
		{ErrorBudgetExceeded("b"), true},
		{EmptyInput(), true},
		{TimeoutError("ast tier"), true},
		{UnrecoverableIO("bad bytes", nil), false},
		{InternalError("bug", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if tt.err.Recoverable() != tt.recoverable {
				t.Errorf("Recoverable() = %v, expected %v", tt.err.Recoverable(), tt.recoverable)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	if !IsParseFailure(ParseFailure("p", nil)) {
		t.Error("IsParseFailure should match")
	}
	if !IsEmptyInput(EmptyInput()) {
		t.Error("IsEmptyInput should match")
	}
	if IsUnrecoverable(ParseFailure("p", nil)) {
		t.Error("parse failures are recoverable")
	}
	if !IsUnrecoverable(UnrecoverableIO("io", nil)) {
		t.Error("IO failures are unrecoverable")
	}
	if IsUnrecoverable(errors.New("plain")) {
		t.Error("unknown errors default to recoverable")
	}
}

func TestPredicatesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("attempt failed: %w", ResourceExhausted("memory ceiling"))
	if !IsResourceExhausted(err) {
		t.Error("predicate should see through fmt wrapping")
	}
}

func TestWithDetail(t *testing.T) {
	err := ValidationFailure("unbalanced").WithDetail("line", "42")
	if err.Details["line"] != "42" {
		t.Errorf("expected detail to be set, got %v", err.Details)
	}
}
