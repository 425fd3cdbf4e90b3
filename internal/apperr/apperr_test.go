package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("court_id", "is required"), ErrValidation},
		{"conflict", Conflict(CodeSlotTaken, "slot already taken", nil), ErrConflict},
		{"forbidden", Forbidden("not yours"), ErrForbidden},
		{"not found", NotFound("missing"), ErrNotFound},
		{"unauthenticated", Unauthenticated("login required"), ErrUnauthenticated},
		{"transient", Transient("store failed", context.DeadlineExceeded), ErrTransientStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Fatalf("expected %v to match kind %v", wrapped, tt.kind)
			}
			for _, other := range []error{ErrValidation, ErrConflict, ErrForbidden, ErrNotFound, ErrUnauthenticated, ErrTransientStore} {
				if other != tt.kind && errors.Is(wrapped, other) {
					t.Fatalf("expected %v not to match %v", wrapped, other)
				}
			}
		})
	}
}

func TestTransientKeepsCause(t *testing.T) {
	err := Transient("failed to load reservations", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be reachable, got %v", err)
	}
	if err.Message != "failed to load reservations" {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict(CodeSlotTaken, "slot already taken", nil))
	appErr, ok := As(err)
	if !ok {
		t.Fatal("expected classified error")
	}
	if appErr.Code != CodeSlotTaken {
		t.Fatalf("expected code %q, got %q", CodeSlotTaken, appErr.Code)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Fatal("expected plain error to be unclassified")
	}
}

func TestValidationMessageIncludesField(t *testing.T) {
	err := Validation("slot", "must be on the booking grid")
	if err.Error() != "slot must be on the booking grid" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err.Field != "slot" {
		t.Fatalf("expected field slot, got %q", err.Field)
	}
}
