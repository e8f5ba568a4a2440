package auth

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	if err := Authorize("user-1", "user-1"); err != nil {
		t.Fatalf("expected owner to be allowed: %v", err)
	}
	if err := Authorize("user-1", "user-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Authorize("", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected empty principal to be denied, got %v", err)
	}
}
