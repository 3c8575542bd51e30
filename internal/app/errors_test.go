package app

import (
	"errors"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{"op only", &OperationError{Op: "sleep"}, "sleep"},
		{"op and target", &OperationError{Op: "select", Target: "view-post"}, "select view-post"},
		{"full", NewOperationError("select", "teleport", ErrUnknownMode), "select teleport: unknown mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = '%s', expected '%s'", got, tt.expected)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	err := NewOperationError("sleep", "", ErrNoModeSelected)

	if !errors.Is(err, ErrNoModeSelected) {
		t.Error("expected errors.Is to match wrapped sentinel")
	}
	if errors.Is(err, ErrBusy) {
		t.Error("expected errors.Is to not match different error")
	}

	var opErr *OperationError
	if !errors.As(error(err), &opErr) || opErr.Op != "sleep" {
		t.Errorf("errors.As failed: %v", opErr)
	}
}

func TestInitError(t *testing.T) {
	inner := errors.New("no tty")
	err := &InitError{Component: "backend", Err: inner}

	if err.Error() != "init backend: no tty" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to match inner error")
	}
}
