package quizerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestInvalidInputError_Is(t *testing.T) {
	err := Invalid("n", 0, "must be positive")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("expected errors.Is to match ErrInvalidInput")
	}

	wrapped := fmt.Errorf("select questions: %w", err)
	if !IsInvalidInput(wrapped) {
		t.Fatal("expected wrapped error to match")
	}

	var target *InvalidInputError
	if !errors.As(wrapped, &target) {
		t.Fatal("expected errors.As to find *InvalidInputError")
	}
	if target.Field != "n" {
		t.Errorf("Field = %q, want %q", target.Field, "n")
	}
}

func TestInvalidInputError_Message(t *testing.T) {
	tests := []struct {
		err  *InvalidInputError
		want string
	}{
		{Invalid("intervalDays", -1, "must not be negative"), "invalid input: intervalDays=-1 must not be negative"},
		{Invalid("mode", nil, "is required"), "invalid input: mode is required"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsInvalidInput_OtherErrors(t *testing.T) {
	if IsInvalidInput(errors.New("boom")) {
		t.Error("plain error should not match")
	}
	if IsInvalidInput(nil) {
		t.Error("nil should not match")
	}
}
