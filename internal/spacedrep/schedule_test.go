package spacedrep

import (
	"errors"
	"math"
	"testing"

	"github.com/abhisek/fedrill/internal/quizerr"
)

func TestNextInterval_WrongAlwaysResets(t *testing.T) {
	for _, current := range []int64{0, 1, 3, 8, 25, 1000, math.MaxInt64} {
		got, err := NextInterval(current, false)
		if err != nil {
			t.Fatalf("NextInterval(%d, false): %v", current, err)
		}
		if got != 0 {
			t.Errorf("NextInterval(%d, false) = %d, want 0", current, got)
		}
	}
}

func TestNextInterval_CorrectLadder(t *testing.T) {
	tests := []struct {
		current  int64
		expected int64
	}{
		{0, 1},
		{1, 3},
		{2, 5},
		{3, 8},
		{4, 10},
		{8, 20},
		{10, 25},
		{25, 63},
		{63, 158},
	}
	for _, tt := range tests {
		got, err := NextInterval(tt.current, true)
		if err != nil {
			t.Fatalf("NextInterval(%d, true): %v", tt.current, err)
		}
		if got != tt.expected {
			t.Errorf("NextInterval(%d, true) = %d, want %d", tt.current, got, tt.expected)
		}
	}
}

func TestNextInterval_MatchesFloatCeil(t *testing.T) {
	for current := int64(2); current < 5000; current++ {
		got, _ := NextInterval(current, true)
		want := int64(math.Ceil(float64(current) * 2.5))
		if got != want {
			t.Fatalf("NextInterval(%d, true) = %d, want %d", current, got, want)
		}
	}
}

func TestNextInterval_Negative(t *testing.T) {
	_, err := NextInterval(-1, true)
	if err == nil {
		t.Fatal("expected error for negative interval")
	}
	if !errors.Is(err, quizerr.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
	var inv *quizerr.InvalidInputError
	if !errors.As(err, &inv) || inv.Field != "intervalDays" {
		t.Errorf("expected InvalidInputError on intervalDays, got %v", err)
	}
}

func TestNextInterval_Saturates(t *testing.T) {
	got, err := NextInterval(math.MaxInt64/2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MaxIntervalDays {
		t.Errorf("NextInterval(huge) = %d, want %d", got, MaxIntervalDays)
	}

	// Largest value that still grows exactly.
	got, _ = NextInterval(maxGrowable, true)
	if got <= maxGrowable {
		t.Errorf("NextInterval(maxGrowable) = %d, want growth", got)
	}
}

func TestNextInterval_Monotonic(t *testing.T) {
	current := int64(0)
	for i := 0; i < 60; i++ {
		next, err := NextInterval(current, true)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if next < current {
			t.Fatalf("step %d: interval shrank from %d to %d", i, current, next)
		}
		current = next
	}
	if current != MaxIntervalDays {
		t.Errorf("after 60 correct answers interval = %d, want saturation", current)
	}
}
