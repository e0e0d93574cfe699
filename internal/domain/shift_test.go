package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewShift(t *testing.T) {
	now := time.Now().UTC()

	s, err := NewShift("shift-1", "  A ", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CashierID != "A" || s.Version != 1 || s.IsClosed || !s.Totals.IsZero() {
		t.Errorf("unexpected shift %+v", s)
	}
	if !s.IsOpen() {
		t.Errorf("expected new shift to be open")
	}

	if _, err := NewShift("x", " ", now); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for blank cashier, got %v", err)
	}
	if _, err := NewShift("x", strings.Repeat("c", MaxCashierIDLength+1), now); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for long cashier, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	a := Totals{Cash: 1000, Card: 500}
	b := Totals{Cash: -1000, Transfer: 20}

	sum := a.Add(b)
	if sum != (Totals{Cash: 0, Card: 500, Transfer: 20}) {
		t.Errorf("unexpected sum %+v", sum)
	}
	if sum.Sum() != 520 {
		t.Errorf("expected 520, got %d", sum.Sum())
	}
	if !sum.NonNegative() {
		t.Errorf("expected non-negative")
	}
	if a.Add(Totals{Card: -501}).NonNegative() {
		t.Errorf("expected negative card to be detected")
	}
	if a.Neg().Add(a) != (Totals{}) {
		t.Errorf("neg should cancel")
	}
}

func TestConsistencyError(t *testing.T) {
	var err error = &ConsistencyError{
		ShiftID:    "s1",
		Stored:     Totals{Cash: 999},
		Recomputed: Totals{Cash: 1000},
	}

	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("expected errors.Is to match ErrConsistency")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatalf("consistency error must not be a conflict")
	}

	var ce *ConsistencyError
	if !errors.As(err, &ce) || ce.Recomputed.Cash != 1000 {
		t.Fatalf("expected errors.As to expose totals")
	}
}

func TestConflictFamily(t *testing.T) {
	for _, err := range []error{ErrShiftAlreadyOpen, ErrVersionConflict, ErrWouldGoNegative, ErrAlreadyRefunded} {
		if !errors.Is(err, ErrConflict) {
			t.Errorf("expected %v to be a conflict", err)
		}
	}
}
