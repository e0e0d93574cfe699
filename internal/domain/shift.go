package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxCashierIDLength bounds the cashier identifier stored on a shift.
const MaxCashierIDLength = 128

// Totals holds per-method amounts in minor currency units. It is used both
// for a shift's running totals and for a transaction's component split.
type Totals struct {
	Cash     int64 `json:"cash"`
	Card     int64 `json:"card"`
	Transfer int64 `json:"transfer"`
}

// Add returns the field-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Cash:     t.Cash + o.Cash,
		Card:     t.Card + o.Card,
		Transfer: t.Transfer + o.Transfer,
	}
}

// Neg returns the field-wise negation.
func (t Totals) Neg() Totals {
	return Totals{Cash: -t.Cash, Card: -t.Card, Transfer: -t.Transfer}
}

// Sum returns cash + card + transfer.
func (t Totals) Sum() int64 {
	return t.Cash + t.Card + t.Transfer
}

// NonNegative reports whether every field is >= 0.
func (t Totals) NonNegative() bool {
	return t.Cash >= 0 && t.Card >= 0 && t.Transfer >= 0
}

// IsZero reports whether every field is 0.
func (t Totals) IsZero() bool {
	return t == Totals{}
}

// Shift is one cash-register session for one cashier.
type Shift struct {
	ID        string
	CashierID string
	StartTime time.Time
	EndTime   *time.Time
	Totals    Totals
	IsClosed  bool
	Version   int64
	DeletedAt *time.Time
}

// NewShift builds an open shift with zero totals and version 1.
func NewShift(id, cashierID string, now time.Time) (*Shift, error) {
	cashierID = strings.TrimSpace(cashierID)
	if cashierID == "" {
		return nil, fmt.Errorf("%w: cashier_id is required", ErrValidation)
	}
	if len(cashierID) > MaxCashierIDLength {
		return nil, fmt.Errorf("%w: cashier_id exceeds %d characters", ErrValidation, MaxCashierIDLength)
	}

	return &Shift{
		ID:        id,
		CashierID: cashierID,
		StartTime: now,
		Version:   1,
	}, nil
}

// IsOpen reports whether the shift accepts postings.
func (s *Shift) IsOpen() bool {
	return !s.IsClosed && s.DeletedAt == nil
}

// Apply returns the totals the shift would hold after adding deltas.
func (s *Shift) Apply(deltas Totals) Totals {
	return s.Totals.Add(deltas)
}
