package domain

import (
	"fmt"
	"strings"
	"time"
)

// PaymentMethod is how a transaction was settled.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodMixed    PaymentMethod = "MIXED"
)

// ParsePaymentMethod accepts any letter case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodMixed:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown payment method %q", ErrValidation, s)
}

// Transaction is one signed monetary posting against a shift. Rows are never
// updated after creation.
type Transaction struct {
	ID                   string
	ShiftID              string
	PatientID            *string
	DoctorID             *string
	Amount               int64
	PaymentMethod        PaymentMethod
	Components           Totals
	Description          string
	IdempotencyKey       *string
	RelatedTransactionID *string
	CreatedAt            time.Time
	DeletedAt            *time.Time
}

// Deltas returns the change this transaction applies to its shift's running
// totals. For stored rows the component split always carries the full amount,
// so the deltas equal the components.
func (t *Transaction) Deltas() Totals {
	return t.Components
}

// IsRefund reports whether the transaction reverses another one.
func (t *Transaction) IsRefund() bool {
	return t.RelatedTransactionID != nil
}

// SplitFor checks the method/split relationship of a client-posted
// transaction and returns the canonical split. For a non-MIXED method an
// all-zero split means "not provided" and the amount is placed in the
// matching component; any other split must already be exact.
func SplitFor(method PaymentMethod, amount int64, split Totals) (Totals, error) {
	if amount == 0 {
		return Totals{}, fmt.Errorf("%w: amount must not be zero", ErrValidation)
	}

	if method == PaymentMethodMixed {
		if amount < 0 {
			return Totals{}, fmt.Errorf("%w: mixed payment amount must be positive", ErrValidation)
		}
		if !split.NonNegative() {
			return Totals{}, fmt.Errorf("%w: mixed payment components must not be negative", ErrValidation)
		}
		if split.Sum() != amount {
			return Totals{}, fmt.Errorf("%w: mixed components sum to %d, amount is %d", ErrValidation, split.Sum(), amount)
		}
		return split, nil
	}

	var want Totals
	switch method {
	case PaymentMethodCash:
		want.Cash = amount
	case PaymentMethodCard:
		want.Card = amount
	case PaymentMethodTransfer:
		want.Transfer = amount
	default:
		return Totals{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	if split.IsZero() || split == want {
		return want, nil
	}
	return Totals{}, fmt.Errorf("%w: %s payment must put the whole amount in the %s component", ErrValidation, method, strings.ToLower(string(method)))
}

// RefundDescription is the description stored on a refund row.
func RefundDescription(reason, originalID string) string {
	return fmt.Sprintf("Refund: %s (original TX #%s)", strings.TrimSpace(reason), originalID)
}

// NewRefund builds the negative transaction that reverses original on shift
// shiftID. Amount and components are the negated absolute values of the
// original's.
func NewRefund(id, shiftID string, original *Transaction, reason string, now time.Time) (*Transaction, error) {
	if err := ValidateReason(reason); err != nil {
		return nil, err
	}
	if original.IsRefund() {
		return nil, fmt.Errorf("%w: a refund cannot be refunded", ErrValidation)
	}

	originalID := original.ID
	return &Transaction{
		ID:            id,
		ShiftID:       shiftID,
		PatientID:     original.PatientID,
		DoctorID:      original.DoctorID,
		Amount:        -abs(original.Amount),
		PaymentMethod: original.PaymentMethod,
		Components: Totals{
			Cash:     -abs(original.Components.Cash),
			Card:     -abs(original.Components.Card),
			Transfer: -abs(original.Components.Transfer),
		},
		Description:          RefundDescription(reason, original.ID),
		RelatedTransactionID: &originalID,
		CreatedAt:            now,
	}, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
