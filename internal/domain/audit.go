package domain

import (
	"context"
	"fmt"
	"time"
)

// SystemActor is recorded when no authenticated user is attached to the request.
const SystemActor = "system"

// AuditLog is an append-only record of a mutating ledger action.
type AuditLog struct {
	ID           string
	UserID       string // actor
	Action       string
	Details      string
	ResourceType string
	ResourceID   string
	RequestID    string
	CreatedAt    time.Time
}

// AuditAction names a ledger action.
type AuditAction string

const (
	AuditActionShiftOpen   AuditAction = "shift_open"
	AuditActionShiftClose  AuditAction = "shift_close"
	AuditActionTransaction AuditAction = "transaction"
	AuditActionRefund      AuditAction = "refund"
)

// Resource types
const (
	ResourceTypeShift       = "shift"
	ResourceTypeTransaction = "transaction"
)

// ShiftOpenDetails formats the details of a shift_open entry.
func ShiftOpenDetails(s *Shift) string {
	return fmt.Sprintf("cashier_id=%s, shift_id=%s", s.CashierID, s.ID)
}

// ShiftCloseDetails formats the details of a shift_close entry.
func ShiftCloseDetails(s *Shift) string {
	return fmt.Sprintf("shift_id=%s, cash=%d, card=%d, transfer=%d",
		s.ID, s.Totals.Cash, s.Totals.Card, s.Totals.Transfer)
}

// TransactionDetails formats the details of a transaction entry.
func TransactionDetails(t *Transaction) string {
	patient := "none"
	if t.PatientID != nil {
		patient = *t.PatientID
	}
	return fmt.Sprintf("tx_id=%s, amount=%d, method=%s, patient_id=%s", t.ID, t.Amount, t.PaymentMethod, patient)
}

// RefundDetails formats the details of a refund entry.
func RefundDetails(original *Transaction, reason string) string {
	return fmt.Sprintf("Refunded TX #%s for %d (reason: %s)", original.ID, abs(original.Amount), reason)
}

type requestIDContextKey struct{}

// WithRequestID attaches the HTTP request id used to correlate audit entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
