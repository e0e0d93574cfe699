package domain

import "time"

// Event types
const (
	EventTypeShiftOpened         = "shift.opened"
	EventTypeShiftClosed         = "shift.closed"
	EventTypeTransactionPosted   = "transaction.posted"
	EventTypeTransactionRefunded = "transaction.refunded"
)

// Aggregate types
const (
	AggregateTypeShift       = "shift"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ShiftEventPayload is the payload of shift.opened and shift.closed.
func ShiftEventPayload(s *Shift) map[string]any {
	p := map[string]any{
		"shift_id":       s.ID,
		"cashier_id":     s.CashierID,
		"total_cash":     s.Totals.Cash,
		"total_card":     s.Totals.Card,
		"total_transfer": s.Totals.Transfer,
		"version":        s.Version,
		"start_time":     s.StartTime.Format(time.RFC3339Nano),
	}
	if s.EndTime != nil {
		p["end_time"] = s.EndTime.Format(time.RFC3339Nano)
	}
	return p
}

// TransactionEventPayload is the payload of transaction.posted and transaction.refunded.
func TransactionEventPayload(t *Transaction) map[string]any {
	p := map[string]any{
		"transaction_id":  t.ID,
		"shift_id":        t.ShiftID,
		"amount":          t.Amount,
		"payment_method":  string(t.PaymentMethod),
		"cash_amount":     t.Components.Cash,
		"card_amount":     t.Components.Card,
		"transfer_amount": t.Components.Transfer,
		"created_at":      t.CreatedAt.Format(time.RFC3339Nano),
	}
	if t.PatientID != nil {
		p["patient_id"] = *t.PatientID
	}
	if t.DoctorID != nil {
		p["doctor_id"] = *t.DoctorID
	}
	if t.RelatedTransactionID != nil {
		p["related_transaction_id"] = *t.RelatedTransactionID
	}
	return p
}
