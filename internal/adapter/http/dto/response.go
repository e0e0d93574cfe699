package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

// Display renders minor units as a major-unit decimal.
func Display(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ShiftResponse represents a shift in API responses.
type ShiftResponse struct {
	ID                   string          `json:"id"`
	CashierID            string          `json:"cashier_id"`
	StartTime            time.Time       `json:"start_time"`
	EndTime              *time.Time      `json:"end_time"`
	TotalCash            int64           `json:"total_cash"`
	TotalCard            int64           `json:"total_card"`
	TotalTransfer        int64           `json:"total_transfer"`
	TotalCashDisplay     decimal.Decimal `json:"total_cash_display"`
	TotalCardDisplay     decimal.Decimal `json:"total_card_display"`
	TotalTransferDisplay decimal.Decimal `json:"total_transfer_display"`
	IsClosed             bool            `json:"is_closed"`
	Version              int64           `json:"version"`
}

// ShiftFromDomain converts a domain shift to a response.
func ShiftFromDomain(s *domain.Shift) *ShiftResponse {
	return &ShiftResponse{
		ID:                   s.ID,
		CashierID:            s.CashierID,
		StartTime:            s.StartTime,
		EndTime:              s.EndTime,
		TotalCash:            s.Totals.Cash,
		TotalCard:            s.Totals.Card,
		TotalTransfer:        s.Totals.Transfer,
		TotalCashDisplay:     Display(s.Totals.Cash),
		TotalCardDisplay:     Display(s.Totals.Card),
		TotalTransferDisplay: Display(s.Totals.Transfer),
		IsClosed:             s.IsClosed,
		Version:              s.Version,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                   string          `json:"id"`
	ShiftID              string          `json:"shift_id"`
	PatientID            *string         `json:"patient_id,omitempty"`
	DoctorID             *string         `json:"doctor_id,omitempty"`
	Amount               int64           `json:"amount"`
	AmountDisplay        decimal.Decimal `json:"amount_display"`
	PaymentMethod        string          `json:"payment_method"`
	CashAmount           int64           `json:"cash_amount"`
	CardAmount           int64           `json:"card_amount"`
	TransferAmount       int64           `json:"transfer_amount"`
	Description          string          `json:"description,omitempty"`
	IdempotencyKey       *string         `json:"idempotency_key,omitempty"`
	RelatedTransactionID *string         `json:"related_transaction_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                   t.ID,
		ShiftID:              t.ShiftID,
		PatientID:            t.PatientID,
		DoctorID:             t.DoctorID,
		Amount:               t.Amount,
		AmountDisplay:        Display(t.Amount),
		PaymentMethod:        string(t.PaymentMethod),
		CashAmount:           t.Components.Cash,
		CardAmount:           t.Components.Card,
		TransferAmount:       t.Components.Transfer,
		Description:          t.Description,
		IdempotencyKey:       t.IdempotencyKey,
		RelatedTransactionID: t.RelatedTransactionID,
		CreatedAt:            t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse is a page of a shift's transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// ReportResponse represents an X or Z report.
type ReportResponse struct {
	Type               string          `json:"type"`
	ShiftID            string          `json:"shift_id"`
	Cashier            string          `json:"cashier"`
	TotalCash          int64           `json:"total_cash"`
	TotalCard          int64           `json:"total_card"`
	TotalTransfer      int64           `json:"total_transfer"`
	TotalIncome        int64           `json:"total_income"`
	TotalIncomeDisplay decimal.Decimal `json:"total_income_display"`
	StartTime          time.Time       `json:"start_time"`
	ClosedAt           *time.Time      `json:"closed_at,omitempty"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// ReportFromUseCase converts a report to a response.
func ReportFromUseCase(r *usecase.Report) *ReportResponse {
	return &ReportResponse{
		Type:               r.Type,
		ShiftID:            r.ShiftID,
		Cashier:            r.Cashier,
		TotalCash:          r.Totals.Cash,
		TotalCard:          r.Totals.Card,
		TotalTransfer:      r.Totals.Transfer,
		TotalIncome:        r.TotalIncome,
		TotalIncomeDisplay: Display(r.TotalIncome),
		StartTime:          r.StartTime,
		ClosedAt:           r.ClosedAt,
		GeneratedAt:        r.GeneratedAt,
	}
}

// TotalsResponse is a per-method breakdown.
type TotalsResponse struct {
	Cash     int64 `json:"cash"`
	Card     int64 `json:"card"`
	Transfer int64 `json:"transfer"`
}

// TotalsFromDomain converts domain totals to a response.
func TotalsFromDomain(t domain.Totals) TotalsResponse {
	return TotalsResponse{Cash: t.Cash, Card: t.Card, Transfer: t.Transfer}
}

// VerifyResponse is the result of a consistency check.
type VerifyResponse struct {
	ShiftID    string         `json:"shift_id"`
	Consistent bool           `json:"consistent"`
	Stored     TotalsResponse `json:"stored"`
	Recomputed TotalsResponse `json:"recomputed"`
	CheckedAt  time.Time      `json:"checked_at"`
}

// VerifyFromUseCase converts a verification result to a response.
func VerifyFromUseCase(v *usecase.VerifyResult) *VerifyResponse {
	return &VerifyResponse{
		ShiftID:    v.Shift.ID,
		Consistent: v.Consistent,
		Stored:     TotalsFromDomain(v.Shift.Totals),
		Recomputed: TotalsFromDomain(v.Recomputed),
		CheckedAt:  v.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
