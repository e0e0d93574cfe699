package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

func TestShiftFromDomain(t *testing.T) {
	start := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	resp := ShiftFromDomain(&domain.Shift{
		ID:        "s-1",
		CashierID: "cashier-1",
		StartTime: start,
		Totals:    domain.Totals{Cash: 150050, Card: 7, Transfer: 0},
		Version:   3,
	})

	assert.Equal(t, int64(150050), resp.TotalCash)
	assert.Equal(t, "1500.5", resp.TotalCashDisplay.String())
	assert.Equal(t, "0.07", resp.TotalCardDisplay.String())
	assert.Nil(t, resp.EndTime)
	assert.Equal(t, int64(3), resp.Version)
}

func TestTransactionFromDomain(t *testing.T) {
	related := "t-1"
	txn := &domain.Transaction{
		ID:                   "t-2",
		ShiftID:              "s-1",
		Amount:               -1000,
		PaymentMethod:        domain.PaymentMethodCash,
		Components:           domain.Totals{Cash: -1000},
		Description:          domain.RefundDescription("duplicate", related),
		RelatedTransactionID: &related,
	}

	resp := TransactionFromDomain(txn)
	assert.Equal(t, "CASH", resp.PaymentMethod)
	assert.Equal(t, int64(-1000), resp.CashAmount)
	assert.Equal(t, "-10", resp.AmountDisplay.String())
	require.NotNil(t, resp.RelatedTransactionID)

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "t-1", decoded["related_transaction_id"])
	assert.NotContains(t, decoded, "patient_id")

	list := TransactionsFromDomain([]*domain.Transaction{txn})
	assert.Len(t, list, 1)
}

func TestReportFromUseCase(t *testing.T) {
	closed := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	resp := ReportFromUseCase(&usecase.Report{
		Type:        "Z-Report",
		ShiftID:     "s-1",
		Cashier:     "cashier-1",
		Totals:      domain.Totals{Cash: 100, Card: 200, Transfer: 300},
		TotalIncome: 600,
		ClosedAt:    &closed,
	})

	assert.Equal(t, "Z-Report", resp.Type)
	assert.Equal(t, int64(300), resp.TotalTransfer)
	assert.Equal(t, "6", resp.TotalIncomeDisplay.String())
	assert.Equal(t, &closed, resp.ClosedAt)
}

func TestVerifyFromUseCase(t *testing.T) {
	resp := VerifyFromUseCase(&usecase.VerifyResult{
		Shift:      &domain.Shift{ID: "s-1", Totals: domain.Totals{Cash: 500}},
		Recomputed: domain.Totals{Cash: 400},
	})

	assert.False(t, resp.Consistent)
	assert.Equal(t, TotalsResponse{Cash: 500}, resp.Stored)
	assert.Equal(t, TotalsResponse{Cash: 400}, resp.Recomputed)
}
