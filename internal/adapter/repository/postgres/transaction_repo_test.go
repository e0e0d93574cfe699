package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/clinicdesk/internal/domain"
)

var transactionColumns = []string{
	"id", "shift_id", "patient_id", "doctor_id", "amount", "payment_method",
	"cash_amount", "card_amount", "transfer_amount", "description",
	"idempotency_key", "related_transaction_id", "created_at", "deleted_at",
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func TestTransactionRepository_Create(t *testing.T) {
	key := "key-1"
	patient := "p-1"
	txn := &domain.Transaction{
		ID:             "t-1",
		ShiftID:        "s-1",
		PatientID:      &patient,
		Amount:         900,
		PaymentMethod:  domain.PaymentMethodMixed,
		Components:     domain.Totals{Cash: 200, Card: 300, Transfer: 400},
		Description:    "visit",
		IdempotencyKey: &key,
		CreatedAt:      testStart,
	}

	mockPool := newMockPool(t)
	tx := beginMockTx(t, mockPool)
	mockPool.ExpectExec("INSERT INTO transactions").
		WithArgs("t-1", "s-1", text("p-1"), pgtype.Text{}, int64(900), "MIXED",
			int64(200), int64(300), int64(400), "visit", text("key-1"), pgtype.Text{},
			pgtype.Timestamptz{Time: testStart, Valid: true}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewTransactionRepository(mockPool).Create(context.Background(), tx, txn))
	assertExpectations(t, mockPool)
}

func TestTransactionRepository_Create_MapsConstraints(t *testing.T) {
	tests := []struct {
		name   string
		pgErr  *pgconn.PgError
		expect error
	}{
		{
			name:   "idempotency key taken",
			pgErr:  &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintShiftIdempotencyKey},
			expect: domain.ErrDuplicateIdempotencyKey,
		},
		{
			name:   "refund already posted",
			pgErr:  &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: constraintSingleRefund},
			expect: domain.ErrDuplicateRefund,
		},
		{
			name:   "unknown patient",
			pgErr:  &pgconn.PgError{Code: pgErrForeignKeyViolation, ConstraintName: constraintTransactionPatient},
			expect: domain.ErrPatientNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			tx := beginMockTx(t, mockPool)
			mockPool.ExpectExec("INSERT INTO transactions").
				WithArgs(anyArgs(13)...).
				WillReturnError(tt.pgErr)

			err := NewTransactionRepository(mockPool).Create(context.Background(), tx, &domain.Transaction{
				ID:            "t-1",
				ShiftID:       "s-1",
				Amount:        100,
				PaymentMethod: domain.PaymentMethodCash,
				Components:    domain.Totals{Cash: 100},
				CreatedAt:     testStart,
			})
			assert.ErrorIs(t, err, tt.expect)
		})
	}
}

func TestTransactionRepository_GetByID(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewTransactionRepository(mockPool)

	mockPool.ExpectQuery("FROM transactions").WithArgs("r-1").
		WillReturnRows(pgxmock.NewRows(transactionColumns).AddRow(
			"r-1", "s-2", pgtype.Text{}, pgtype.Text{}, int64(-100), "CASH",
			int64(-100), int64(0), int64(0), "Refund: duplicate",
			pgtype.Text{}, text("t-1"), pgtype.Timestamptz{Time: testStart, Valid: true}, pgtype.Timestamptz{},
		))

	txn, err := repo.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.True(t, txn.IsRefund())
	assert.Equal(t, "t-1", *txn.RelatedTransactionID)
	assert.Equal(t, domain.Totals{Cash: -100}, txn.Components)
	assert.Nil(t, txn.PatientID)

	mockPool.ExpectQuery("FROM transactions").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	assertExpectations(t, mockPool)
}

func TestTransactionRepository_FindByIdempotencyKey_ScopedToShift(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginMockTx(t, mockPool)

	mockPool.ExpectQuery("FROM transactions").
		WithArgs("s-2", text("key-1")).
		WillReturnError(pgx.ErrNoRows)

	_, err := NewTransactionRepository(mockPool).FindByIdempotencyKey(context.Background(), tx, "s-2", "key-1")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assertExpectations(t, mockPool)
}

func TestTransactionRepository_SumByShift(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginMockTx(t, mockPool)

	mockPool.ExpectQuery("SUM\\(cash_amount\\)").WithArgs("s-1").
		WillReturnRows(pgxmock.NewRows([]string{"total_cash", "total_card", "total_transfer"}).
			AddRow(int64(1000), int64(500), int64(0)))

	totals, err := NewTransactionRepository(mockPool).SumByShift(context.Background(), tx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{Cash: 1000, Card: 500}, totals)
	assertExpectations(t, mockPool)
}

func TestTransactionRepository_ListByShift(t *testing.T) {
	mockPool := newMockPool(t)

	rows := pgxmock.NewRows(transactionColumns)
	for _, id := range []string{"t-1", "t-2"} {
		rows.AddRow(id, "s-1", pgtype.Text{}, pgtype.Text{}, int64(100), "CARD",
			int64(0), int64(100), int64(0), "service",
			pgtype.Text{}, pgtype.Text{}, pgtype.Timestamptz{Time: testStart, Valid: true}, pgtype.Timestamptz{})
	}
	mockPool.ExpectQuery("FROM transactions").WithArgs("s-1", int32(2), int32(0)).WillReturnRows(rows)

	txns, err := NewTransactionRepository(mockPool).ListByShift(context.Background(), "s-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "t-1", txns[0].ID)
	assert.Equal(t, domain.PaymentMethodCard, txns[1].PaymentMethod)
	assertExpectations(t, mockPool)
}
