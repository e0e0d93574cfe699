package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/postgres/generated"
	"github.com/iho/clinicdesk/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{
		queries: generated.New(db),
	}
}

// queriesFor reads inside tx when given, from the pool otherwise.
func (r *TransactionRepository) queriesFor(tx usecase.Transaction) *generated.Queries {
	if tx == nil {
		return r.queries
	}
	return txQueries(tx)
}

// Create inserts a transaction row.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	err := txQueries(tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:                   t.ID,
		ShiftID:              t.ShiftID,
		PatientID:            stringPtrToPgText(t.PatientID),
		DoctorID:             stringPtrToPgText(t.DoctorID),
		Amount:               t.Amount,
		PaymentMethod:        string(t.PaymentMethod),
		CashAmount:           t.Components.Cash,
		CardAmount:           t.Components.Card,
		TransferAmount:       t.Components.Transfer,
		Description:          t.Description,
		IdempotencyKey:       stringPtrToPgText(t.IdempotencyKey),
		RelatedTransactionID: stringPtrToPgText(t.RelatedTransactionID),
		CreatedAt:            timeToPgTimestamptz(t.CreatedAt),
	})

	return mapPgError(err)
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.GetByIDTx(ctx, nil, id)
}

// GetByIDTx retrieves a transaction by ID inside tx.
func (r *TransactionRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	row, err := r.queriesFor(tx).GetTransactionByID(ctx, id)
	return transactionOrErr(row, err)
}

// FindByIdempotencyKey retrieves the transaction posted on shiftID with key.
func (r *TransactionRepository) FindByIdempotencyKey(ctx context.Context, tx usecase.Transaction, shiftID, key string) (*domain.Transaction, error) {
	row, err := r.queriesFor(tx).GetTransactionByIdempotencyKey(ctx, generated.GetTransactionByIdempotencyKeyParams{
		ShiftID:        shiftID,
		IdempotencyKey: stringToPgText(key),
	})
	return transactionOrErr(row, err)
}

// FindRefund retrieves the refund posted against originalID.
func (r *TransactionRepository) FindRefund(ctx context.Context, tx usecase.Transaction, originalID string) (*domain.Transaction, error) {
	row, err := r.queriesFor(tx).GetRefundByOriginal(ctx, stringToPgText(originalID))
	return transactionOrErr(row, err)
}

// SumByShift recomputes the per-method totals of a shift.
func (r *TransactionRepository) SumByShift(ctx context.Context, tx usecase.Transaction, shiftID string) (domain.Totals, error) {
	row, err := r.queriesFor(tx).SumTransactionsByShift(ctx, shiftID)
	if err != nil {
		return domain.Totals{}, mapPgError(err)
	}

	return domain.Totals{
		Cash:     row.TotalCash,
		Card:     row.TotalCard,
		Transfer: row.TotalTransfer,
	}, nil
}

// ListByShift retrieves the transactions of a shift in posting order.
func (r *TransactionRepository) ListByShift(ctx context.Context, shiftID string, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByShift(ctx, generated.ListTransactionsByShiftParams{
		ShiftID: shiftID,
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, err
	}

	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToTransaction(row))
	}

	return txns, nil
}

func transactionOrErr(row generated.Transaction, err error) (*domain.Transaction, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, mapPgError(err)
	}

	return rowToTransaction(row), nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            row.ID,
		ShiftID:       row.ShiftID,
		PatientID:     pgTextToPtr(row.PatientID),
		DoctorID:      pgTextToPtr(row.DoctorID),
		Amount:        row.Amount,
		PaymentMethod: domain.PaymentMethod(row.PaymentMethod),
		Components: domain.Totals{
			Cash:     row.CashAmount,
			Card:     row.CardAmount,
			Transfer: row.TransferAmount,
		},
		Description:          row.Description,
		IdempotencyKey:       pgTextToPtr(row.IdempotencyKey),
		RelatedTransactionID: pgTextToPtr(row.RelatedTransactionID),
		CreatedAt:            row.CreatedAt.Time,
		DeletedAt:            pgTimestamptzToPtr(row.DeletedAt),
	}
}
