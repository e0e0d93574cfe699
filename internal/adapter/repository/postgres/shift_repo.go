package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/postgres/generated"
	"github.com/iho/clinicdesk/internal/usecase"
)

// ShiftRepository implements usecase.ShiftRepository.
type ShiftRepository struct {
	queries *generated.Queries
}

// NewShiftRepository creates a new ShiftRepository.
func NewShiftRepository(db generated.DBTX) *ShiftRepository {
	return &ShiftRepository{
		queries: generated.New(db),
	}
}

// Create inserts a new open shift. The single-open-shift index rejects a
// concurrent open with domain.ErrShiftAlreadyOpen.
func (r *ShiftRepository) Create(ctx context.Context, tx usecase.Transaction, shift *domain.Shift) error {
	_, err := txQueries(tx).CreateShift(ctx, generated.CreateShiftParams{
		ID:        shift.ID,
		CashierID: shift.CashierID,
		StartTime: timeToPgTimestamptz(shift.StartTime),
		Version:   shift.Version,
	})

	return mapPgError(err)
}

// GetByID retrieves a shift by ID.
func (r *ShiftRepository) GetByID(ctx context.Context, id string) (*domain.Shift, error) {
	row, err := r.queries.GetShiftByID(ctx, id)
	return shiftOrErr(row, err, domain.ErrShiftNotFound)
}

// GetByIDForUpdate retrieves a shift by ID with a FOR UPDATE lock.
func (r *ShiftRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Shift, error) {
	row, err := txQueries(tx).GetShiftByIDForUpdate(ctx, id)
	return shiftOrErr(row, err, domain.ErrShiftNotFound)
}

// GetActive retrieves the open shift.
func (r *ShiftRepository) GetActive(ctx context.Context) (*domain.Shift, error) {
	row, err := r.queries.GetActiveShift(ctx)
	return shiftOrErr(row, err, domain.ErrNoOpenShift)
}

// GetActiveForUpdate retrieves the open shift with a FOR UPDATE lock.
func (r *ShiftRepository) GetActiveForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Shift, error) {
	row, err := txQueries(tx).GetActiveShiftForUpdate(ctx)
	return shiftOrErr(row, err, domain.ErrNoOpenShift)
}

// ApplyTotals adds deltas in one conditional UPDATE. No returned row means
// the version moved, the shift closed or a total would turn negative.
func (r *ShiftRepository) ApplyTotals(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, deltas domain.Totals) (*domain.Shift, error) {
	row, err := txQueries(tx).ApplyShiftTotals(ctx, generated.ApplyShiftTotalsParams{
		CashDelta:       deltas.Cash,
		CardDelta:       deltas.Card,
		TransferDelta:   deltas.Transfer,
		ID:              id,
		ExpectedVersion: expectedVersion,
	})
	return shiftOrErr(row, err, domain.ErrVersionConflict)
}

// Close marks the shift closed under the version guard.
func (r *ShiftRepository) Close(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, endTime time.Time) (*domain.Shift, error) {
	row, err := txQueries(tx).CloseShift(ctx, generated.CloseShiftParams{
		EndTime:         timeToPgTimestamptz(endTime),
		ID:              id,
		ExpectedVersion: expectedVersion,
	})
	return shiftOrErr(row, err, domain.ErrVersionConflict)
}

// GetLastClosed retrieves the shift with the latest end time.
func (r *ShiftRepository) GetLastClosed(ctx context.Context) (*domain.Shift, error) {
	row, err := r.queries.GetLastClosedShift(ctx)
	return shiftOrErr(row, err, domain.ErrShiftNotFound)
}

func shiftOrErr(row generated.Shift, err error, noRows error) (*domain.Shift, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows
		}

		return nil, mapPgError(err)
	}

	return rowToShift(row), nil
}

func rowToShift(row generated.Shift) *domain.Shift {
	return &domain.Shift{
		ID:        row.ID,
		CashierID: row.CashierID,
		StartTime: row.StartTime.Time,
		EndTime:   pgTimestamptzToPtr(row.EndTime),
		Totals: domain.Totals{
			Cash:     row.TotalCash,
			Card:     row.TotalCard,
			Transfer: row.TotalTransfer,
		},
		IsClosed:  row.IsClosed,
		Version:   row.Version,
		DeletedAt: pgTimestamptzToPtr(row.DeletedAt),
	}
}
