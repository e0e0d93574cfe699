package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/clinicdesk/internal/domain"
)

// ShiftUseCase opens, queries and closes cashier shifts.
type ShiftUseCase struct {
	deps    LedgerDeps
	auditor *Auditor
}

// NewShiftUseCase creates a new ShiftUseCase.
func NewShiftUseCase(deps LedgerDeps, auditor *Auditor) *ShiftUseCase {
	return &ShiftUseCase{deps: deps, auditor: auditor}
}

// Open starts a new shift for cashierID. It fails with
// domain.ErrShiftAlreadyOpen while another shift is open.
func (uc *ShiftUseCase) Open(ctx context.Context, cashierID string) (shift *domain.Shift, err error) {
	start := time.Now()
	defer func() { uc.deps.observe(opOpenShift, start, err) }()

	shift, err = domain.NewShift(uc.deps.IDGen.Generate(), cashierID, uc.deps.now())
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.deps.timeout())
	defer cancel()

	tx, err := uc.deps.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	existing, err := uc.deps.lockOpenShift(txCtx, tx)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrShiftAlreadyOpen
	case err != nil && !errors.Is(err, domain.ErrNoOpenShift):
		return nil, err
	}

	// The partial unique index on open shifts rejects a concurrent insert
	// when the advisory lock is unavailable.
	if err = uc.deps.Shifts.Create(txCtx, tx, shift); err != nil {
		return nil, err
	}

	uc.deps.writeAudit(txCtx, tx, domain.AuditActionShiftOpen, domain.ResourceTypeShift, shift.ID, domain.ShiftOpenDetails(shift))

	if err = uc.deps.emit(txCtx, tx, domain.AggregateTypeShift, shift.ID, domain.EventTypeShiftOpened, domain.ShiftEventPayload(shift)); err != nil {
		return nil, err
	}

	if err = tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.deps.Metrics != nil {
		uc.deps.Metrics.ShiftsOpened.Inc()
		uc.deps.Metrics.OpenShiftCash.Set(0)
	}

	return shift, nil
}

// GetActive returns the open shift, or nil when none is open.
func (uc *ShiftUseCase) GetActive(ctx context.Context) (*domain.Shift, error) {
	shift, err := uc.deps.Shifts.GetActive(ctx)
	if errors.Is(err, domain.ErrNoOpenShift) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// Get returns a shift by id.
func (uc *ShiftUseCase) Get(ctx context.Context, id string) (*domain.Shift, error) {
	return uc.deps.Shifts.GetByID(ctx, id)
}

// ListTransactions lists the non-deleted transactions of a shift.
func (uc *ShiftUseCase) ListTransactions(ctx context.Context, shiftID string, limit, offset int) ([]*domain.Transaction, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	if _, err := uc.deps.Shifts.GetByID(ctx, shiftID); err != nil {
		return nil, err
	}

	return uc.deps.Transactions.ListByShift(ctx, shiftID, limit, offset)
}

// Close closes the open shift after verifying its totals. A totals mismatch
// fails with *domain.ConsistencyError and leaves the shift open.
func (uc *ShiftUseCase) Close(ctx context.Context) (closed *domain.Shift, err error) {
	start := time.Now()
	defer func() { uc.deps.observe(opCloseShift, start, err) }()

	txCtx, cancel := context.WithTimeout(ctx, uc.deps.timeout())
	defer cancel()

	tx, err := uc.deps.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	shift, err := uc.deps.lockOpenShift(txCtx, tx)
	if err != nil {
		return nil, err
	}

	if err = uc.auditor.Verify(txCtx, tx, shift); err != nil {
		return nil, err
	}

	closed, err = uc.deps.Shifts.Close(txCtx, tx, shift.ID, shift.Version, uc.deps.now())
	if err != nil {
		return nil, err
	}

	uc.deps.writeAudit(txCtx, tx, domain.AuditActionShiftClose, domain.ResourceTypeShift, closed.ID, domain.ShiftCloseDetails(closed))

	if err = uc.deps.emit(txCtx, tx, domain.AggregateTypeShift, closed.ID, domain.EventTypeShiftClosed, domain.ShiftEventPayload(closed)); err != nil {
		return nil, err
	}

	if err = tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.deps.Metrics != nil {
		uc.deps.Metrics.ShiftsClosed.Inc()
		uc.deps.Metrics.OpenShiftCash.Set(0)
	}

	return closed, nil
}
