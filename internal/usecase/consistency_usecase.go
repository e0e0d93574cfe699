package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/clinicdesk/internal/domain"
)

// Auditor recomputes a shift's running totals from its transactions and
// compares them with the stored values. A mismatch is reported as a
// *domain.ConsistencyError and is never repaired here.
type Auditor struct {
	deps LedgerDeps
}

// NewAuditor creates a new Auditor.
func NewAuditor(deps LedgerDeps) *Auditor {
	return &Auditor{deps: deps}
}

// VerifyResult is the outcome of a standalone consistency check.
type VerifyResult struct {
	Shift      *domain.Shift
	Recomputed domain.Totals
	Consistent bool
	CheckedAt  time.Time
}

// Verify checks shift against the transactions visible in tx.
func (a *Auditor) Verify(ctx context.Context, tx Transaction, shift *domain.Shift) error {
	recomputed, err := a.deps.Transactions.SumByShift(ctx, tx, shift.ID)
	if err != nil {
		return err
	}

	if recomputed != shift.Totals {
		if a.deps.Metrics != nil {
			a.deps.Metrics.ConsistencyFailures.Inc()
		}
		return &domain.ConsistencyError{
			ShiftID:    shift.ID,
			Stored:     shift.Totals,
			Recomputed: recomputed,
		}
	}

	return nil
}

// VerifyShift runs a standalone check of one shift, or of the open shift when
// shiftID is empty. The shift row is locked for the duration so concurrent
// postings cannot produce a false mismatch. A mismatch is returned both in
// the result and as the error.
func (a *Auditor) VerifyShift(ctx context.Context, shiftID string) (result *VerifyResult, err error) {
	start := time.Now()
	defer func() { a.deps.observe(opVerify, start, err) }()

	txCtx, cancel := context.WithTimeout(ctx, a.deps.timeout())
	defer cancel()

	tx, err := a.deps.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	var shift *domain.Shift
	if shiftID == "" {
		shift, err = a.deps.lockOpenShift(txCtx, tx)
	} else {
		if err = a.deps.acquireLock(txCtx, tx); err == nil {
			shift, err = a.deps.Shifts.GetByIDForUpdate(txCtx, tx, shiftID)
		}
	}
	if err != nil {
		return nil, err
	}

	recomputed, err := a.deps.Transactions.SumByShift(txCtx, tx, shift.ID)
	if err != nil {
		return nil, err
	}

	result = &VerifyResult{
		Shift:      shift,
		Recomputed: recomputed,
		Consistent: recomputed == shift.Totals,
		CheckedAt:  a.deps.now(),
	}

	if !result.Consistent {
		if a.deps.Metrics != nil {
			a.deps.Metrics.ConsistencyFailures.Inc()
		}
		return result, &domain.ConsistencyError{ShiftID: shift.ID, Stored: shift.Totals, Recomputed: recomputed}
	}

	return result, nil
}

// IsConsistencyError reports whether err is a totals mismatch.
func IsConsistencyError(err error) bool {
	return errors.Is(err, domain.ErrConsistency)
}
