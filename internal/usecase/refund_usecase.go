package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/clinicdesk/internal/domain"
)

// RefundUseCase reverses a posted payment by posting a negative transaction
// on the open shift.
type RefundUseCase struct {
	deps    LedgerDeps
	auditor *Auditor
	visits  VisitChecker
}

// NewRefundUseCase creates a new RefundUseCase. visits may be nil, in which
// case the service-delivery rule is not enforced.
func NewRefundUseCase(deps LedgerDeps, auditor *Auditor, visits VisitChecker) *RefundUseCase {
	return &RefundUseCase{deps: deps, auditor: auditor, visits: visits}
}

// RefundInput represents input for refunding a transaction.
type RefundInput struct {
	TransactionID string
	Reason        string
}

// Refund posts the refund of input.TransactionID. It is forbidden once an
// appointment for the same patient was created at or after the original
// payment.
func (uc *RefundUseCase) Refund(ctx context.Context, input RefundInput) (refund *domain.Transaction, err error) {
	start := time.Now()
	defer func() { uc.deps.observe(opRefund, start, err) }()

	if err = domain.ValidateReason(input.Reason); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.deps.timeout())
	defer cancel()

	tx, err := uc.deps.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err = uc.deps.acquireLock(txCtx, tx); err != nil {
		return nil, err
	}

	original, err := uc.deps.Transactions.GetByIDTx(txCtx, tx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	if original.PatientID != nil && uc.visits != nil {
		started, err := uc.visits.HasVisitSince(txCtx, *original.PatientID, original.CreatedAt)
		if err != nil {
			return nil, err
		}
		if started {
			return nil, fmt.Errorf("%w: appointment has already started", domain.ErrRefundForbidden)
		}
	}

	shift, err := uc.deps.Shifts.GetActiveForUpdate(txCtx, tx)
	if err != nil {
		return nil, err
	}

	if err = uc.auditor.Verify(txCtx, tx, shift); err != nil {
		return nil, err
	}

	refund, err = domain.NewRefund(uc.deps.IDGen.Generate(), shift.ID, original, input.Reason, uc.deps.now())
	if err != nil {
		return nil, err
	}

	// Checked under the shift row lock, so sequential duplicates are caught here
	// and only a true race reaches the unique index.
	if _, findErr := uc.deps.Transactions.FindRefund(txCtx, tx, original.ID); findErr == nil {
		return nil, domain.ErrAlreadyRefunded
	} else if !errors.Is(findErr, domain.ErrTransactionNotFound) {
		return nil, findErr
	}

	if !shift.Apply(refund.Deltas()).NonNegative() {
		return nil, domain.ErrWouldGoNegative
	}

	if err = uc.deps.Transactions.Create(txCtx, tx, refund); err != nil {
		return uc.recoverDuplicate(ctx, tx, txCtx, original.ID, err)
	}

	updated, err := uc.deps.Shifts.ApplyTotals(txCtx, tx, shift.ID, shift.Version, refund.Deltas())
	if err != nil {
		return nil, err
	}

	uc.deps.writeAudit(txCtx, tx, domain.AuditActionRefund, domain.ResourceTypeTransaction, refund.ID, domain.RefundDetails(original, input.Reason))

	if err = uc.deps.emit(txCtx, tx, domain.AggregateTypeTransaction, refund.ID, domain.EventTypeTransactionRefunded, domain.TransactionEventPayload(refund)); err != nil {
		return nil, err
	}

	if err = tx.Commit(txCtx); err != nil {
		return uc.recoverDuplicate(ctx, tx, txCtx, original.ID, err)
	}

	if uc.deps.Metrics != nil {
		uc.deps.Metrics.RefundsPosted.Inc()
		uc.deps.Metrics.OpenShiftCash.Set(float64(updated.Totals.Cash))
	}

	return refund, nil
}

// recoverDuplicate returns the refund committed by a concurrent request when
// this one lost the race on the one-refund-per-original index.
func (uc *RefundUseCase) recoverDuplicate(ctx context.Context, tx Transaction, txCtx context.Context, originalID string, cause error) (*domain.Transaction, error) {
	if !errors.Is(cause, domain.ErrDuplicateRefund) {
		return nil, cause
	}

	_ = tx.Rollback(txCtx)

	winner, err := uc.deps.Transactions.FindRefund(ctx, nil, originalID)
	if err != nil {
		return nil, domain.ErrAlreadyRefunded
	}

	if uc.deps.Metrics != nil {
		uc.deps.Metrics.IdempotencyRaceWins.Inc()
	}

	return winner, nil
}
