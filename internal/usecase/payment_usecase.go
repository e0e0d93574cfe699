package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/clinicdesk/internal/domain"
)

// PaymentUseCase posts payments, expenses and adjustments against the open
// shift.
type PaymentUseCase struct {
	deps     LedgerDeps
	auditor  *Auditor
	patients PatientDirectory
	limits   domain.AmountLimits
}

// NewPaymentUseCase creates a new PaymentUseCase. patients may be nil.
func NewPaymentUseCase(deps LedgerDeps, auditor *Auditor, patients PatientDirectory, limits domain.AmountLimits) *PaymentUseCase {
	return &PaymentUseCase{
		deps:     deps,
		auditor:  auditor,
		patients: patients,
		limits:   limits,
	}
}

// PostPaymentInput represents input for posting a transaction.
type PostPaymentInput struct {
	Amount         int64
	Method         domain.PaymentMethod
	Split          domain.Totals
	PatientID      *string
	DoctorID       *string
	Description    string
	IdempotencyKey *string
}

// PostPaymentResult is the posted transaction. Replayed is true when an
// earlier call with the same idempotency key already created it.
type PostPaymentResult struct {
	Transaction *domain.Transaction
	Replayed    bool
}

// Validate checks everything that does not need the database.
func (uc *PaymentUseCase) Validate(input PostPaymentInput) (domain.Totals, error) {
	if err := domain.ValidateAmount(input.Amount, uc.limits); err != nil {
		return domain.Totals{}, err
	}

	if err := domain.ValidateDescription(input.Amount, input.Description); err != nil {
		return domain.Totals{}, err
	}

	split, err := domain.SplitFor(input.Method, input.Amount, input.Split)
	if err != nil {
		return domain.Totals{}, err
	}

	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return domain.Totals{}, err
	}

	if err := domain.ValidateReference("patient_id", input.PatientID); err != nil {
		return domain.Totals{}, err
	}

	if err := domain.ValidateReference("doctor_id", input.DoctorID); err != nil {
		return domain.Totals{}, err
	}

	return split, nil
}

// Post validates and posts a transaction. A negative amount that would drive
// a running total below zero fails with domain.ErrWouldGoNegative and leaves
// the shift untouched.
func (uc *PaymentUseCase) Post(ctx context.Context, input PostPaymentInput) (result *PostPaymentResult, err error) {
	start := time.Now()
	defer func() { uc.deps.observe(opPayment, start, err) }()

	split, err := uc.Validate(input)
	if err != nil {
		return nil, err
	}

	if input.PatientID != nil && uc.patients != nil {
		exists, err := uc.patients.Exists(ctx, *input.PatientID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrPatientNotFound
		}
	}

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

	if input.IdempotencyKey != nil {
		existing, findErr := uc.deps.Transactions.FindByIdempotencyKey(txCtx, tx, shift.ID, *input.IdempotencyKey)
		switch {
		case findErr == nil:
			if uc.deps.Metrics != nil {
				uc.deps.Metrics.IdempotentReplays.Inc()
			}
			return &PostPaymentResult{Transaction: existing, Replayed: true}, nil
		case !errors.Is(findErr, domain.ErrTransactionNotFound):
			return nil, findErr
		}
	}

	if !shift.Apply(split).NonNegative() {
		return nil, domain.ErrWouldGoNegative
	}

	txn := &domain.Transaction{
		ID:             uc.deps.IDGen.Generate(),
		ShiftID:        shift.ID,
		PatientID:      input.PatientID,
		DoctorID:       input.DoctorID,
		Amount:         input.Amount,
		PaymentMethod:  input.Method,
		Components:     split,
		Description:    input.Description,
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      uc.deps.now(),
	}

	if err = uc.deps.Transactions.Create(txCtx, tx, txn); err != nil {
		return uc.recoverDuplicate(ctx, tx, txCtx, shift.ID, input.IdempotencyKey, err)
	}

	updated, err := uc.deps.Shifts.ApplyTotals(txCtx, tx, shift.ID, shift.Version, txn.Deltas())
	if err != nil {
		return nil, err
	}

	uc.deps.writeAudit(txCtx, tx, domain.AuditActionTransaction, domain.ResourceTypeTransaction, txn.ID, domain.TransactionDetails(txn))

	if err = uc.deps.emit(txCtx, tx, domain.AggregateTypeTransaction, txn.ID, domain.EventTypeTransactionPosted, domain.TransactionEventPayload(txn)); err != nil {
		return nil, err
	}

	if err = tx.Commit(txCtx); err != nil {
		return uc.recoverDuplicate(ctx, tx, txCtx, shift.ID, input.IdempotencyKey, err)
	}

	if uc.deps.Metrics != nil {
		method := string(txn.PaymentMethod)
		uc.deps.Metrics.TransactionsPosted.WithLabelValues(method).Inc()
		uc.deps.Metrics.TransactionAmount.WithLabelValues(method).Observe(float64(absAmount(txn.Amount)))
		uc.deps.Metrics.OpenShiftCash.Set(float64(updated.Totals.Cash))
	}

	return &PostPaymentResult{Transaction: txn}, nil
}

// recoverDuplicate handles an insert or commit that lost the race on the
// (shift_id, idempotency_key) index: the transaction is rolled back and the
// row committed by the concurrent request is returned instead.
func (uc *PaymentUseCase) recoverDuplicate(
	ctx context.Context,
	tx Transaction,
	txCtx context.Context,
	shiftID string,
	key *string,
	cause error,
) (*PostPaymentResult, error) {
	if key == nil || !errors.Is(cause, domain.ErrDuplicateIdempotencyKey) {
		return nil, cause
	}

	_ = tx.Rollback(txCtx)

	winner, err := uc.deps.Transactions.FindByIdempotencyKey(ctx, nil, shiftID, *key)
	if err != nil {
		log.Error().Err(err).
			Str("shift_id", shiftID).
			Str("idempotency_key", *key).
			Msg("duplicate idempotency key but winning row not readable")
		return nil, cause
	}

	if uc.deps.Metrics != nil {
		uc.deps.Metrics.IdempotencyRaceWins.Inc()
	}

	return &PostPaymentResult{Transaction: winner, Replayed: true}, nil
}

// Get returns a transaction by id.
func (uc *PaymentUseCase) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.deps.Transactions.GetByID(ctx, id)
}

func absAmount(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
