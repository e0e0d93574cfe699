package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/clinicdesk/internal/domain"
)

// PostgreSQL error codes the ledger distinguishes.
const (
	pgErrUniqueViolation      = "23505"
	pgErrForeignKeyViolation  = "23503"
	pgErrCheckViolation       = "23514"
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
	pgErrUndefinedFunction    = "42883"
)

// Constraint names from the ledger migration.
const (
	constraintSingleOpenShift        = "uq_shifts_single_open"
	constraintShiftIdempotencyKey    = "uq_transactions_shift_idempotency_key"
	constraintSingleRefund           = "uq_transactions_single_refund"
	constraintShiftTotalsNonNegative = "chk_shifts_totals_non_negative"
	constraintTransactionPatient     = "transactions_patient_id_fkey"
)

// mapPgError translates database errors into domain errors. Errors that are
// not *pgconn.PgError are returned unchanged.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintSingleOpenShift:
			return domain.ErrShiftAlreadyOpen
		case constraintShiftIdempotencyKey:
			return domain.ErrDuplicateIdempotencyKey
		case constraintSingleRefund:
			return domain.ErrDuplicateRefund
		}
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)

	case pgErrCheckViolation:
		if pgErr.ConstraintName == constraintShiftTotalsNonNegative {
			return domain.ErrWouldGoNegative
		}
		return fmt.Errorf("%w: constraint %s violated", domain.ErrValidation, pgErr.ConstraintName)

	case pgErrForeignKeyViolation:
		if pgErr.ConstraintName == constraintTransactionPatient {
			return domain.ErrPatientNotFound
		}
		return fmt.Errorf("%w: constraint %s violated", domain.ErrValidation, pgErr.ConstraintName)

	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
	}

	return err
}

// isContentionError checks if the database aborted the transaction for lock
// contention. Callers surface these as conflicts and never retry them here.
func isContentionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
			return true
		}
	}
	return false
}
