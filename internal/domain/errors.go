package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every input validation error.
	ErrValidation = errors.New("validation failed")

	// Shift errors
	ErrShiftNotFound    = errors.New("shift not found")
	ErrNoOpenShift      = errors.New("no open shift")
	ErrShiftAlreadyOpen = fmt.Errorf("%w: a shift is already open", ErrConflict)

	// Transaction errors
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrPatientNotFound         = errors.New("patient not found")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// Refund errors
	ErrRefundForbidden = errors.New("refund forbidden")
	ErrAlreadyRefunded = fmt.Errorf("%w: transaction already refunded", ErrConflict)
	ErrDuplicateRefund = fmt.Errorf("%w: duplicate refund for transaction", ErrConflict)

	// ErrConflict is returned when a conditional update lost a race or the
	// store aborted the transaction for contention. Clients may retry.
	ErrConflict = errors.New("conflict")

	// ErrVersionConflict means the compare-and-swap on a shift matched zero rows.
	ErrVersionConflict = fmt.Errorf("%w: shift was modified concurrently, retry", ErrConflict)

	// ErrWouldGoNegative means a running total would drop below zero.
	ErrWouldGoNegative = fmt.Errorf("%w: running total would become negative", ErrConflict)

	// ErrConsistency is the sentinel matched by *ConsistencyError.
	ErrConsistency = errors.New("shift totals are inconsistent with transactions")
)

// ConsistencyError reports a mismatch between the running totals stored on a
// shift and the totals recomputed from its transactions. It is never
// corrected automatically.
type ConsistencyError struct {
	ShiftID    string
	Stored     Totals
	Recomputed Totals
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf(
		"%s: shift %s stored cash=%d card=%d transfer=%d, recomputed cash=%d card=%d transfer=%d",
		ErrConsistency.Error(), e.ShiftID,
		e.Stored.Cash, e.Stored.Card, e.Stored.Transfer,
		e.Recomputed.Cash, e.Recomputed.Card, e.Recomputed.Transfer,
	)
}

// Is makes errors.Is(err, ErrConsistency) match.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}

// IsValidation reports whether err is an input validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
