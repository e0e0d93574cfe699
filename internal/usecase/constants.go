package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking the shift row
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long replayable responses are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// Operation labels used in metrics and logs
	opOpenShift  = "open_shift"
	opCloseShift = "close_shift"
	opPayment    = "payment"
	opRefund     = "refund"
	opVerify     = "verify"
)
