package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/iho/clinicdesk/internal/infrastructure/postgres/generated"
	"github.com/iho/clinicdesk/internal/usecase"
)

// DefaultShiftLockKey is the advisory lock key shared by every process
// operating on the till.
const DefaultShiftLockKey int64 = 21001

// AdvisoryLocker implements usecase.ShiftLocker with a transaction-scoped
// PostgreSQL advisory lock. The lock is released on commit or rollback.
type AdvisoryLocker struct {
	key int64
}

// NewAdvisoryLocker creates a locker for key. Zero selects DefaultShiftLockKey.
func NewAdvisoryLocker(key int64) *AdvisoryLocker {
	if key == 0 {
		key = DefaultShiftLockKey
	}
	return &AdvisoryLocker{key: key}
}

// Lock blocks until the advisory lock is held by tx. When the server has no
// advisory lock function the step is skipped and the row lock plus version
// guard remain the only protection.
func (l *AdvisoryLocker) Lock(ctx context.Context, tx usecase.Transaction) error {
	err := tx.(*Tx).Savepoint(ctx, func(q *generated.Queries) error {
		return q.AcquireShiftLock(ctx, l.key)
	})
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUndefinedFunction {
		log.Warn().Int64("lock_key", l.key).Msg("advisory locks unavailable, relying on row locks only")
		return nil
	}

	return mapPgError(err)
}
