package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iho/clinicdesk/internal/domain"
)

func TestAdvisoryLocker_Lock(t *testing.T) {
	tests := []struct {
		name    string
		key     int64
		wantKey int64
		lockErr error
		expect  error
	}{
		{name: "default key", key: 0, wantKey: DefaultShiftLockKey},
		{name: "configured key", key: 42, wantKey: 42},
		{
			name:    "advisory locks unavailable",
			wantKey: DefaultShiftLockKey,
			lockErr: &pgconn.PgError{Code: pgErrUndefinedFunction},
		},
		{
			name:    "lock timeout",
			wantKey: DefaultShiftLockKey,
			lockErr: &pgconn.PgError{Code: pgErrLockNotAvailable},
			expect:  domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			tx := beginMockTx(t, mockPool)

			mockPool.ExpectBegin()
			exec := mockPool.ExpectExec("pg_advisory_xact_lock").WithArgs(tt.wantKey)
			if tt.lockErr != nil {
				exec.WillReturnError(tt.lockErr)
				mockPool.ExpectRollback()
			} else {
				exec.WillReturnResult(pgxmock.NewResult("SELECT", 1))
				mockPool.ExpectCommit()
			}

			err := NewAdvisoryLocker(tt.key).Lock(context.Background(), tx)
			if tt.expect == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expect)
			}
			assertExpectations(t, mockPool)
		})
	}
}
