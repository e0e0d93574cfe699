package usecase

import (
	"context"
	"time"

	"github.com/iho/clinicdesk/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// ShiftRepository defines data access for shifts. Every read excludes
// soft-deleted rows.
type ShiftRepository interface {
	Create(ctx context.Context, tx Transaction, shift *domain.Shift) error
	GetByID(ctx context.Context, id string) (*domain.Shift, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Shift, error)
	// GetActive returns domain.ErrNoOpenShift when no shift is open.
	GetActive(ctx context.Context) (*domain.Shift, error)
	// GetActiveForUpdate locks the open shift row for the rest of tx.
	GetActiveForUpdate(ctx context.Context, tx Transaction) (*domain.Shift, error)
	// ApplyTotals adds deltas to the running totals in one conditional
	// statement guarded by version, is_closed and non-negative results.
	// Zero affected rows yields domain.ErrVersionConflict.
	ApplyTotals(ctx context.Context, tx Transaction, id string, expectedVersion int64, deltas domain.Totals) (*domain.Shift, error)
	// Close marks the shift closed under the same version guard.
	Close(ctx context.Context, tx Transaction, id string, expectedVersion int64, endTime time.Time) (*domain.Shift, error)
	// GetLastClosed returns the most recently closed shift or domain.ErrShiftNotFound.
	GetLastClosed(ctx context.Context) (*domain.Shift, error)
}

// TransactionRepository defines data access for ledger transactions.
// Lookup methods accept a nil tx to read outside any transaction.
type TransactionRepository interface {
	// Create returns domain.ErrDuplicateIdempotencyKey when the
	// (shift_id, idempotency_key) index rejects the row.
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	// FindByIdempotencyKey returns domain.ErrTransactionNotFound when absent.
	FindByIdempotencyKey(ctx context.Context, tx Transaction, shiftID, key string) (*domain.Transaction, error)
	// FindRefund returns the refund posted against originalID, or
	// domain.ErrTransactionNotFound.
	FindRefund(ctx context.Context, tx Transaction, originalID string) (*domain.Transaction, error)
	// SumByShift recomputes per-method totals from non-deleted rows.
	SumByShift(ctx context.Context, tx Transaction, shiftID string) (domain.Totals, error)
	ListByShift(ctx context.Context, shiftID string, limit, offset int) ([]*domain.Transaction, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	// CreateTx appends an entry inside tx. A failed write must leave tx usable.
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
}

// ShiftLocker serializes shift state transitions across processes for the
// lifetime of tx.
type ShiftLocker interface {
	Lock(ctx context.Context, tx Transaction) error
}

// VisitChecker reports whether a downstream business record (an appointment)
// exists for the patient at or after the given time.
type VisitChecker interface {
	HasVisitSince(ctx context.Context, patientID string, since time.Time) (bool, error)
}

// PatientDirectory looks up patients by id.
type PatientDirectory interface {
	Exists(ctx context.Context, patientID string) (bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose request failed.
	Delete(ctx context.Context, key string) error
}
