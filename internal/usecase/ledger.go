package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/metrics"
)

// LedgerDeps are the collaborators shared by every ledger use case. Locker,
// Audit, Outbox and Metrics are optional.
type LedgerDeps struct {
	TxManager    TransactionManager
	Shifts       ShiftRepository
	Transactions TransactionRepository
	Audit        AuditRepository
	Outbox       OutboxRepository
	Locker       ShiftLocker
	IDGen        IDGenerator
	Metrics      *metrics.Metrics
	// Timeout bounds each database transaction. Zero means DefaultTransactionTimeout.
	Timeout time.Duration
	// Now is the clock. Nil means time.Now in UTC.
	Now func() time.Time
}

func (d LedgerDeps) timeout() time.Duration {
	if d.Timeout <= 0 {
		return DefaultTransactionTimeout
	}
	return d.Timeout
}

func (d LedgerDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

// lockOpenShift is the concurrency guard: the advisory lock serializes shift
// state transitions across processes, then the open shift row is locked for
// the rest of tx. Without a locker only the row lock and the version guard
// remain.
func (d LedgerDeps) lockOpenShift(ctx context.Context, tx Transaction) (*domain.Shift, error) {
	if err := d.acquireLock(ctx, tx); err != nil {
		return nil, err
	}

	return d.Shifts.GetActiveForUpdate(ctx, tx)
}

func (d LedgerDeps) acquireLock(ctx context.Context, tx Transaction) error {
	if d.Locker == nil {
		return nil
	}
	return d.Locker.Lock(ctx, tx)
}

// writeAudit appends an audit entry. Failures are logged and never abort
// the enclosing transaction.
func (d LedgerDeps) writeAudit(ctx context.Context, tx Transaction, action domain.AuditAction, resourceType, resourceID, details string) {
	if d.Audit == nil {
		return
	}

	entry := &domain.AuditLog{
		ID:           d.IDGen.Generate(),
		UserID:       domain.ActorFromContext(ctx),
		Action:       string(action),
		Details:      details,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    domain.RequestIDFromContext(ctx),
		CreatedAt:    d.now(),
	}

	if err := d.Audit.CreateTx(ctx, tx, entry); err != nil {
		log.Warn().Err(err).
			Str("action", entry.Action).
			Str("resource_id", resourceID).
			Msg("audit log write failed")
		if d.Metrics != nil {
			d.Metrics.AuditLogFailures.Inc()
		}
		return
	}

	if d.Metrics != nil {
		d.Metrics.AuditLogsCreated.WithLabelValues(entry.Action).Inc()
	}
}

// emit stores an outbox event in tx.
func (d LedgerDeps) emit(ctx context.Context, tx Transaction, aggregateType, aggregateID, eventType string, payload map[string]any) error {
	if d.Outbox == nil {
		return nil
	}

	return d.Outbox.Create(ctx, tx, &domain.OutboxEvent{
		ID:            d.IDGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     d.now(),
	})
}

// observe records the outcome of a ledger operation.
func (d LedgerDeps) observe(op string, start time.Time, err error) {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConsistency):
			log.Error().Err(err).Str("operation", op).Msg("ledger consistency check failed")
		case errors.Is(err, domain.ErrConflict):
			log.Warn().Err(err).Str("operation", op).Msg("ledger conflict")
		}
	}

	if d.Metrics == nil {
		return
	}

	d.Metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil && errors.Is(err, domain.ErrConflict) {
		d.Metrics.LedgerConflicts.WithLabelValues(op, conflictReason(err)).Inc()
	}
}

func conflictReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrWouldGoNegative):
		return "negative_total"
	case errors.Is(err, domain.ErrVersionConflict):
		return "version"
	case errors.Is(err, domain.ErrShiftAlreadyOpen):
		return "already_open"
	case errors.Is(err, domain.ErrAlreadyRefunded):
		return "already_refunded"
	default:
		return "contention"
	}
}
