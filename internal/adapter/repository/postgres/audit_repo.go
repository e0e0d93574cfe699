package postgres

import (
	"context"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/postgres/generated"
	"github.com/iho/clinicdesk/internal/usecase"
)

// AuditRepository implements finance audit log persistence
type AuditRepository struct {
	queries *generated.Queries
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{queries: generated.New(db)}
}

// CreateTx inserts an audit entry inside a savepoint of tx, so a failed
// insert does not abort the ledger transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	params := generated.CreateAuditLogParams{
		ID:           log.ID,
		UserID:       log.UserID,
		Action:       log.Action,
		Details:      log.Details,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		RequestID:    stringToPgText(log.RequestID),
		CreatedAt:    timeToPgTimestamptz(log.CreatedAt),
	}

	return tx.(*Tx).Savepoint(ctx, func(q *generated.Queries) error {
		return q.CreateAuditLog(ctx, params)
	})
}
