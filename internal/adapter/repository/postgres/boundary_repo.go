package postgres

import (
	"context"
	"time"

	"github.com/iho/clinicdesk/internal/infrastructure/postgres/generated"
)

// PatientRepository implements usecase.PatientDirectory over the patients table.
type PatientRepository struct {
	queries *generated.Queries
}

// NewPatientRepository creates a new PatientRepository.
func NewPatientRepository(db generated.DBTX) *PatientRepository {
	return &PatientRepository{queries: generated.New(db)}
}

// Exists reports whether a non-deleted patient with id exists.
func (r *PatientRepository) Exists(ctx context.Context, patientID string) (bool, error) {
	return r.queries.PatientExists(ctx, patientID)
}

// VisitRepository implements usecase.VisitChecker over the appointments table.
type VisitRepository struct {
	queries *generated.Queries
}

// NewVisitRepository creates a new VisitRepository.
func NewVisitRepository(db generated.DBTX) *VisitRepository {
	return &VisitRepository{queries: generated.New(db)}
}

// HasVisitSince reports whether an appointment for the patient was created at
// or after since.
func (r *VisitRepository) HasVisitSince(ctx context.Context, patientID string, since time.Time) (bool, error) {
	return r.queries.HasAppointmentSince(ctx, generated.HasAppointmentSinceParams{
		PatientID: patientID,
		CreatedAt: timeToPgTimestamptz(since),
	})
}
