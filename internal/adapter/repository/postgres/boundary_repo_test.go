package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientRepository_Exists(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM patients").WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewPatientRepository(mockPool).Exists(context.Background(), "p-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assertExpectations(t, mockPool)
}

func TestVisitRepository_HasVisitSince(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM appointments").
		WithArgs("p-1", pgtype.Timestamptz{Time: testStart, Valid: true}).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := NewVisitRepository(mockPool).HasVisitSince(context.Background(), "p-1", testStart)
	require.NoError(t, err)
	assert.False(t, ok)
	assertExpectations(t, mockPool)
}
