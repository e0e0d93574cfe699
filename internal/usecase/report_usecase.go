package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iho/clinicdesk/internal/domain"
)

// Report kinds
const (
	ReportX = "X"
	ReportZ = "Z"
)

// Report is a read-only projection of a shift.
type Report struct {
	Type        string
	ShiftID     string
	Cashier     string
	Totals      domain.Totals
	TotalIncome int64
	StartTime   time.Time
	ClosedAt    *time.Time
	GeneratedAt time.Time
}

// ReportUseCase builds X and Z reports.
type ReportUseCase struct {
	shifts ShiftRepository
	now    func() time.Time
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(shifts ShiftRepository) *ReportUseCase {
	return &ReportUseCase{
		shifts: shifts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds the report of the given kind, case-insensitively.
func (uc *ReportUseCase) Generate(ctx context.Context, kind string) (*Report, error) {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case ReportX:
		return uc.X(ctx)
	case ReportZ:
		return uc.Z(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown report type %q", domain.ErrValidation, kind)
	}
}

// X is a snapshot of the open shift. It fails with domain.ErrNoOpenShift
// when no shift is open.
func (uc *ReportUseCase) X(ctx context.Context) (*Report, error) {
	shift, err := uc.shifts.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	return uc.build("X-Report", shift), nil
}

// Z summarizes the most recently closed shift. It fails with
// domain.ErrShiftNotFound when no shift was ever closed.
func (uc *ReportUseCase) Z(ctx context.Context) (*Report, error) {
	shift, err := uc.shifts.GetLastClosed(ctx)
	if err != nil {
		return nil, err
	}

	return uc.build("Z-Report", shift), nil
}

func (uc *ReportUseCase) build(kind string, shift *domain.Shift) *Report {
	return &Report{
		Type:        kind,
		ShiftID:     shift.ID,
		Cashier:     shift.CashierID,
		Totals:      shift.Totals,
		TotalIncome: shift.Totals.Sum(),
		StartTime:   shift.StartTime,
		ClosedAt:    shift.EndTime,
		GeneratedAt: uc.now(),
	}
}
