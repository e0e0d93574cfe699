package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/metrics"
	"github.com/iho/clinicdesk/internal/usecase"
	"github.com/iho/clinicdesk/internal/usecase/mocks"
)

// ledgerFixture wires every use case over one in-memory ledger.
type ledgerFixture struct {
	ledger   *mocks.MemoryLedger
	metrics  *metrics.Metrics
	auditor  *usecase.Auditor
	shifts   *usecase.ShiftUseCase
	payments *usecase.PaymentUseCase
	refunds  *usecase.RefundUseCase
	reports  *usecase.ReportUseCase
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	ledger := mocks.NewMemoryLedger()
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	deps := ledger.Deps(mocks.NewSequenceIDGenerator("id"))
	deps.Metrics = m
	deps.Now = newTestClock()
	deps.Timeout = 2 * time.Second

	auditor := usecase.NewAuditor(deps)

	return &ledgerFixture{
		ledger:   ledger,
		metrics:  m,
		auditor:  auditor,
		shifts:   usecase.NewShiftUseCase(deps, auditor),
		payments: usecase.NewPaymentUseCase(deps, auditor, ledger.Patients(), domain.DefaultAmountLimits()),
		refunds:  usecase.NewRefundUseCase(deps, auditor, ledger.Visits()),
		reports:  usecase.NewReportUseCase(deps.Shifts),
	}
}

// newTestClock returns a clock that advances one second per call.
func newTestClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func (f *ledgerFixture) open(t *testing.T, cashier string) *domain.Shift {
	t.Helper()
	shift, err := f.shifts.Open(context.Background(), cashier)
	if err != nil {
		t.Fatalf("open shift: %v", err)
	}
	return shift
}

func (f *ledgerFixture) pay(t *testing.T, method domain.PaymentMethod, amount int64) *domain.Transaction {
	t.Helper()
	res, err := f.payments.Post(context.Background(), usecase.PostPaymentInput{
		Amount:      amount,
		Method:      method,
		Description: "service",
	})
	if err != nil {
		t.Fatalf("post %s %d: %v", method, amount, err)
	}
	return res.Transaction
}

// assertConsistent checks the stored totals against the committed rows.
func (f *ledgerFixture) assertConsistent(t *testing.T, shiftID string) {
	t.Helper()
	var sum domain.Totals
	for _, txn := range f.ledger.Transactions(shiftID) {
		sum = sum.Add(txn.Components)
	}
	stored := f.ledger.Shift(shiftID).Totals
	if stored != sum {
		t.Fatalf("stored totals %+v differ from transaction sum %+v", stored, sum)
	}
	if !stored.NonNegative() {
		t.Fatalf("negative totals %+v", stored)
	}
}

func strPtr(s string) *string { return &s }
