package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
	"github.com/iho/clinicdesk/internal/usecase/mocks"
)

func TestAuditor_VerifyShift(t *testing.T) {
	f := newLedgerFixture(t)
	shift := f.open(t, "cashier-1")
	f.pay(t, domain.PaymentMethodCash, 400)

	result, err := f.auditor.VerifyShift(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Consistent || result.Shift.ID != shift.ID {
		t.Fatalf("expected consistent open shift, got %+v", result)
	}

	f.ledger.Tamper(shift.ID, domain.Totals{Cash: 500})

	result, err = f.auditor.VerifyShift(context.Background(), shift.ID)
	if !usecase.IsConsistencyError(err) {
		t.Fatalf("expected consistency error, got %v", err)
	}
	if result == nil || result.Consistent || result.Recomputed.Cash != 400 {
		t.Fatalf("expected inconsistent result recomputing 400, got %+v", result)
	}
	if f.ledger.Shift(shift.ID).Totals.Cash != 500 {
		t.Error("verification must never correct stored totals")
	}
}

func TestAuditor_VerifyShift_ClosedShiftByID(t *testing.T) {
	f := newLedgerFixture(t)
	shift := f.open(t, "cashier-1")
	f.pay(t, domain.PaymentMethodCard, 100)
	if _, err := f.shifts.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	result, err := f.auditor.VerifyShift(context.Background(), shift.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Consistent {
		t.Errorf("expected consistent closed shift, got %+v", result)
	}

	if _, err := f.auditor.VerifyShift(context.Background(), ""); !errors.Is(err, domain.ErrNoOpenShift) {
		t.Errorf("expected ErrNoOpenShift, got %v", err)
	}
	if _, err := f.auditor.VerifyShift(context.Background(), "missing"); !errors.Is(err, domain.ErrShiftNotFound) {
		t.Errorf("expected ErrShiftNotFound, got %v", err)
	}
}

func TestAuditor_Verify_PropagatesRepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("connection refused")
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	txRepo.EXPECT().SumByShift(gomock.Any(), gomock.Any(), "s-1").Return(domain.Totals{}, dbErr)

	auditor := usecase.NewAuditor(usecase.LedgerDeps{Transactions: txRepo})

	err := auditor.Verify(context.Background(), nil, &domain.Shift{ID: "s-1"})
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if usecase.IsConsistencyError(err) {
		t.Error("a read failure is not a consistency error")
	}
}

// newMockDeps wires gomock collaborators that begin and roll back one
// transaction.
func newMockDeps(ctrl *gomock.Controller) (usecase.LedgerDeps, *mocks.MockShiftRepository, *mocks.MockTransactionRepository) {
	tx := mocks.NewMockTransaction(ctrl)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	txMgr := mocks.NewMockTransactionManager(ctrl)
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)

	locker := mocks.NewMockShiftLocker(ctrl)
	locker.EXPECT().Lock(gomock.Any(), tx).Return(nil).AnyTimes()

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("generated").AnyTimes()

	shifts := mocks.NewMockShiftRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)

	return usecase.LedgerDeps{
		TxManager:    txMgr,
		Shifts:       shifts,
		Transactions: txRepo,
		Locker:       locker,
		IDGen:        idGen,
	}, shifts, txRepo
}

func TestPaymentUseCase_Post_VersionConflictSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deps, shifts, txRepo := newMockDeps(ctrl)
	open := &domain.Shift{ID: "s-1", Version: 4}

	shifts.EXPECT().GetActiveForUpdate(gomock.Any(), gomock.Any()).Return(open, nil)
	txRepo.EXPECT().SumByShift(gomock.Any(), gomock.Any(), "s-1").Return(domain.Totals{}, nil)
	txRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	shifts.EXPECT().ApplyTotals(gomock.Any(), gomock.Any(), "s-1", int64(4), domain.Totals{Card: 100}).
		Return(nil, domain.ErrVersionConflict)

	uc := usecase.NewPaymentUseCase(deps, usecase.NewAuditor(deps), nil, domain.DefaultAmountLimits())

	_, err := uc.Post(context.Background(), usecase.PostPaymentInput{Amount: 100, Method: domain.PaymentMethodCard})
	if !errors.Is(err, domain.ErrVersionConflict) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestShiftUseCase_Close_VersionConflictSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deps, shifts, txRepo := newMockDeps(ctrl)
	open := &domain.Shift{ID: "s-1", Version: 2, Totals: domain.Totals{Cash: 10}}

	shifts.EXPECT().GetActiveForUpdate(gomock.Any(), gomock.Any()).Return(open, nil)
	txRepo.EXPECT().SumByShift(gomock.Any(), gomock.Any(), "s-1").Return(domain.Totals{Cash: 10}, nil)
	shifts.EXPECT().Close(gomock.Any(), gomock.Any(), "s-1", int64(2), gomock.Any()).Return(nil, domain.ErrVersionConflict)

	uc := usecase.NewShiftUseCase(deps, usecase.NewAuditor(deps))

	_, err := uc.Close(context.Background())
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestRefundUseCase_VisitLookupErrorSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deps, _, txRepo := newMockDeps(ctrl)
	patient := "p-1"
	txRepo.EXPECT().GetByIDTx(gomock.Any(), gomock.Any(), "t-1").Return(&domain.Transaction{
		ID:            "t-1",
		PatientID:     &patient,
		Amount:        100,
		PaymentMethod: domain.PaymentMethodCash,
		Components:    domain.Totals{Cash: 100},
	}, nil)

	lookupErr := errors.New("appointments unavailable")
	visits := mocks.NewMockVisitChecker(ctrl)
	visits.EXPECT().HasVisitSince(gomock.Any(), patient, gomock.Any()).Return(false, lookupErr)

	uc := usecase.NewRefundUseCase(deps, usecase.NewAuditor(deps), visits)

	_, err := uc.Refund(context.Background(), usecase.RefundInput{TransactionID: "t-1", Reason: "mistake"})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestShiftUseCase_Open_BeginErrorSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	beginErr := errors.New("pool exhausted")
	txMgr := mocks.NewMockTransactionManager(ctrl)
	txMgr.EXPECT().Begin(gomock.Any()).Return(nil, beginErr)

	idGen := mocks.NewMockIDGenerator(ctrl)
	idGen.EXPECT().Generate().Return("s-1")

	deps := usecase.LedgerDeps{TxManager: txMgr, IDGen: idGen}
	uc := usecase.NewShiftUseCase(deps, usecase.NewAuditor(deps))

	_, err := uc.Open(context.Background(), "cashier-1")
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error, got %v", err)
	}
}
