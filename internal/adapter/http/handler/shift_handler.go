package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/clinicdesk/internal/adapter/http/dto"
	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

// ShiftService defines the behavior needed by ShiftHandler.
type ShiftService interface {
	Open(ctx context.Context, cashierID string) (*domain.Shift, error)
	GetActive(ctx context.Context) (*domain.Shift, error)
	Get(ctx context.Context, id string) (*domain.Shift, error)
	ListTransactions(ctx context.Context, shiftID string, limit, offset int) ([]*domain.Transaction, error)
	Close(ctx context.Context) (*domain.Shift, error)
}

// ShiftVerifier runs the consistency check for one shift.
type ShiftVerifier interface {
	VerifyShift(ctx context.Context, shiftID string) (*usecase.VerifyResult, error)
}

// ShiftHandler handles shift-related HTTP requests.
type ShiftHandler struct {
	shifts   ShiftService
	verifier ShiftVerifier
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(shifts ShiftService, verifier ShiftVerifier) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, verifier: verifier}
}

// ActiveShiftResponse wraps the open shift, which may be absent.
type ActiveShiftResponse struct {
	Shift *dto.ShiftResponse `json:"shift"`
}

// Open opens a new shift.
func (h *ShiftHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenShiftRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	shift, err := h.shifts.Open(r.Context(), req.CashierID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ShiftFromDomain(shift))
}

// Active returns the open shift, or a null shift when none is open.
func (h *ShiftHandler) Active(w http.ResponseWriter, r *http.Request) {
	shift, err := h.shifts.GetActive(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := ActiveShiftResponse{}
	if shift != nil {
		resp.Shift = dto.ShiftFromDomain(shift)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Close closes the open shift.
func (h *ShiftHandler) Close(w http.ResponseWriter, r *http.Request) {
	shift, err := h.shifts.Close(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ShiftFromDomain(shift))
}

// Get retrieves a shift by ID.
func (h *ShiftHandler) Get(w http.ResponseWriter, r *http.Request) {
	shift, err := h.shifts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ShiftFromDomain(shift))
}

// ListTransactions lists a shift's transactions in posting order.
func (h *ShiftHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, _ := domain.ValidatePagination(
		parseIntQuery(r, "limit", 50),
		parseIntQuery(r, "offset", 0),
	)

	txns, err := h.shifts.ListTransactions(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Limit:        limit,
		Offset:       offset,
	})
}

// Verify recomputes a shift's totals from its transactions. A mismatch is
// reported as 409 and never corrected.
func (h *ShiftHandler) Verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.verifier.VerifyShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyFromUseCase(result))
}
