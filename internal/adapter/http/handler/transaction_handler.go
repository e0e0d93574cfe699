package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/clinicdesk/internal/adapter/http/dto"
	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

// IdempotencyKeyHeader may carry the payment idempotency key when the body
// does not.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayHeader marks a response that returns an earlier result.
const ReplayHeader = "X-Idempotency-Replay"

// PaymentService defines the behavior needed by TransactionHandler.
type PaymentService interface {
	Post(ctx context.Context, input usecase.PostPaymentInput) (*usecase.PostPaymentResult, error)
	Get(ctx context.Context, id string) (*domain.Transaction, error)
}

// RefundService defines the refund behavior needed by TransactionHandler.
type RefundService interface {
	Refund(ctx context.Context, input usecase.RefundInput) (*domain.Transaction, error)
}

// TransactionHandler handles payment and refund requests.
type TransactionHandler struct {
	payments PaymentService
	refunds  RefundService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(payments PaymentService, refunds RefundService) *TransactionHandler {
	return &TransactionHandler{payments: payments, refunds: refunds}
}

// Create posts a payment to the open shift. A replay of a known idempotency
// key returns the stored transaction with 200.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PostTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.IdempotencyKey == nil {
		if key := r.Header.Get(IdempotencyKeyHeader); key != "" {
			req.IdempotencyKey = &key
		}
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.payments.Post(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		w.Header().Set(ReplayHeader, "true")
		status = http.StatusOK
	}
	writeJSON(w, status, dto.TransactionFromDomain(result.Transaction))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Refund reverses a transaction on the current open shift.
func (h *TransactionHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	refund, err := h.refunds.Refund(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(refund))
}
