package dto

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the request fields that failed their tags.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name, tag := range e.Fields {
		names = append(names, name+" ("+tag+")")
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: invalid fields: %s", domain.ErrValidation, strings.Join(names, ", "))
}

// Unwrap lets handlers treat field errors as domain validation errors.
func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}

// Validate runs the struct tags of req.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[jsonName(fe.Field())] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

var fieldNames = map[string]string{
	"CashierID":      "cashier_id",
	"Amount":         "amount",
	"PaymentMethod":  "payment_method",
	"CashAmount":     "cash_amount",
	"CardAmount":     "card_amount",
	"TransferAmount": "transfer_amount",
	"PatientID":      "patient_id",
	"DoctorID":       "doctor_id",
	"Description":    "description",
	"IdempotencyKey": "idempotency_key",
	"Reason":         "reason",
}

func jsonName(field string) string {
	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

// OpenShiftRequest opens a shift for a cashier.
type OpenShiftRequest struct {
	CashierID string `json:"cashier_id" validate:"required,max=128"`
}

// PostTransactionRequest posts a payment to the open shift. Amounts are in
// minor currency units.
type PostTransactionRequest struct {
	Amount         int64   `json:"amount" validate:"required"`
	PaymentMethod  string  `json:"payment_method" validate:"required,max=16"`
	CashAmount     int64   `json:"cash_amount"`
	CardAmount     int64   `json:"card_amount"`
	TransferAmount int64   `json:"transfer_amount"`
	PatientID      *string `json:"patient_id,omitempty" validate:"omitempty,max=64"`
	DoctorID       *string `json:"doctor_id,omitempty" validate:"omitempty,max=64"`
	Description    string  `json:"description,omitempty" validate:"max=1000"`
	IdempotencyKey *string `json:"idempotency_key,omitempty" validate:"omitempty,max=128"`
}

// ToUseCaseInput converts to use case input.
func (r *PostTransactionRequest) ToUseCaseInput() (usecase.PostPaymentInput, error) {
	method, err := domain.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return usecase.PostPaymentInput{}, err
	}

	return usecase.PostPaymentInput{
		Amount: r.Amount,
		Method: method,
		Split: domain.Totals{
			Cash:     r.CashAmount,
			Card:     r.CardAmount,
			Transfer: r.TransferAmount,
		},
		PatientID:      r.PatientID,
		DoctorID:       r.DoctorID,
		Description:    r.Description,
		IdempotencyKey: r.IdempotencyKey,
	}, nil
}

// RefundRequest refunds a transaction.
type RefundRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ToUseCaseInput converts to use case input.
func (r *RefundRequest) ToUseCaseInput(transactionID string) usecase.RefundInput {
	return usecase.RefundInput{
		TransactionID: transactionID,
		Reason:        r.Reason,
	}
}
