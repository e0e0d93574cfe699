package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxDescriptionLength    = 1000
	MaxReasonLength         = 500
	MaxIdempotencyKeyLength = 128
	MaxReferenceIDLength    = 64

	// DefaultMaxAmount is the default absolute bound for a single posting, in minor units.
	DefaultMaxAmount int64 = 10_000_000
)

// AmountLimits are the inclusive bounds for a transaction amount.
type AmountLimits struct {
	Min int64
	Max int64
}

// DefaultAmountLimits returns +/- DefaultMaxAmount.
func DefaultAmountLimits() AmountLimits {
	return AmountLimits{Min: -DefaultMaxAmount, Max: DefaultMaxAmount}
}

// ValidateAmount rejects zero and amounts outside limits.
func ValidateAmount(amount int64, limits AmountLimits) error {
	if amount == 0 {
		return fmt.Errorf("%w: amount must not be zero", ErrValidation)
	}

	if amount < limits.Min {
		return fmt.Errorf("%w: amount %d is below minimum %d", ErrValidation, amount, limits.Min)
	}

	if amount > limits.Max {
		return fmt.Errorf("%w: amount %d exceeds maximum %d", ErrValidation, amount, limits.Max)
	}

	return nil
}

// ValidateDescription requires an explanation for negative postings.
func ValidateDescription(amount int64, description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}

	if amount < 0 && strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required for negative transactions", ErrValidation)
	}

	return nil
}

// ValidateReason validates a refund reason.
func ValidateReason(reason string) error {
	reason = strings.TrimSpace(reason)

	if reason == "" {
		return fmt.Errorf("%w: refund reason is required", ErrValidation)
	}

	if len(reason) > MaxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrValidation, MaxReasonLength)
	}

	return nil
}

// ValidateIdempotencyKey validates an optional client idempotency key.
func ValidateIdempotencyKey(key *string) error {
	if key == nil {
		return nil
	}

	if strings.TrimSpace(*key) == "" {
		return fmt.Errorf("%w: idempotency key must not be blank", ErrValidation)
	}

	if len(*key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: idempotency key exceeds %d characters", ErrValidation, MaxIdempotencyKeyLength)
	}

	return nil
}

// ValidateReference validates an optional opaque reference such as a
// patient or doctor id.
func ValidateReference(name string, ref *string) error {
	if ref == nil {
		return nil
	}

	if strings.TrimSpace(*ref) == "" {
		return fmt.Errorf("%w: %s must not be blank", ErrValidation, name)
	}

	if len(*ref) > MaxReferenceIDLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, name, MaxReferenceIDLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
