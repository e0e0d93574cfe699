package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/clinicdesk/internal/adapter/http/dto"
	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

// Error codes returned in ErrorResponse.Error.
const (
	CodeValidation       = "validation_error"
	CodeNoOpenShift      = "no_open_shift"
	CodeShiftAlreadyOpen = "shift_already_open"
	CodeRefundForbidden  = "refund_forbidden"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeVersionConflict  = "version_conflict"
	CodeWouldGoNegative  = "would_go_negative"
	CodeAlreadyRefunded  = "already_refunded"
	CodeConsistency      = "consistency_error"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeInternal         = "internal_error"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// mapDomainError maps domain errors to an HTTP status and error code.
// Order matters: several conflict sentinels also match domain.ErrConflict.
func mapDomainError(err error) (int, string) {
	switch {
	case usecase.IsConsistencyError(err):
		return http.StatusConflict, CodeConsistency
	case domain.IsValidation(err):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNoOpenShift):
		return http.StatusBadRequest, CodeNoOpenShift
	case errors.Is(err, domain.ErrShiftAlreadyOpen):
		return http.StatusBadRequest, CodeShiftAlreadyOpen
	case errors.Is(err, domain.ErrRefundForbidden):
		return http.StatusBadRequest, CodeRefundForbidden
	case errors.Is(err, domain.ErrShiftNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrPatientNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, CodeVersionConflict
	case errors.Is(err, domain.ErrWouldGoNegative):
		return http.StatusConflict, CodeWouldGoNegative
	case errors.Is(err, domain.ErrAlreadyRefunded), errors.Is(err, domain.ErrDuplicateRefund):
		return http.StatusConflict, CodeAlreadyRefunded
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, CodeForbidden
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeDomainError maps err and writes it. Internal errors are logged and
// replaced with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, status, code, "internal server error", nil)
		return
	}

	writeError(w, status, code, err.Error(), errorDetails(err))
}

func errorDetails(err error) map[string]any {
	var ce *domain.ConsistencyError
	if errors.As(err, &ce) {
		return map[string]any{
			"shift_id":   ce.ShiftID,
			"stored":     dto.TotalsFromDomain(ce.Stored),
			"recomputed": dto.TotalsFromDomain(ce.Recomputed),
		}
	}

	var ve *dto.ValidationError
	if errors.As(err, &ve) {
		fields := make(map[string]any, len(ve.Fields))
		for name, tag := range ve.Fields {
			fields[name] = tag
		}
		return map[string]any{"fields": fields}
	}

	return nil
}

// decodeAndValidate decodes a JSON body into req and runs its tags.
func decodeAndValidate(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return dto.Validate(req)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
