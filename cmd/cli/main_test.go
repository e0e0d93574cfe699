package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/clinicdesk/internal/adapter/http/dto"
	"github.com/iho/clinicdesk/internal/infrastructure/auth"
)

func execute(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if srv != nil {
		args = append([]string{"--url", srv.URL}, args...)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestShiftOpen(t *testing.T) {
	var got dto.OpenShiftRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shifts/open", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, dto.ShiftResponse{ID: "s-1", CashierID: got.CashierID})
	}))
	defer srv.Close()

	out, err := execute(t, srv, "--token", "tok", "shift", "open", "--cashier", "anna")
	require.NoError(t, err)

	assert.Equal(t, "anna", got.CashierID)
	assert.Contains(t, out, `"id": "s-1"`)
}

func TestShiftActive_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"shift": nil})
	}))
	defer srv.Close()

	out, err := execute(t, srv, "shift", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "No open shift")
}

func TestPay_SendsMixedSplit(t *testing.T) {
	var got dto.PostTransactionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, dto.TransactionResponse{ID: "t-1", Amount: got.Amount, PaymentMethod: got.PaymentMethod})
	}))
	defer srv.Close()

	_, err := execute(t, srv, "pay", "--amount", "900", "--method", "mixed",
		"--cash", "200", "--card", "300", "--transfer", "400", "--patient", "p-1", "--key", "k-1")
	require.NoError(t, err)

	assert.Equal(t, int64(900), got.Amount)
	assert.Equal(t, "MIXED", got.PaymentMethod)
	assert.Equal(t, int64(200), got.CashAmount)
	assert.Equal(t, int64(300), got.CardAmount)
	assert.Equal(t, int64(400), got.TransferAmount)
	require.NotNil(t, got.PatientID)
	assert.Equal(t, "p-1", *got.PatientID)
	require.NotNil(t, got.IdempotencyKey)
	assert.Equal(t, "k-1", *got.IdempotencyKey)
	assert.Nil(t, got.DoctorID)
}

func TestRefund_ForwardsIdempotencyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refund/t-1", r.URL.Path)
		assert.Equal(t, "retry-1", r.Header.Get("Idempotency-Key"))
		writeJSON(w, http.StatusCreated, dto.TransactionResponse{ID: "t-2", Amount: -100})
	}))
	defer srv.Close()

	out, err := execute(t, srv, "refund", "t-1", "--reason", "duplicate", "--key", "retry-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "t-2"`)
}

func TestAPIErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "no_open_shift", Message: "no open shift"})
	}))
	defer srv.Close()

	_, err := execute(t, srv, "shift", "close")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "no_open_shift", apiErr.Code)
}

func TestReport_PDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/Z", r.URL.Path)
		assert.Equal(t, "pdf", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3 fake"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "z.pdf")
	out, err := execute(t, srv, "report", "z", "--pdf", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "%PDF-"))
}

func TestReport_UnknownType(t *testing.T) {
	_, err := execute(t, nil, "report", "y")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      any
		wantErr   error
		wantInOut string
	}{
		{
			name:      "consistent",
			status:    http.StatusOK,
			body:      dto.VerifyResponse{ShiftID: "s-1", Consistent: true, Stored: dto.TotalsResponse{Cash: 400}},
			wantInOut: "PASSED",
		},
		{
			name:   "mismatch",
			status: http.StatusConflict,
			body: dto.ErrorResponse{
				Error:   "consistency_error",
				Message: "shift totals mismatch",
				Details: map[string]any{"stored": map[string]any{"cash": 500}},
			},
			wantErr:   errInconsistent,
			wantInOut: "FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/shifts/active":
					writeJSON(w, http.StatusOK, map[string]any{"shift": dto.ShiftResponse{ID: "s-1"}})
				case "/shifts/s-1/verify":
					writeJSON(w, tt.status, tt.body)
				default:
					http.NotFound(w, r)
				}
			}))
			defer srv.Close()

			out, err := execute(t, srv, "verify")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.wantInOut)
		})
	}
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, nil, "token", "--user", "u-1", "--name", "Anna", "--role", "OWNER", "--secret", "s3cret")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("s3cret", 0).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestTokenCmd_RejectsUnknownRole(t *testing.T) {
	_, err := execute(t, nil, "token", "--user", "u-1", "--role", "janitor", "--secret", "s")
	assert.Error(t, err)
}
