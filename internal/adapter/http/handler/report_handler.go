package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/clinicdesk/internal/adapter/http/dto"
	"github.com/iho/clinicdesk/internal/infrastructure/report"
	"github.com/iho/clinicdesk/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	Generate(ctx context.Context, kind string) (*usecase.Report, error)
}

// ReportHandler serves X and Z reports.
type ReportHandler struct {
	reports ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Get renders the report named by the type path parameter, as JSON or,
// with format=pdf, as a PDF document.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Generate(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if !strings.EqualFold(r.URL.Query().Get("format"), "pdf") {
		writeJSON(w, http.StatusOK, dto.ReportFromUseCase(rep))
		return
	}

	body, err := report.RenderPDF(rep)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.pdf", strings.ToLower(rep.Type), rep.ShiftID)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
