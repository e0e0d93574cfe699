// Package report renders shift reports as receipt-sized PDF documents.
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/iho/clinicdesk/internal/usecase"
)

const (
	pageWidth  = 74.0
	pageHeight = 105.0
	margin     = 4.0
)

// FormatMoney renders minor units as a major-unit string with two decimals.
func FormatMoney(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// WritePDF renders r onto w as a single receipt page.
func WritePDF(w io.Writer, r *usecase.Report) error {
	if r == nil {
		return fmt.Errorf("pdf: nil report")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetCreator("clinicdesk", false)
	pdf.SetTitle(r.Type+" "+r.ShiftID, false)
	pdf.AddPage()

	contentW := pageWidth - 2*margin
	label := contentW * 0.55
	value := contentW - label

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, r.Type, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Shift "+r.ShiftID, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Cashier: "+r.Cashier, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Opened: "+formatTime(r.StartTime), "", 1, "L", false, 0, "")
	if r.ClosedAt != nil {
		pdf.CellFormat(contentW, 4, "Closed: "+formatTime(*r.ClosedAt), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	separator(pdf)

	pdf.SetFont("Helvetica", "", 8)
	rows := []struct {
		name   string
		amount int64
	}{
		{"Cash", r.Totals.Cash},
		{"Card", r.Totals.Card},
		{"Transfer", r.Totals.Transfer},
	}
	for _, row := range rows {
		pdf.CellFormat(label, 5, row.name, "", 0, "L", false, 0, "")
		pdf.CellFormat(value, 5, FormatMoney(row.amount), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	separator(pdf)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(label, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(value, 6, FormatMoney(r.TotalIncome), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 6)
	pdf.CellFormat(contentW, 4, "Generated "+formatTime(r.GeneratedAt), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}

// RenderPDF returns the rendered document as bytes.
func RenderPDF(r *usecase.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func separator(pdf *fpdf.Fpdf) {
	y := pdf.GetY()
	pdf.Line(margin, y, pageWidth-margin, y)
	pdf.Ln(2)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
