package infra

// pdf.go — Quotation PDF generation using go-pdf/fpdf.
// The PDF summarizing price, exchange rate and validity is attached to the
// email the importer receives when a quotation is sent.

import (
	"fmt"
	"os"
	"path/filepath"

	"mercury/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateQuotationPDF renders a one-page summary of a sent quotation.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateQuotationPDF(q *model.Quotation, rq *model.Request, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cotizacion_%s.pdf", q.Code)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, "Mercury", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 7, "Cotización de servicio de importación", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// ── Reference block ──────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, fmt.Sprintf("Cotización %s", q.Code), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Solicitud %s", rq.Code), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, q.CreatedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(4)

	// ── Terms table ──────────────────────────────────────────────────────────
	label := contentW * 0.45
	value := contentW * 0.55

	row := func(k, v string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(label, 7, k, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(value, 7, v, "", 1, "R", false, 0, "")
	}

	row("Monto", fmt.Sprintf("%s %s", q.Amount.StringFixed(2), q.Currency))
	row("Tipo de cambio", q.ExchangeRate.StringFixed(4))
	row("Total en Bs", q.TotalInBs.StringFixed(2))
	row("Válida hasta", q.ValidUntil.Format("02/01/2006"))

	if q.Notas != nil && *q.Notas != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, *q.Notas, "", "L", false)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(contentW, 5,
		"Tras tres cotizaciones rechazadas la solicitud se cancela automáticamente. "+
			"Esta cotización pierde validez en la fecha indicada.",
		"", "L", false)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
