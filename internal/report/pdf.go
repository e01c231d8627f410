// Package report renders a recommendation bundle as a printable PDF.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

var ErrNoBundle = errors.New("no recommendations to render")

const (
	maxSummaryRunes = 600
	pageMarginMM    = 18.0
)

// PDFRenderer writes a one-page A4 report. Core fonts are used with the
// cp1252 translator, which covers Western European accented letters.
type PDFRenderer struct {
	Title string
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Title: "Mindful Libraries Reading List"}
}

func (r *PDFRenderer) Render(w io.Writer, b *model.Bundle) error {
	if b == nil {
		return ErrNoBundle
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, pageMarginMM)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("mindful-libraries", true)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMarginMM

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth, 10, tr(r.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	if name := strings.TrimSpace(b.Facts.Name); name != "" {
		pdf.CellFormat(contentWidth, 6, tr("Prepared for "+name), "", 1, "L", false, 0, "")
	}
	if !b.CreatedAt.IsZero() {
		pdf.CellFormat(contentWidth, 6, b.CreatedAt.Local().Format("January 2, 2006"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentWidth, 8, "Topics", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	topics := "None"
	if len(b.Topics) > 0 {
		topics = strings.Join(b.Topics, ", ")
	}
	pdf.MultiCell(contentWidth, 6, tr(topics), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentWidth, 8, "Recommendations", "", 1, "L", false, 0, "")

	if len(b.Recommendations) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(contentWidth, 6, "No strong matches this time. Try a re-roll or add more detail.", "", "L", false)
	}

	for i, rec := range b.Recommendations {
		item := rec.Item
		pdf.SetFont("Helvetica", "B", 12)
		heading := fmt.Sprintf("%d. %s", i+1, item.Title)
		if item.Type != "" {
			heading += " (" + item.Type + ")"
		}
		pdf.MultiCell(contentWidth, 7, tr(heading), "", "L", false)

		if summary := truncateRunes(item.Summary, maxSummaryRunes); summary != "" {
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(contentWidth, 5.5, tr(summary), "", "L", false)
		}
		pdf.Ln(3)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("building pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
